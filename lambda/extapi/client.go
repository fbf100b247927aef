// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/corp-demo/lambda-extensions/lambda/extapi/model"
	"github.com/corp-demo/lambda-extensions/lambda/fatalerror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const contentTypeJSON = "application/json"

// Client talks to the Extensions API of the Lambda execution environment.
//
// A Client is used by a single event loop: Register must succeed before
// any other call, the extension identifier it returns is attached to all
// subsequent requests.
type Client struct {
	baseURL       string
	extensionName string
	extensionID   string
	httpClient    *http.Client
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client. The client must not
// set a timeout, /extension/event/next blocks until the next event.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient returns a client for the API listening on runtimeAPI
// (host:port, as found in AWS_LAMBDA_RUNTIME_API).
func NewClient(runtimeAPI string, extensionName string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:       fmt.Sprintf("http://%s%s/extension", runtimeAPI, model.APIVersion),
		extensionName: extensionName,
		httpClient:    &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ExtensionName is the name sent on registration
func (c *Client) ExtensionName() string {
	return c.extensionName
}

// ExtensionID is the identifier assigned by the API on registration, empty before
func (c *Client) ExtensionID() string {
	return c.extensionID
}

// Register subscribes the extension to the given events
func (c *Client) Register(ctx context.Context, events []model.EventType) (*model.ExtensionRegisterResponse, error) {
	body, err := json.Marshal(&model.RegisterRequest{Events: events})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal register request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/register", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create register request")
	}
	req.Header.Set(model.LambdaAgentName, c.extensionName)
	req.Header.Set("Content-Type", contentTypeJSON)

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	extensionID := resp.Header.Get(model.LambdaAgentIdentifier)
	if extensionID == "" {
		return nil, errors.Errorf("register response is missing the %s header", model.LambdaAgentIdentifier)
	}

	var registerResponse model.ExtensionRegisterResponse
	if err := json.NewDecoder(resp.Body).Decode(&registerResponse); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to decode register response")
	}

	c.extensionID = extensionID
	log.WithField("extensionID", extensionID).Debugf("Extension %s registered for %v", c.extensionName, events)

	return &registerResponse, nil
}

// NextEvent blocks until the API delivers the next event
func (c *Client) NextEvent(ctx context.Context) (Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/event/next", nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create next event request")
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read next event")
	}

	return DecodeEvent(body)
}

// InitError reports a failure to initialize. The API terminates the
// execution environment in response.
func (c *Client) InitError(ctx context.Context, errorType fatalerror.ErrorType, cause error) error {
	return c.reportError(ctx, "/init/error", errorType, cause)
}

// ExitError reports a failure the extension is going to exit with
func (c *Client) ExitError(ctx context.Context, errorType fatalerror.ErrorType, cause error) error {
	return c.reportError(ctx, "/exit/error", errorType, cause)
}

func (c *Client) reportError(ctx context.Context, path string, errorType fatalerror.ErrorType, cause error) error {
	errorRequest := &model.ErrorRequest{ErrorType: string(errorType)}
	if cause != nil {
		errorRequest.ErrorMessage = cause.Error()
	}

	body, err := json.Marshal(errorRequest)
	if err != nil {
		return errors.Wrap(err, "failed to marshal error request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrapf(err, "failed to create %s request", path)
	}
	req.Header.Set(model.LambdaAgentFunctionErrorType, string(errorType))
	req.Header.Set("Content-Type", contentTypeJSON)

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()

	return nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	if c.extensionID != "" {
		req.Header.Set(model.LambdaAgentIdentifier, c.extensionID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s failed", req.Method, req.URL.Path)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer resp.Body.Close()
		return nil, newAPIError(resp)
	}

	return resp, nil
}
