// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/corp-demo/lambda-extensions/lambda/extapi/model"
)

const maxErrorBodySize = 64 * 1024

// APIError is a non-2xx reply of the Extensions API
type APIError struct {
	StatusCode   int
	ErrorType    string
	ErrorMessage string
}

func (e *APIError) Error() string {
	if e.ErrorType == "" {
		return fmt.Sprintf("extensions api returned %d: %s", e.StatusCode, e.ErrorMessage)
	}
	return fmt.Sprintf("extensions api returned %d %s: %s", e.StatusCode, e.ErrorType, e.ErrorMessage)
}

func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err != nil {
		apiErr.ErrorMessage = http.StatusText(resp.StatusCode)
		return apiErr
	}

	var errorResponse model.ErrorResponse
	if json.Unmarshal(body, &errorResponse) == nil && errorResponse.ErrorType != "" {
		apiErr.ErrorType = errorResponse.ErrorType
		apiErr.ErrorMessage = errorResponse.ErrorMessage
		return apiErr
	}

	apiErr.ErrorMessage = strings.TrimSpace(string(body))
	if apiErr.ErrorMessage == "" {
		apiErr.ErrorMessage = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
