// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extension

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/corp-demo/lambda-extensions/lambda/config"
	"github.com/corp-demo/lambda-extensions/lambda/extapi"
	"github.com/corp-demo/lambda-extensions/lambda/extapi/extapitest"
	"github.com/corp-demo/lambda-extensions/lambda/extapi/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProcessor struct {
	invokes   []*extapi.InvokeEvent
	shutdowns []*extapi.ShutdownEvent
	onInit    func()
	onInvoke  func(ctx context.Context) error
	invokeErr error
}

func (p *recordingProcessor) Init(ctx context.Context, registration *model.ExtensionRegisterResponse) error {
	if p.onInit != nil {
		p.onInit()
	}
	return nil
}

func (p *recordingProcessor) Invoke(ctx context.Context, event *extapi.InvokeEvent) error {
	p.invokes = append(p.invokes, event)
	if p.onInvoke != nil {
		return p.onInvoke(ctx)
	}
	return p.invokeErr
}

func (p *recordingProcessor) Shutdown(ctx context.Context, event *extapi.ShutdownEvent) error {
	p.shutdowns = append(p.shutdowns, event)
	return nil
}

func TestRunUntilShutdown(t *testing.T) {
	server := extapitest.NewServer(extapitest.InvokeEvent("req-1", "arn", 1))
	defer server.Close()

	processor := &recordingProcessor{}
	cfg := &config.Config{RuntimeAPI: server.RuntimeAPI(), ExtensionName: "event-collector"}

	require.NoError(t, Run(context.Background(), cfg, processor))
	assert.Len(t, processor.invokes, 1)
	assert.Len(t, processor.shutdowns, 1)
	assert.Equal(t, "event-collector", server.Registrations()[0].Name)
}

func TestRunPropagatesProcessorError(t *testing.T) {
	server := extapitest.NewServer(extapitest.InvokeEvent("req-1", "arn", 1))
	defer server.Close()

	invokeErr := errors.New("put failed")
	processor := &recordingProcessor{invokeErr: invokeErr}
	cfg := &config.Config{RuntimeAPI: server.RuntimeAPI(), ExtensionName: "event-collector"}

	assert.Equal(t, invokeErr, Run(context.Background(), cfg, processor))
	assert.Empty(t, processor.shutdowns)
}

func TestRunStopsOnSignal(t *testing.T) {
	server := extapitest.NewServer()
	server.HoldNext()
	defer server.Close()

	sig := make(chan os.Signal, 1)
	go func() {
		assert.Eventually(t, func() bool { return server.NextCalls() == 1 }, 5*time.Second, 10*time.Millisecond)
		sig <- syscall.SIGTERM
	}()

	processor := &recordingProcessor{}
	client := extapi.NewClient(server.RuntimeAPI(), "event-collector")

	assert.NoError(t, run(context.Background(), client, processor, sig))
	assert.Empty(t, processor.shutdowns)
	assert.Equal(t, 1, server.NextCalls())
}

func TestRunSignalDuringInvoke(t *testing.T) {
	server := extapitest.NewServer(extapitest.InvokeEvent("req-1", "arn", 1))
	defer server.Close()

	sig := make(chan os.Signal, 1)
	processor := &recordingProcessor{onInvoke: func(ctx context.Context) error {
		sig <- syscall.SIGTERM
		<-ctx.Done()
		return awserr.New(request.CanceledErrorCode, "request context canceled", ctx.Err())
	}}
	client := extapi.NewClient(server.RuntimeAPI(), "event-collector")

	assert.NoError(t, run(context.Background(), client, processor, sig))
	assert.Len(t, processor.invokes, 1)
	assert.Empty(t, processor.shutdowns)

	exitErrors := server.ExitErrors()
	require.Len(t, exitErrors, 1)
	assert.Equal(t, "Extension.InvokeError", exitErrors[0].ErrorType)
}

func TestRunCancelledByCaller(t *testing.T) {
	server := extapitest.NewServer()
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	processor := &recordingProcessor{onInit: cancel}
	client := extapi.NewClient(server.RuntimeAPI(), "event-collector")

	assert.Equal(t, context.Canceled, run(ctx, client, processor, make(chan os.Signal)))
	assert.Empty(t, processor.shutdowns)
}
