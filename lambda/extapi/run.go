// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extapi

import (
	"context"
	"time"

	"github.com/corp-demo/lambda-extensions/lambda/extapi/model"
	"github.com/corp-demo/lambda-extensions/lambda/fatalerror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Processor handles the lifecycle of a registered extension.
// Calls are never concurrent: the next event is requested only after the
// previous call returned.
type Processor interface {
	Init(ctx context.Context, registration *model.ExtensionRegisterResponse) error
	Invoke(ctx context.Context, event *InvokeEvent) error
	Shutdown(ctx context.Context, event *ShutdownEvent) error
}

var subscribedEvents = []model.EventType{model.InvokeEventType, model.ShutdownEventType}

// reportTimeout bounds an error report, which is sent even after ctx is
// cancelled.
const reportTimeout = 2 * time.Second

type reportFunc func(ctx context.Context, errorType fatalerror.ErrorType, cause error) error

// Run registers the extension for INVOKE and SHUTDOWN and feeds every
// event to processor until SHUTDOWN is processed.
//
// A processor failure is reported to the API and returned unchanged;
// there is no retry. Run returns ctx.Err() when ctx is cancelled while
// waiting for an event.
func Run(ctx context.Context, client *Client, processor Processor) error {
	registration, err := client.Register(ctx, subscribedEvents)
	if err != nil {
		return errors.Wrap(err, "failed to register extension")
	}

	log.WithFields(log.Fields{
		"extensionID":     client.ExtensionID(),
		"functionName":    registration.FunctionName,
		"functionVersion": registration.FunctionVersion,
	}).Infof("Extension %s registered", client.ExtensionName())

	if err := processor.Init(ctx, registration); err != nil {
		return report(client.InitError, fatalerror.ExtensionInitError, err)
	}

	for {
		event, err := client.NextEvent(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, ErrUnknownEventType) {
				return report(client.ExitError, fatalerror.ExtensionInvalidEvent, err)
			}
			return err
		}

		switch event := event.(type) {
		case *ShutdownEvent:
			if err := processor.Shutdown(ctx, event); err != nil {
				return report(client.ExitError, fatalerror.ExtensionShutdownError, err)
			}
			return nil

		case *InvokeEvent:
			if err := processor.Invoke(ctx, event); err != nil {
				return report(client.ExitError, fatalerror.ExtensionInvokeError, err)
			}
		}
	}
}

func report(reportError reportFunc, errorType fatalerror.ErrorType, cause error) error {
	log.WithError(cause).Errorf("Extension failed with %s", errorType)

	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	if err := reportError(ctx, errorType, cause); err != nil {
		log.WithError(err).Warnf("Failed to report %s", errorType)
	}

	return cause
}
