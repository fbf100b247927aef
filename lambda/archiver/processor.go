// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package archiver

import (
	"context"

	"github.com/corp-demo/lambda-extensions/lambda/extapi"
	"github.com/corp-demo/lambda-extensions/lambda/extapi/model"
	log "github.com/sirupsen/logrus"
)

// Processor archives every INVOKE event and only logs SHUTDOWN
type Processor struct {
	archiver *Archiver
}

var _ extapi.Processor = (*Processor)(nil)

// NewProcessor returns an extension processor backed by archiver
func NewProcessor(archiver *Archiver) *Processor {
	return &Processor{archiver: archiver}
}

// Init logs the destination of archived records
func (p *Processor) Init(ctx context.Context, registration *model.ExtensionRegisterResponse) error {
	log.WithField("bucket", p.archiver.bucketName).Infof("Archiving invocations of %s", p.archiver.functionName)
	return nil
}

// Invoke archives the event, a failed upload is returned unchanged
func (p *Processor) Invoke(ctx context.Context, event *extapi.InvokeEvent) error {
	fields := log.Fields{
		"requestId":          event.RequestID,
		"invokedFunctionArn": event.InvokedFunctionArn,
		"deadlineMs":         event.DeadlineMs,
	}
	if event.Tracing != nil {
		fields["traceId"] = event.Tracing.Value
	}
	log.WithFields(fields).Info("Invoke")

	return p.archiver.Archive(ctx, event)
}

// Shutdown only logs, it never touches storage
func (p *Processor) Shutdown(ctx context.Context, event *extapi.ShutdownEvent) error {
	log.WithFields(log.Fields{
		"shutdownReason": event.ShutdownReason,
		"deadlineMs":     event.DeadlineMs,
	}).Info("Shutdown")

	return nil
}
