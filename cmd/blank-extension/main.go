// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os"
	"time"

	"github.com/corp-demo/lambda-extensions/lambda/config"
	"github.com/corp-demo/lambda-extensions/lambda/extapi"
	"github.com/corp-demo/lambda-extensions/lambda/extapi/model"
	"github.com/corp-demo/lambda-extensions/lambda/extension"
	"github.com/corp-demo/lambda-extensions/lambda/logging"

	log "github.com/sirupsen/logrus"
)

// blankProcessor only logs the lifecycle, it is the smallest extension
// that can be attached to a function.
type blankProcessor struct{}

func (blankProcessor) Init(ctx context.Context, registration *model.ExtensionRegisterResponse) error {
	log.WithFields(log.Fields{
		"functionName":    registration.FunctionName,
		"functionVersion": registration.FunctionVersion,
		"handler":         registration.Handler,
	}).Info("Init")
	return nil
}

func (blankProcessor) Invoke(ctx context.Context, event *extapi.InvokeEvent) error {
	log.WithFields(log.Fields{
		"requestId": event.RequestID,
		"remaining": time.Until(event.Deadline()).Round(time.Millisecond),
	}).Info("Invoke")
	return nil
}

func (blankProcessor) Shutdown(ctx context.Context, event *extapi.ShutdownEvent) error {
	log.WithField("shutdownReason", event.ShutdownReason).Info("Shutdown")
	return nil
}

func main() {
	if err := start(context.Background(), os.Args); err != nil {
		log.WithError(err).Fatal("Extension failed")
	}
}

func start(ctx context.Context, args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	if err := logging.SetLogLevel(cfg.LogLevel, cfg.ExtensionName); err != nil {
		return err
	}

	return extension.Run(ctx, cfg, blankProcessor{})
}
