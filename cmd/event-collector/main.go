// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/corp-demo/lambda-extensions/lambda/archiver"
	"github.com/corp-demo/lambda-extensions/lambda/awsutil"
	"github.com/corp-demo/lambda-extensions/lambda/config"
	"github.com/corp-demo/lambda-extensions/lambda/extension"
	"github.com/corp-demo/lambda-extensions/lambda/logging"

	log "github.com/sirupsen/logrus"
)

type s3ClientFactory func() (s3iface.S3API, error)

func main() {
	if err := start(context.Background(), os.Args, awsutil.NewS3Client); err != nil {
		log.WithError(err).Fatal("Extension failed")
	}
}

// start loads the configuration before anything else: without FUNCTION_NAME
// and BUCKET_NAME the extension never registers.
func start(ctx context.Context, args []string, newS3Client s3ClientFactory) error {
	cfg, err := config.LoadArchive(args)
	if err != nil {
		return err
	}

	if err := logging.SetLogLevel(cfg.LogLevel, cfg.ExtensionName); err != nil {
		return err
	}

	client, err := newS3Client()
	if err != nil {
		return err
	}

	log.Infof("Starting %s (function=%s, bucket=%s)", cfg.ExtensionName, cfg.FunctionName, cfg.BucketName)

	processor := archiver.NewProcessor(archiver.New(client, cfg.BucketName, cfg.FunctionName))
	return extension.Run(ctx, cfg, processor)
}
