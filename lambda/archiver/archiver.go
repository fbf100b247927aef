// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package archiver

import (
	"bytes"
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/corp-demo/lambda-extensions/lambda/awsutil"
	"github.com/corp-demo/lambda-extensions/lambda/extapi"
	"github.com/fatih/structs"
	log "github.com/sirupsen/logrus"
)

const contentTypeJSON = "application/json"

// Archiver writes one object per INVOKE event to an S3 bucket.
// It holds no mutable state, bucket and function name are fixed at
// construction.
type Archiver struct {
	s3           s3iface.S3API
	bucketName   string
	functionName string
	now          func() time.Time
}

// Option configures an Archiver
type Option func(*Archiver)

// WithClock replaces time.Now as the source of upload timestamps
func WithClock(now func() time.Time) Option {
	return func(a *Archiver) {
		a.now = now
	}
}

// New returns an Archiver uploading to bucketName under functionName/
func New(client s3iface.S3API, bucketName, functionName string, opts ...Option) *Archiver {
	a := &Archiver{
		s3:           client,
		bucketName:   bucketName,
		functionName: functionName,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Archive uploads the record of event with a single PutObject call.
// A storage failure is returned as is, without retry.
func (a *Archiver) Archive(ctx context.Context, event *extapi.InvokeEvent) error {
	record := NewRecord(event)

	body, err := record.Marshal()
	if err != nil {
		return err
	}

	key := Key(a.functionName, a.now())
	logger := log.WithFields(log.Fields{"bucket": a.bucketName, "key": key})

	_, err = a.s3.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Body:          bytes.NewReader(body),
		Bucket:        aws.String(a.bucketName),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentTypeJSON),
		Key:           aws.String(key),
	})
	if err != nil {
		logger.WithError(err).WithFields(awsutil.ErrorFields(err)).Error("Failed to upload event")
		return err
	}

	logger.WithFields(log.Fields(structs.Map(record))).Info("Uploaded event")
	return nil
}
