// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package awsutil

import (
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// NewS3Client builds an S3 client from the default credential chain and
// shared config. Inside Lambda the region and credentials come from the
// execution environment.
func NewS3Client() (s3iface.S3API, error) {
	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create AWS session")
	}

	return s3.New(sess), nil
}

// ErrorFields returns log fields describing an AWS service error
func ErrorFields(err error) log.Fields {
	fields := log.Fields{}

	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return fields
	}

	fields["awsCode"] = aerr.Code()
	fields["awsMessage"] = aerr.Message()

	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) {
		fields["statusCode"] = reqErr.StatusCode()
		fields["awsRequestId"] = reqErr.RequestID()
	}

	return fields
}
