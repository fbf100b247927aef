// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package archiver

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/corp-demo/lambda-extensions/lambda/extapi"
	"github.com/corp-demo/lambda-extensions/lambda/extapi/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestProcessorShutdownNeverWrites(t *testing.T) {
	client := &mockS3{}
	processor := NewProcessor(New(client, "my-bucket", "myFn"))

	err := processor.Shutdown(context.Background(), &extapi.ShutdownEvent{ShutdownReason: model.ShutdownReasonSpindown})
	assert.NoError(t, err)

	client.AssertNumberOfCalls(t, "PutObjectWithContext", 0)
}

func TestProcessorInitNeverWrites(t *testing.T) {
	client := &mockS3{}
	processor := NewProcessor(New(client, "my-bucket", "myFn"))

	assert.NoError(t, processor.Init(context.Background(), &model.ExtensionRegisterResponse{FunctionName: "myFn"}))
	client.AssertNumberOfCalls(t, "PutObjectWithContext", 0)
}

func TestProcessorInvokeArchives(t *testing.T) {
	client := &mockS3{}
	client.On("PutObjectWithContext", "my-bucket", anyKey, "application/json").Return(&s3.PutObjectOutput{}, nil)
	processor := NewProcessor(New(client, "my-bucket", "myFn"))

	assert.NoError(t, processor.Invoke(context.Background(), testEvent()))
	client.AssertNumberOfCalls(t, "PutObjectWithContext", 1)
}

func TestProcessorInvokeFailure(t *testing.T) {
	storageErr := awserr.New("AccessDenied", "Access Denied", nil)

	client := &mockS3{}
	client.On("PutObjectWithContext", mock.Anything, mock.Anything, mock.Anything).Return(nil, storageErr)
	processor := NewProcessor(New(client, "my-bucket", "myFn"))

	err := processor.Invoke(context.Background(), testEvent())
	assert.Equal(t, storageErr, err)
	client.AssertNumberOfCalls(t, "PutObjectWithContext", 1)
}
