// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/corp-demo/lambda-extensions/lambda/config"
	"github.com/corp-demo/lambda-extensions/lambda/extapi/extapitest"
	"github.com/corp-demo/lambda-extensions/lambda/extapi/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type putObject struct {
	bucket      string
	key         string
	contentType string
	body        []byte
}

type fakeS3 struct {
	s3iface.S3API

	mu   sync.Mutex
	puts []putObject
	err  error
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, putObject{
		bucket:      aws.StringValue(input.Bucket),
		key:         aws.StringValue(input.Key),
		contentType: aws.StringValue(input.ContentType),
		body:        body,
	})
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func factory(client s3iface.S3API) s3ClientFactory {
	return func() (s3iface.S3API, error) { return client, nil }
}

func setEnv(t *testing.T, server *extapitest.Server, functionName, bucketName string) {
	t.Setenv(config.RuntimeAPIEnvVar, server.RuntimeAPI())
	t.Setenv(config.FunctionNameEnvVar, functionName)
	t.Setenv(config.BucketNameEnvVar, bucketName)
}

func TestStartArchivesInvocations(t *testing.T) {
	const arn = "arn:aws:lambda:us-east-1:123:function:myFn"
	server := extapitest.NewServer(
		extapitest.InvokeEvent("abc-123", arn, 1700000000000),
		extapitest.ShutdownEvent(model.ShutdownReasonSpindown, 1700000001000),
	)
	defer server.Close()
	setEnv(t, server, "myFn", "my-bucket")

	client := &fakeS3{}
	require.NoError(t, start(context.Background(), []string{"/opt/extensions/event-collector"}, factory(client)))

	require.Len(t, client.puts, 1)
	assert.Equal(t, "my-bucket", client.puts[0].bucket)
	assert.Regexp(t, `^myFn/\d{13}\.json$`, client.puts[0].key)
	assert.Equal(t, "application/json", client.puts[0].contentType)
	assert.JSONEq(t,
		`{"deadline_ms":1700000000000,"request_id":"abc-123","invoked_function_arn":"arn:aws:lambda:us-east-1:123:function:myFn"}`,
		string(client.puts[0].body))

	require.Len(t, server.Registrations(), 1)
	assert.Equal(t, "event-collector", server.Registrations()[0].Name)
	assert.Empty(t, server.ExitErrors())
}

func TestStartShutdownOnlyNeverWrites(t *testing.T) {
	server := extapitest.NewServer(extapitest.ShutdownEvent(model.ShutdownReasonTimeout, 1))
	defer server.Close()
	setEnv(t, server, "myFn", "my-bucket")

	client := &fakeS3{}
	require.NoError(t, start(context.Background(), []string{"event-collector"}, factory(client)))
	assert.Empty(t, client.puts)
}

func TestStartStorageFailure(t *testing.T) {
	server := extapitest.NewServer(
		extapitest.InvokeEvent("abc-123", "arn", 1),
		extapitest.InvokeEvent("def-456", "arn", 2),
	)
	defer server.Close()
	setEnv(t, server, "myFn", "my-bucket")

	storageErr := awserr.New("AccessDenied", "Access Denied", nil)
	client := &fakeS3{err: storageErr}

	err := start(context.Background(), []string{"event-collector"}, factory(client))
	assert.Equal(t, storageErr, err)
	assert.Len(t, client.puts, 1)

	require.Len(t, server.ExitErrors(), 1)
	assert.Equal(t, "Extension.InvokeError", server.ExitErrors()[0].ErrorType)
}

func TestStartWithoutConfigurationNeverRegisters(t *testing.T) {
	tests := []struct {
		name         string
		functionName string
		bucketName   string
	}{
		{"missing function name", "", "my-bucket"},
		{"missing bucket name", "myFn", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := extapitest.NewServer(extapitest.InvokeEvent("abc-123", "arn", 1))
			defer server.Close()
			setEnv(t, server, tt.functionName, tt.bucketName)

			factoryCalled := false
			newS3Client := func() (s3iface.S3API, error) {
				factoryCalled = true
				return &fakeS3{}, nil
			}

			err := start(context.Background(), []string{"event-collector"}, newS3Client)

			var missing *config.MissingError
			assert.True(t, errors.As(err, &missing))
			assert.False(t, factoryCalled)
			assert.Empty(t, server.Registrations())
			assert.Equal(t, 0, server.NextCalls())
		})
	}
}
