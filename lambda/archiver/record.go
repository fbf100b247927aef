// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package archiver

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/corp-demo/lambda-extensions/lambda/extapi"
)

// Record is the stored form of an INVOKE event
type Record struct {
	DeadlineMs         uint64 `json:"deadline_ms" structs:"deadline_ms"`
	RequestID          string `json:"request_id" structs:"request_id"`
	InvokedFunctionArn string `json:"invoked_function_arn" structs:"invoked_function_arn"`
}

// NewRecord maps an INVOKE event to its stored form
func NewRecord(event *extapi.InvokeEvent) Record {
	return Record{
		DeadlineMs:         event.DeadlineMs,
		RequestID:          event.RequestID,
		InvokedFunctionArn: event.InvokedFunctionArn,
	}
}

// SerializationError is returned when a record cannot be encoded
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("failed to serialize record: %s", e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// Marshal encodes the record as a JSON object
func (r Record) Marshal() ([]byte, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return nil, &SerializationError{Err: err}
	}
	return body, nil
}

// Key is the object key of a record uploaded at t.
// Uploads within the same millisecond share a key, the last one wins.
func Key(functionName string, t time.Time) string {
	return fmt.Sprintf("%s/%d.json", functionName, t.UnixMilli())
}
