// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extapi

import (
	"encoding/json"
	"time"

	"github.com/corp-demo/lambda-extensions/lambda/extapi/model"
	"github.com/pkg/errors"
)

// ErrUnknownEventType is returned when /extension/event/next replies with
// an event outside of INVOKE and SHUTDOWN.
var ErrUnknownEventType = errors.New("unknown extension event type")

// Event is one of *InvokeEvent, *ShutdownEvent. The set is closed.
type Event interface {
	Type() model.EventType
	isEvent()
}

// InvokeEvent carries the metadata of the invocation about to be processed
// by the function.
type InvokeEvent struct {
	DeadlineMs         uint64
	RequestID          string
	InvokedFunctionArn string
	Tracing            *model.Tracing
}

func (*InvokeEvent) Type() model.EventType { return model.InvokeEventType }
func (*InvokeEvent) isEvent()              {}

// Deadline is DeadlineMs as wall clock time
func (e *InvokeEvent) Deadline() time.Time {
	return time.UnixMilli(int64(e.DeadlineMs))
}

// ShutdownEvent is delivered once, when the execution environment is
// about to be terminated.
type ShutdownEvent struct {
	DeadlineMs     uint64
	ShutdownReason model.ShutdownReason
}

func (*ShutdownEvent) Type() model.EventType { return model.ShutdownEventType }
func (*ShutdownEvent) isEvent()              {}

// DecodeEvent parses a /extension/event/next response body
func DecodeEvent(body []byte) (Event, error) {
	var header model.AgentEvent
	if err := json.Unmarshal(body, &header); err != nil {
		return nil, errors.Wrap(err, "failed to decode extension event")
	}

	switch header.EventType {
	case model.InvokeEventType:
		var invoke model.AgentInvokeEvent
		if err := json.Unmarshal(body, &invoke); err != nil {
			return nil, errors.Wrap(err, "failed to decode INVOKE event")
		}
		return &InvokeEvent{
			DeadlineMs:         header.DeadlineMs,
			RequestID:          invoke.RequestID,
			InvokedFunctionArn: invoke.InvokedFunctionArn,
			Tracing:            invoke.Tracing,
		}, nil

	case model.ShutdownEventType:
		var shutdown model.AgentShutdownEvent
		if err := json.Unmarshal(body, &shutdown); err != nil {
			return nil, errors.Wrap(err, "failed to decode SHUTDOWN event")
		}
		return &ShutdownEvent{
			DeadlineMs:     header.DeadlineMs,
			ShutdownReason: shutdown.ShutdownReason,
		}, nil
	}

	return nil, errors.Wrapf(ErrUnknownEventType, "%q", header.EventType)
}
