// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package model

// EventType is one of the lifecycle events an extension subscribes to
type EventType string

const (
	InvokeEventType   EventType = "INVOKE"
	ShutdownEventType EventType = "SHUTDOWN"
)

// ShutdownReason is reported as part of the SHUTDOWN event
type ShutdownReason string

const (
	ShutdownReasonSpindown ShutdownReason = "spindown"
	ShutdownReasonTimeout  ShutdownReason = "timeout"
	ShutdownReasonFailure  ShutdownReason = "failure"
)

// AgentEvent is one of INVOKE, SHUTDOWN agent events
type AgentEvent struct {
	EventType  EventType `json:"eventType"`
	DeadlineMs uint64    `json:"deadlineMs"`
}

// AgentInvokeEvent is the response to agent's get next request
type AgentInvokeEvent struct {
	*AgentEvent
	RequestID          string   `json:"requestId"`
	InvokedFunctionArn string   `json:"invokedFunctionArn"`
	Tracing            *Tracing `json:"tracing,omitempty"`
}

// AgentShutdownEvent is the response to agent's get next request
type AgentShutdownEvent struct {
	*AgentEvent
	ShutdownReason ShutdownReason `json:"shutdownReason"`
}
