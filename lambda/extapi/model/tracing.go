// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package model

// TracingType names the header the tracing value of an INVOKE event
// belongs to. X-Ray is the only type the Extensions API sends.
type TracingType string

// XRayTracingType is the tracing type of X-Ray trace headers
const XRayTracingType TracingType = "X-Amzn-Trace-Id"

// Tracing is the optional `tracing` object of an INVOKE event
type Tracing struct {
	Type TracingType `json:"type"`
	XRayTracing
}

// XRayTracing holds the raw trace header, e.g. `Root=1-...;Sampled=1`
type XRayTracing struct {
	Value string `json:"value"`
}

// NewXRayTracing returns nil for an empty traceID, the event then carries
// no tracing object.
func NewXRayTracing(traceID string) *Tracing {
	if traceID == "" {
		return nil
	}
	return &Tracing{Type: XRayTracingType, XRayTracing: XRayTracing{Value: traceID}}
}
