// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package model

// ErrorResponse is a standard Extensions API error response,
// providing information about the error.
type ErrorResponse struct {
	ErrorMessage string   `json:"errorMessage"`
	ErrorType    string   `json:"errorType"`
	StackTrace   []string `json:"stackTrace,omitempty"`
}

// ErrorRequest is the optional body of /extension/init/error and
// /extension/exit/error. It shares the error response shape.
type ErrorRequest = ErrorResponse

// StatusResponse is returned by the API on accepted error reports
type StatusResponse struct {
	Status string `json:"status"`
}
