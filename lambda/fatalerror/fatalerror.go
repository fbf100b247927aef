// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package fatalerror

import "strings"

// This package defines the error types an extension reports to the
// Extensions API in the Lambda-Extension-Function-Error-Type header.
// Separate package for namespacing

// ErrorType is sent with /extension/init/error and /extension/exit/error
type ErrorType string

const (
	ExtensionInitError     ErrorType = "Extension.InitError"     // Init processing failed after registration
	ExtensionInvokeError   ErrorType = "Extension.InvokeError"   // an INVOKE event could not be processed
	ExtensionShutdownError ErrorType = "Extension.ShutdownError" // a SHUTDOWN event could not be processed
	ExtensionInvalidEvent  ErrorType = "Extension.InvalidEvent"  // /event/next returned an unknown event type
	Unknown                ErrorType = "Unknown"
)

const extensionErrorPrefix = "Extension."

var validExtensionErrors = map[ErrorType]struct{}{
	ExtensionInitError:     {},
	ExtensionInvokeError:   {},
	ExtensionShutdownError: {},
	ExtensionInvalidEvent:  {},
}

// GetValidExtensionErrorType returns errorType when it is a known type or
// carries the Extension. category prefix, Unknown otherwise.
func GetValidExtensionErrorType(errorType string) ErrorType {
	if _, ok := validExtensionErrors[ErrorType(errorType)]; ok {
		return ErrorType(errorType)
	}

	if strings.HasPrefix(errorType, extensionErrorPrefix) && len(errorType) > len(extensionErrorPrefix) {
		return ErrorType(errorType)
	}

	return Unknown
}
