// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package model

const (
	// APIVersion is the path prefix of the Extensions API
	APIVersion string = "/2020-01-01"

	LambdaAgentName              string = "Lambda-Extension-Name"
	LambdaAgentIdentifier        string = "Lambda-Extension-Identifier"
	LambdaAgentFunctionErrorType string = "Lambda-Extension-Function-Error-Type"

	ErrAgentIdentifierMissing string = "Extension.MissingExtensionIdentifier"
	ErrAgentIdentifierInvalid string = "Extension.InvalidExtensionIdentifier"
)
