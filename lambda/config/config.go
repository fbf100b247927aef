// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"path/filepath"

	"github.com/jessevdk/go-flags"
)

const (
	FunctionNameEnvVar = "FUNCTION_NAME"
	BucketNameEnvVar   = "BUCKET_NAME"
	RuntimeAPIEnvVar   = "AWS_LAMBDA_RUNTIME_API"

	defaultLogLevel = "info"
)

// Config is read once at process start and never mutated afterwards.
// Every field can be given as a flag or through the environment.
type Config struct {
	FunctionName  string `long:"function-name" env:"FUNCTION_NAME" description:"name used as key prefix for archived events"`
	BucketName    string `long:"bucket-name" env:"BUCKET_NAME" description:"S3 bucket receiving archived events"`
	RuntimeAPI    string `long:"runtime-api" env:"AWS_LAMBDA_RUNTIME_API" description:"host:port of the Extensions API"`
	ExtensionName string `long:"extension-name" description:"name to register with, defaults to the executable name"`
	LogLevel      string `long:"log-level" env:"LOG_LEVEL" default:"info" description:"log level"`
}

// MissingError is returned when a required value is absent
type MissingError struct {
	Name string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s must be set", e.Name)
}

// Load parses args (os.Args layout, program name first) and the environment.
// Only the runtime API endpoint is required here, see RequireArchive.
func Load(args []string) (*Config, error) {
	var cfg Config
	parser := flags.NewParser(&cfg, flags.IgnoreUnknown)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if cfg.ExtensionName == "" && len(args) > 0 {
		cfg.ExtensionName = filepath.Base(args[0])
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	if cfg.RuntimeAPI == "" {
		return nil, &MissingError{Name: RuntimeAPIEnvVar}
	}

	return &cfg, nil
}

// LoadArchive is Load followed by RequireArchive
func LoadArchive(args []string) (*Config, error) {
	cfg, err := Load(args)
	if err != nil {
		return nil, err
	}

	if err := cfg.RequireArchive(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// RequireArchive checks the identifiers needed to archive events
func (c *Config) RequireArchive() error {
	if c.FunctionName == "" {
		return &MissingError{Name: FunctionNameEnvVar}
	}
	if c.BucketName == "" {
		return &MissingError{Name: BucketNameEnvVar}
	}
	return nil
}

