// Package util provides logging, naming, and common error types.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared across packages
var (
	ErrAlreadyExists    = errors.New("resource already exists")
	ErrNotFound         = errors.New("resource not found")
	ErrConnectionFailed = errors.New("connection failed")
	ErrValidationFailed = errors.New("validation failed")
	ErrUnsupportedKind  = errors.New("unsupported node kind")
	ErrTopologyFile     = errors.New("invalid topology file")
)

// ConnectionError represents a failed exchange with a remote endpoint
type ConnectionError struct {
	Endpoint string
	Reason   string
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %s", e.Endpoint, e.Reason)
}

func (e *ConnectionError) Unwrap() error {
	return ErrConnectionFailed
}

// NewConnectionError creates a connection error
func NewConnectionError(endpoint, reason string) *ConnectionError {
	return &ConnectionError{Endpoint: endpoint, Reason: reason}
}

// ValidationError represents one or more validation failures for a resource
type ValidationError struct {
	Resource string
	Messages []string
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 1 {
		return fmt.Sprintf("validation of %s failed: %s", e.Resource, e.Messages[0])
	}
	return fmt.Sprintf("validation of %s failed:\n  - %s", e.Resource, strings.Join(e.Messages, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a validation error from messages
func NewValidationError(resource string, messages ...string) *ValidationError {
	return &ValidationError{Resource: resource, Messages: messages}
}

// TopologyFileError represents a malformed or unreadable topology file
type TopologyFileError struct {
	Path   string
	Detail string
}

func (e *TopologyFileError) Error() string {
	return fmt.Sprintf("topology file %s: %s", e.Path, e.Detail)
}

func (e *TopologyFileError) Unwrap() error {
	return ErrTopologyFile
}

// NewTopologyFileError creates a topology file error
func NewTopologyFileError(path, detail string) *TopologyFileError {
	return &TopologyFileError{Path: path, Detail: detail}
}
