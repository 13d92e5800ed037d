package events

import "time"

// ExecutionStart is emitted before executing a GraphQL operation.
// Context carries the execution's request id.
type ExecutionStart struct {
	OperationName string
	OperationType string
}

// ExecutionFinish is emitted after executing a GraphQL operation.
type ExecutionFinish struct {
	OperationName string
	OperationType string
	// DataOmitted is set when execution stopped before any field ran.
	DataOmitted bool
	Errors      []error
	Duration    time.Duration
}

// FieldError is emitted when a field error is absorbed by a nullable position.
type FieldError struct {
	Path    string
	Message string
	Err     error
}
