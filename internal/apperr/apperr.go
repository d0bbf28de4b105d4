// Package apperr defines the fixed error taxonomy shared by the post and
// feed services. Handlers match on the sentinels with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest marks schema, shape or bounds violations.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotFound marks a missing post or thread parent.
	ErrNotFound = errors.New("not found")
	// ErrAccessDenied marks an actor that does not own the resource.
	ErrAccessDenied = errors.New("access denied")
	// ErrUnimplemented marks intentionally unsupported operations, currently
	// only deleting a post that has replies.
	ErrUnimplemented = errors.New("not implemented")
	// ErrDependency marks a failed or timed-out downstream call.
	ErrDependency = errors.New("dependency failure")
)

// InvalidRequest returns an ErrInvalidRequest with detail.
func InvalidRequest(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, msg)
}

// NotFound returns an ErrNotFound with detail.
func NotFound(msg string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, msg)
}

// AccessDenied returns an ErrAccessDenied with detail.
func AccessDenied(msg string) error {
	return fmt.Errorf("%w: %s", ErrAccessDenied, msg)
}

// Unimplemented returns an ErrUnimplemented with detail.
func Unimplemented(msg string) error {
	return fmt.Errorf("%w: %s", ErrUnimplemented, msg)
}

// Dependency wraps a downstream failure, keeping the cause on the chain.
func Dependency(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDependency, op, err)
}
