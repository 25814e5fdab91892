// Package envelope provides the uniform success/error result returned at the
// boundary of every document-center operation.
package envelope

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// Status tags a Result as a success or an error.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result is a tagged success/error variant. Content is only meaningful when
// Status is StatusSuccess; Err is only set when Status is StatusError.
type Result[T any] struct {
	Status  Status
	Content T
	Err     error
}

// Success wraps a value in a successful Result.
func Success[T any](content T) Result[T] {
	return Result[T]{Status: StatusSuccess, Content: content}
}

// Failure wraps an error in a failed Result.
func Failure[T any](err error) Result[T] {
	return Result[T]{Status: StatusError, Err: err}
}

// OK reports whether the result is a success.
func (r Result[T]) OK() bool {
	return r.Status == StatusSuccess
}

// Message returns the error text of a failed result, or an empty string.
func (r Result[T]) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

type wire struct {
	Status  Status `json:"status"`
	Content any    `json:"content"`
}

// MarshalJSON renders {"status": "success", "content": <value>} or
// {"status": "error", "content": "<message>"}.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	if r.Status == StatusError {
		return json.Marshal(wire{Status: StatusError, Content: r.Message()})
	}
	return json.Marshal(wire{Status: StatusSuccess, Content: r.Content})
}

// Capture runs fn and converts its outcome into a Result. Failures, including
// panics, are logged with the operation name and never propagate past this call.
func Capture[T any](logger *slog.Logger, op string, fn func() (T, error)) (result Result[T]) {
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("panic in %s: %v", op, p)
			logger.Error("operation failed", "operation", op, "error", err)
			result = Failure[T](err)
		}
	}()

	content, err := fn()
	if err != nil {
		logger.Error("operation failed", "operation", op, "error", err)
		return Failure[T](err)
	}
	return Success(content)
}

// Done is Capture for operations that return no value.
func Done(logger *slog.Logger, op string, fn func() error) Result[struct{}] {
	return Capture(logger, op, func() (struct{}, error) {
		return struct{}{}, fn()
	})
}
