// Package errors provides typed errors for the biocat experiment pipeline.
//
// All constructors return errors that participate in Go 1.13+ error chains
// and carry stack traces via cockroachdb/errors, so a failed fit deep inside
// the robustness loop can be reported with full context. Callers are expected
// to match with errors.As / errors.Is rather than string comparison.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors shared across packages.
var (
	// ErrNotImplemented indicates a requested feature is not available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrEmptyData indicates an operation received no samples.
	ErrEmptyData = errors.New("empty data")

	// ErrDegenerateTarget indicates a training split whose target has fewer
	// than two distinct classes, making classification fits impossible.
	ErrDegenerateTarget = errors.New("fewer than 2 distinct target classes")
)

// ValueError indicates an invalid input value to an operation.
type ValueError struct {
	Op      string // operation that rejected the value
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("biocat: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError for the given operation.
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// DimensionError indicates mismatched matrix or vector dimensions.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 = rows, 1 = columns
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("biocat: %s: dimension mismatch on axis %d: expected %d, got %d",
		e.Op, e.Axis, e.Expected, e.Got)
}

// NewDimensionError creates a DimensionError for the given operation.
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// NotFittedError indicates a model was used before training.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("biocat: %s: model must be fitted before calling %s", e.ModelName, e.Method)
}

// NewNotFittedError creates a NotFittedError.
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// ValidationError indicates an invalid parameter value, caught at
// construction time before it can produce NaN or Inf downstream.
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("biocat: invalid %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a ValidationError for a parameter.
func NewValidationError(field, message string, value interface{}) error {
	return errors.WithStack(&ValidationError{Field: field, Message: message, Value: value})
}

// ModelError wraps a failure inside a specific model with its cause.
type ModelError struct {
	Model   string
	Message string
	Cause   error
}

func (e *ModelError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("biocat: %s: %s: %v", e.Model, e.Message, e.Cause)
	}
	return fmt.Sprintf("biocat: %s: %s", e.Model, e.Message)
}

func (e *ModelError) Unwrap() error { return e.Cause }

// NewModelError creates a ModelError wrapping cause (which may be nil).
func NewModelError(model, message string, cause error) error {
	return errors.WithStack(&ModelError{Model: model, Message: message, Cause: cause})
}

// Recover converts a panic inside an operation into a returned error.
// Intended for use at public Fit/Predict boundaries:
//
//	func (m *Model) Fit(X, y mat.Matrix) (err error) {
//	    defer errors.Recover(&err, "Model.Fit")
//	    ...
//	}
func Recover(errp *error, op string) {
	if r := recover(); r != nil {
		if err, ok := r.(error); ok {
			*errp = errors.Wrapf(err, "biocat: panic in %s", op)
			return
		}
		*errp = errors.Newf("biocat: panic in %s: %v", op, r)
	}
}
