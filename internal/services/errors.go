package services

import "net/http"

// ErrorKind classifies a WorkflowError for transport mapping.
type ErrorKind string

const (
	KindValidation         ErrorKind = "VALIDATION"
	KindNotFound           ErrorKind = "NOT_FOUND"
	KindForbidden          ErrorKind = "FORBIDDEN"
	KindConflict           ErrorKind = "CONFLICT"
	KindPreconditionFailed ErrorKind = "PRECONDITION_FAILED"
	KindCapacityExceeded   ErrorKind = "CAPACITY_EXCEEDED"
)

// WorkflowError is the domain error every service operation returns for
// business failures. Message is operator-facing (Spanish); Fields lists
// the offending input paths for validation failures.
type WorkflowError struct {
	Kind    ErrorKind
	Message string
	Fields  []string
}

func (e *WorkflowError) Error() string { return e.Message }

// HTTPStatus maps the error kind to a response status code.
func (e *WorkflowError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindPreconditionFailed:
		return http.StatusUnprocessableEntity
	case KindCapacityExceeded:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func NewValidationError(message string, fields ...string) *WorkflowError {
	return &WorkflowError{Kind: KindValidation, Message: message, Fields: fields}
}

func NewNotFoundError(message string) *WorkflowError {
	return &WorkflowError{Kind: KindNotFound, Message: message}
}

func NewForbiddenError(message string) *WorkflowError {
	return &WorkflowError{Kind: KindForbidden, Message: message}
}

func NewConflictError(message string) *WorkflowError {
	return &WorkflowError{Kind: KindConflict, Message: message}
}

func NewPreconditionError(message string) *WorkflowError {
	return &WorkflowError{Kind: KindPreconditionFailed, Message: message}
}

func NewCapacityError(message string) *WorkflowError {
	return &WorkflowError{Kind: KindCapacityExceeded, Message: message}
}
