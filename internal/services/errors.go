package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"storefront/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports input the caller can correct.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports an unknown identifier.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// StorageError wraps a persistence failure. Its message never includes the cause.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s", e.Op)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ConflictError reports a uniqueness violation, such as a taken email.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// ForbiddenError reports an operation the caller's role does not allow.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

// repoError converts a repository error into the service taxonomy.
func repoError(err error, op, resource, id string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return &NotFoundError{Resource: resource, ID: id}
	case errors.Is(err, repositories.ErrDuplicate):
		return &ConflictError{Message: fmt.Sprintf("%s already exists", resource)}
	default:
		return &StorageError{Op: op, Err: err}
	}
}

// validationFailure turns the first validator failure into a ValidationError.
func validationFailure(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}
	e := verrs[0]
	var msg string
	switch e.Tag() {
	case "required":
		msg = "is required"
	case "min":
		msg = fmt.Sprintf("must contain at least %s element(s)", e.Param())
	case "max":
		msg = fmt.Sprintf("must be at most %s characters", e.Param())
	case "gte":
		msg = fmt.Sprintf("must be greater than or equal to %s", e.Param())
	case "email":
		msg = "must be a valid email address"
	case "oneof":
		msg = fmt.Sprintf("must be one of [%s]", e.Param())
	default:
		msg = fmt.Sprintf("failed on the '%s' rule", e.Tag())
	}
	field := e.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	return &ValidationError{Field: field, Message: msg}
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
