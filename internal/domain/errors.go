package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Sentinel kinds. Match with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrStore        = errors.New("store failure")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("already exists")
)

// Error carries an error kind together with the entity and field it concerns.
type Error struct {
	Kind    error
	Entity  string
	Field   string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Entity != "" {
		b.WriteString(": ")
		b.WriteString(e.Entity)
	}
	if e.Field != "" {
		b.WriteString(".")
		b.WriteString(e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is lets errors.Is match the sentinel kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports that entity with id does not resolve.
func NotFound(entity, id string) error {
	return &Error{Kind: ErrNotFound, Entity: entity, Message: id}
}

// Forbidden reports that the acting user may not perform action on entity.
func Forbidden(entity, action string) error {
	return &Error{Kind: ErrForbidden, Entity: entity, Message: action}
}

// Invalid reports a single failing field.
func Invalid(entity, field, message string) error {
	return &Error{
		Kind:    ErrValidation,
		Entity:  entity,
		Field:   field,
		Message: message,
		Fields:  map[string]string{field: message},
	}
}

// Store wraps a persistence failure.
func Store(op string, err error) error {
	return &Error{Kind: ErrStore, Message: op, Err: err}
}

// Conflict reports a uniqueness violation on field.
func Conflict(entity, field string) error {
	return &Error{Kind: ErrConflict, Entity: entity, Field: field}
}

// Unauthorized reports a failed identity check.
func Unauthorized(reason string) error {
	return &Error{Kind: ErrUnauthorized, Message: reason}
}

// FromValidation converts ozzo-validation output into a validation error.
// Internal rule errors are returned unchanged.
func FromValidation(entity string, err error) error {
	if err == nil {
		return nil
	}
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return fmt.Errorf("validate %s: %w", entity, err)
	}

	fields := map[string]string{}
	var errs validation.Errors
	if errors.As(err, &errs) {
		for field, fieldErr := range errs {
			fields[field] = fieldErr.Error()
		}
	} else {
		fields[""] = err.Error()
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	return &Error{
		Kind:    ErrValidation,
		Entity:  entity,
		Field:   names[0],
		Message: err.Error(),
		Fields:  fields,
	}
}

// FieldErrors returns the per-field messages of a validation error, if any.
func FieldErrors(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) && e.Kind == ErrValidation {
		return e.Fields
	}
	return nil
}
