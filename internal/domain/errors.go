package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrTodoNotFound    = errors.New("todo not found")
	ErrInvalidTodo     = errors.New("invalid todo")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// ValidationError lists the fields that violated a constraint, keyed by field name.
// errors.Is(err, ErrInvalidTodo) holds for every ValidationError.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidTodo.Error()
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, e.Fields[name])
	}
	return ErrInvalidTodo.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidTodo
}

// Outcome is the result class of a todo operation, independent of transport.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeNotFound
	OutcomeInvalid
	OutcomeUnauthenticated
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeUnauthenticated:
		return "unauthenticated"
	default:
		return "failure"
	}
}

// OutcomeOf classifies err. A nil error is a success.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrTodoNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrInvalidTodo):
		return OutcomeInvalid
	case errors.Is(err, ErrUnauthenticated):
		return OutcomeUnauthenticated
	default:
		return OutcomeFailure
	}
}
