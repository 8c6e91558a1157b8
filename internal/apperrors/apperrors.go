// Package apperrors defines the engine's error kinds (spec §7) as sentinel
// errors plus a small attribute-carrying wrapper, so every layer raises and
// checks against the same vocabulary instead of ad-hoc strings.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel kinds. Compare with errors.Is, not ==, since callers usually
// receive a *richError wrapping one of these via Wrap/WithAttrs.
var (
	ErrUnknownColumn         = errors.New("unknown column")
	ErrUnsupportedOperator   = errors.New("unsupported operator")
	ErrUnsupportedXAxis      = errors.New("unsupported x-axis")
	ErrIllegalJoin           = errors.New("illegal join")
	ErrTooManyRequests       = errors.New("too many requests")
	ErrTooManyRows           = errors.New("too many rows")
	ErrTooManyGroupByValues  = errors.New("too many group by values")
	ErrCancelledQuery        = errors.New("query cancelled")
	ErrUnsupportedResultType = errors.New("unsupported result type")
)

// HTTPStatus maps an error kind to the HTTP status the API layer should
// return. Unrecognized errors default to 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrTooManyRows), errors.Is(err, ErrTooManyGroupByValues):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUnknownColumn),
		errors.Is(err, ErrUnsupportedOperator),
		errors.Is(err, ErrUnsupportedXAxis),
		errors.Is(err, ErrIllegalJoin),
		errors.Is(err, ErrCancelledQuery),
		errors.Is(err, ErrUnsupportedResultType):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the fixed, user-facing message for kinds the HTTP surface
// documents literally (spec §6): "Too many group by values" / "Too many rows".
func Message(err error) string {
	switch {
	case errors.Is(err, ErrTooManyGroupByValues):
		return "Too many group by values"
	case errors.Is(err, ErrTooManyRows):
		return "Too many rows"
	default:
		return err.Error()
	}
}

// richError enriches a sentinel kind with request-scoped attributes
// (request_id, app_id, datasource id, days requested) before it is
// rethrown, per spec §7's propagation policy.
type richError struct {
	kind  error
	msg   string
	attrs map[string]any
}

func (e *richError) Error() string {
	if e.msg == "" {
		return e.kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.kind.Error(), e.msg)
}

func (e *richError) Unwrap() error { return e.kind }

// Wrap attaches a human-readable detail message to a sentinel kind.
func Wrap(kind error, format string, args ...any) error {
	return &richError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// WithAttrs attaches span-like attributes to an already-built error,
// returning a new error that still unwraps to the same kind.
func WithAttrs(err error, attrs map[string]any) error {
	var re *richError
	if errors.As(err, &re) {
		merged := make(map[string]any, len(re.attrs)+len(attrs))
		for k, v := range re.attrs {
			merged[k] = v
		}
		for k, v := range attrs {
			merged[k] = v
		}
		return &richError{kind: re.kind, msg: re.msg, attrs: merged}
	}
	return &richError{kind: err, attrs: attrs}
}

// Attrs returns the attributes attached to err, if any.
func Attrs(err error) map[string]any {
	var re *richError
	if errors.As(err, &re) {
		return re.attrs
	}
	return nil
}
