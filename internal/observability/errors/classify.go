// Package errors classifies errors into low-cardinality labels for metrics and logs.
package errors

import (
	goerrors "errors"
	"reflect"
	"strings"

	"github.com/target/jobdispatch/internal/domain/ref"
	apperrors "github.com/target/jobdispatch/internal/errors"
)

// Classify returns a normalized error class suitable for metric labels.
// Application errors are labelled by code; other errors by their innermost concrete type.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	var appErr *apperrors.AppError
	if goerrors.As(err, &appErr) {
		return string(appErr.Code)
	}
	switch {
	case goerrors.Is(err, ref.ErrCounterExhausted):
		return "ref_counter_exhausted"
	case goerrors.Is(err, ref.ErrInvalidPrefix):
		return "ref_invalid_prefix"
	case goerrors.Is(err, ref.ErrUnknownEntity):
		return "ref_unknown_entity"
	}

	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.ToLower(strings.ReplaceAll(t.String(), ".", "_"))
	if name == "" {
		return "unknown"
	}
	return name
}
