package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormat(t *testing.T) {
	e := New(ErrKindNotFound, "database missing")
	assert.Equal(t, "[not_found] database missing", e.Error())

	wrapped := Wrap(ErrKindQueryFailed, "create failed", errors.New("boom"))
	assert.Equal(t, "[query_failed] create failed: boom", wrapped.Error())
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	e := Wrap(ErrKindConnectionFailed, "connect", cause)

	require.ErrorIs(t, e, cause)

	var target *Error
	require.ErrorAs(t, fmt.Errorf("outer: %w", e), &target)
	assert.Equal(t, ErrKindConnectionFailed, target.Kind)
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		predicate func(error) bool
		want      bool
	}{
		{"not found", New(ErrKindNotFound, "x"), IsNotFound, true},
		{"not found through wrapping", fmt.Errorf("op: %w", New(ErrKindNotFound, "x")), IsNotFound, true},
		{"already exists", New(ErrKindAlreadyExists, "x"), IsAlreadyExists, true},
		{"timeout", New(ErrKindTimeout, "x"), IsTimeout, true},
		{"connection failed", New(ErrKindConnectionFailed, "x"), IsConnectionFailed, true},
		{"query failed", New(ErrKindQueryFailed, "x"), IsQueryFailed, true},
		{"invalid input", New(ErrKindInvalidInput, "x"), IsInvalidInput, true},
		{"permission denied", New(ErrKindPermissionDenied, "x"), IsPermissionDenied, true},
		{"unsupported", New(ErrKindUnsupported, "x"), IsUnsupported, true},
		{"kind mismatch", New(ErrKindNotFound, "x"), IsTimeout, false},
		{"plain error", errors.New("plain"), IsNotFound, false},
		{"nil error", nil, IsNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.predicate(tt.err))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "unknown", ErrKindUnknown.String())
	assert.Equal(t, "already_exists", ErrKindAlreadyExists.String())
	assert.Equal(t, "unsupported", ErrKindUnsupported.String())
	assert.Equal(t, "unknown", ErrKind(999).String())
}
