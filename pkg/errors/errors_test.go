package errors

import (
	stderrors "errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	t.Run("nil error stays nil", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, ErrorTypeData, "decode"))
	})

	t.Run("keeps cause reachable", func(t *testing.T) {
		err := Wrap(io.EOF, ErrorTypeData, "failed to decode page")
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, io.EOF))
		assert.Equal(t, "data: failed to decode page: EOF", err.Error())
	})

	t.Run("preserves inner stack", func(t *testing.T) {
		inner := New(ErrorTypeQuery, "bad field")
		outer := Wrap(inner, ErrorTypeConnection, "request failed")
		assert.Equal(t, inner.Stack, outer.Stack)
		assert.Equal(t, ErrorTypeConnection, GetType(outer))
	})
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"connection", New(ErrorTypeConnection, "reset"), true},
		{"server", New(ErrorTypeServer, "500"), true},
		{"timeout", New(ErrorTypeTimeout, "deadline"), true},
		{"rate limit", New(ErrorTypeRateLimit, "limit"), false},
		{"query", New(ErrorTypeQuery, "malformed"), false},
		{"plain error", io.ErrUnexpectedEOF, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestWithDetail(t *testing.T) {
	err := Newf(ErrorTypeValidation, "missing %s", "domain").WithDetail("field", "domain")
	assert.Equal(t, "validation: missing domain", err.Error())
	assert.Equal(t, "domain", err.Details["field"])
	assert.True(t, IsType(err, ErrorTypeValidation))
}
