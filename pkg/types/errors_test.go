package types

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"not found", ErrNotFound, false},
		{"wrapped not found", fmt.Errorf("get: %w", ErrNotFound), false},
		{"transport", NewTransportError("get", errors.New("reset")), true},
		{"wrapped transport", fmt.Errorf("x: %w", NewTransportError("put", nil)), true},
		{"deadline", context.DeadlineExceeded, true},
		{"other", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestTransportError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewTransportError("put", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "put")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrapContextError(t *testing.T) {
	assert.NoError(t, WrapContextError("get", nil))

	err := WrapContextError("get", context.Canceled)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "get", te.Op)
	assert.ErrorIs(t, err, context.Canceled)

	plain := errors.New("plain")
	assert.Equal(t, plain, WrapContextError("get", plain))
}

func TestKeyHex(t *testing.T) {
	key := make([]byte, StorageKeySize)
	key[0] = 0xab
	s := KeyHex(key)

	back, err := ParseKeyHex(s)
	require.NoError(t, err)
	assert.Equal(t, key, back)

	_, err = ParseKeyHex("abcd")
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = ParseKeyHex("zz")
	assert.Error(t, err)
}
