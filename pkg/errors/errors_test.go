package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapFormatsMessage(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := Wrap(CodeNetwork, "fetch failed", cause)

	require.EqualError(t, err, "fetch failed: dial tcp: timeout")
	require.ErrorIs(t, err, cause)
	require.EqualError(t, Wrap(CodeNoContent, "nothing usable", nil), "nothing usable")
}

func TestIsCodeThroughWrapping(t *testing.T) {
	inner := Wrap(CodeSchemaViolation, "bad reply", nil)
	outer := fmt.Errorf("summarize: %w", inner)

	require.True(t, IsCode(outer, CodeSchemaViolation))
	require.False(t, IsCode(outer, CodeModelUnavailable))
	require.False(t, IsCode(errors.New("plain"), CodeSchemaViolation))
	require.Equal(t, CodeSchemaViolation, CodeOf(outer))
	require.Empty(t, CodeOf(errors.New("plain")))
}
