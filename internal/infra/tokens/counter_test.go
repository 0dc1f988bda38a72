package tokens

import (
	"errors"
	"testing"

	"github.com/pkoukk/tiktoken-go"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/gopher-digest/pkg/logger"
)

func TestCountTokensFallsBackToRunes(t *testing.T) {
	t.Parallel()

	loads := 0
	counter := newCounter(func() (*tiktoken.Tiktoken, error) {
		loads++
		return nil, errors.New("offline")
	}, logger.Discard())

	require.Equal(t, 5, counter.CountTokens("hello"))
	require.Equal(t, 4, counter.CountTokens("繁體中文"))
	require.Zero(t, counter.CountTokens(""))
	require.Equal(t, 1, loads)
}
