package tokens

import (
	"log/slog"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/yanqian/gopher-digest/pkg/util"
)

const encodingName = "cl100k_base"

// Counter estimates token counts with tiktoken, falling back to rune counts
// when the encoding cannot be loaded.
type Counter struct {
	load   func() (*tiktoken.Tiktoken, error)
	logger *slog.Logger

	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewCounter loads the encoding lazily on first use.
func NewCounter(logger *slog.Logger) *Counter {
	return newCounter(func() (*tiktoken.Tiktoken, error) {
		return tiktoken.GetEncoding(encodingName)
	}, logger)
}

func newCounter(load func() (*tiktoken.Tiktoken, error), logger *slog.Logger) *Counter {
	return &Counter{load: load, logger: logger.With("component", "tokens.counter")}
}

// CountTokens returns the number of tokens in text.
func (c *Counter) CountTokens(text string) int {
	c.once.Do(func() {
		enc, err := c.load()
		if err != nil {
			c.logger.Warn("tokenizer unavailable, counting runes instead", "encoding", encodingName, "error", err)
			return
		}
		c.enc = enc
	})
	if c.enc == nil {
		return util.RuneLen(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}
