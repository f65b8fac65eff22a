// Package tokencount estimates prompt sizes for generation calls.
//
// It uses tiktoken-go so oversized evaluation prompts can be flagged before
// they are sent, and output budgets sized accordingly. Counts are an
// approximation for Gemini models but close enough for budgeting.
package tokencount

import (
	"log/slog"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Counter provides thread-safe token counting.
type Counter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

// NewCounter creates a token counter instance.
func NewCounter() *Counter { return &Counter{} }

// DefaultCounter is a process-wide counter.
var DefaultCounter = NewCounter()

func (c *Counter) encoding() (*tiktoken.Tiktoken, error) {
	c.once.Do(func() {
		c.enc, c.err = tiktoken.GetEncoding("cl100k_base")
	})
	return c.enc, c.err
}

// Count returns the token count for text, falling back to a character-based
// estimate when the encoding cannot be loaded.
func (c *Counter) Count(text string) int {
	enc, err := c.encoding()
	if err != nil {
		slog.Debug("token encoding unavailable, estimating", slog.Any("error", err))
		return len(text) / 4
	}
	return len(enc.Encode(text, nil, nil))
}
