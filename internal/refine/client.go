package refine

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client rewrites free text into a tidier form. The backing service is
// simulated with a fixed delay; callers must pass a context with a deadline
// and run the call off the request path.
type Client struct {
	delay  time.Duration
	logger *zap.Logger
}

// NewClient creates a refinement client with the configured simulated latency.
func NewClient(delay time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{delay: delay, logger: logger}
}

// Refine returns a polished version of text, using department as a context
// hint. Blocks for the simulated latency or until ctx is done.
func (c *Client) Refine(ctx context.Context, text, department string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(c.delay):
	}
	refined := Polish(text, department)
	c.logger.Debug("text refined", zap.Int("in_len", len(text)), zap.Int("out_len", len(refined)))
	return refined, nil
}

// Polish normalizes whitespace, sentence-cases each sentence and ensures a
// closing period. Deterministic stand-in for the remote rewriter.
func Polish(text, department string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	s := strings.Join(words, " ")
	s = strings.ToUpper(s[:1]) + s[1:]
	if !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "!") && !strings.HasSuffix(s, "?") {
		s += "."
	}
	if department != "" {
		s += " (" + department + ")"
	}
	return s
}
