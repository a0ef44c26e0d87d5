package format

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/inkwell-ai/inkwell/internal/observability"
	"github.com/inkwell-ai/inkwell/internal/toolresult"
)

// Gate sits between classified tool outcomes and the user. Its two
// guarantees hold no matter what the formatter does:
//
//   - a failed outcome is always rendered as a failure, starting with the
//     language's error prefix; the formatter never sees it.
//   - a success comes back in the conversation's language, retried once
//     and then rendered deterministically if the formatter cannot manage.
type Gate struct {
	formatter Formatter
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewGate builds a gate over formatter, which may be nil; the gate then
// renders everything deterministically. Timeout bounds each formatter
// call, retry included, zero meaning no bound beyond the caller's context.
func NewGate(formatter Formatter, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		formatter: formatter,
		timeout:   timeout,
		logger:    logger,
		metrics:   metrics,
	}
}

// Render produces the user-facing response for one classified outcome.
// It never returns an empty string and never fails.
func (g *Gate) Render(ctx context.Context, req Request, outcome toolresult.Outcome) string {
	if outcome.Failed() {
		reason := outcome.Reason
		if reason == "" {
			reason = "the requested operation failed"
		}
		return FailureText(req.Language, reason)
	}

	if g.formatter == nil {
		return Fallback(req)
	}

	text, ok := g.tryFormat(ctx, req)
	if ok && !ScriptConsistent(text, req.Language) {
		g.logger.Warn("formatter response in wrong language, retrying",
			"formatter", g.formatter.Name(),
			"language", string(req.Language),
		)
		if g.metrics != nil {
			g.metrics.FormatterRetries.Inc()
		}
		retry := req
		retry.Strict = true
		text, ok = g.tryFormat(ctx, retry)
		if ok && !ScriptConsistent(text, req.Language) {
			ok = false
		}
	}
	if !ok {
		if g.metrics != nil {
			g.metrics.FormatterFallbacks.Inc()
		}
		return Fallback(req)
	}
	return text
}

// tryFormat runs the formatter once under the gate's timeout. Empty
// responses count as failures.
func (g *Gate) tryFormat(ctx context.Context, req Request) (string, bool) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	text, err := g.formatter.Format(ctx, req)
	if err != nil {
		g.logger.Warn("formatter call failed",
			"formatter", g.formatter.Name(),
			"error", err,
		)
		return "", false
	}
	text = strings.TrimSpace(text)
	return text, text != ""
}
