package notify

import (
	"context"
	"log/slog"

	"github.com/oguzbenturk/ukcworld-rates/internal/core/domain"
	"github.com/oguzbenturk/ukcworld-rates/internal/core/ports"
)

// LogNotifier writes the aggregated failure message to the structured log.
// Used when no notification webhook is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier builds a log-backed failure notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// NotifyFailures logs the aggregated per-tick failure list.
func (n *LogNotifier) NotifyFailures(ctx context.Context, failures []domain.FailedUpdate) error {
	if len(failures) == 0 {
		return nil
	}
	codes := make([]string, len(failures))
	for i, f := range failures {
		codes[i] = f.CurrencyCode
	}
	n.logger.Warn("Rate updates failed this tick",
		slog.Int("failure_count", len(failures)),
		slog.Any("currencies", codes),
	)
	return nil
}

var _ ports.FailureNotifier = (*LogNotifier)(nil)
