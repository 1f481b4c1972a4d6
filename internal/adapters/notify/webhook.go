package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/oguzbenturk/ukcworld-rates/internal/core/domain"
	"github.com/oguzbenturk/ukcworld-rates/internal/core/ports"
)

const defaultWebhookTimeout = 10 * time.Second

// WebhookNotifier posts one aggregated failure message per tick to the
// platform's notification service, addressed to the admin role. Delivery
// beyond this webhook (push, email, in-app fan-out) is the notification
// service's concern.
type WebhookNotifier struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewWebhookNotifier builds a webhook-backed failure notifier.
func NewWebhookNotifier(url string, timeout time.Duration, logger *slog.Logger) *WebhookNotifier {
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type webhookPayload struct {
	Recipient string                `json:"recipient"`
	Subject   string                `json:"subject"`
	Message   string                `json:"message"`
	Failures  []domain.FailedUpdate `json:"failures"`
}

// NotifyFailures delivers the aggregated per-tick failure list.
func (n *WebhookNotifier) NotifyFailures(ctx context.Context, failures []domain.FailedUpdate) error {
	if len(failures) == 0 {
		return nil
	}

	payload := webhookPayload{
		Recipient: "admin",
		Subject:   fmt.Sprintf("Exchange rate update failed for %d currencies", len(failures)),
		Message:   renderMessage(failures),
		Failures:  failures,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal failure notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create failure notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send failure notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned status %d", resp.StatusCode)
	}

	n.logger.Info("Rate failure notification delivered",
		slog.Int("failure_count", len(failures)),
	)
	return nil
}

func renderMessage(failures []domain.FailedUpdate) string {
	builder := strings.Builder{}
	builder.WriteString("The following currencies could not be refreshed:\n")
	for _, f := range failures {
		builder.WriteString(fmt.Sprintf("- %s: %s\n", f.CurrencyCode, f.ErrorMessage))
	}
	builder.WriteString("See the rate update log for per-currency detail.")
	return builder.String()
}

var _ ports.FailureNotifier = (*WebhookNotifier)(nil)
