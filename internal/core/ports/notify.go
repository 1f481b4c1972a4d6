package ports

import (
	"context"

	"github.com/oguzbenturk/ukcworld-rates/internal/core/domain"
)

// FailureNotifier delivers one aggregated message to the admin role after a
// tick in which at least one currency update failed. Delivery transport
// (webhook, email, in-app) is an adapter concern.
type FailureNotifier interface {
	NotifyFailures(ctx context.Context, failures []domain.FailedUpdate) error
}
