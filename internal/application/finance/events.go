package finance

import (
	"context"

	"go.uber.org/zap"

	"github.com/backoffice/backend/internal/domain/shared"
)

// publishDomainEvents drains the aggregate's pending events onto the bus.
// Event handling is a secondary effect: failures are logged and swallowed
// so the primary operation still succeeds.
func publishDomainEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, agg shared.AggregateRoot) {
	if publisher == nil {
		return
	}
	for _, event := range agg.GetDomainEvents() {
		if err := publisher.Publish(ctx, event); err != nil {
			logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
	agg.ClearDomainEvents()
}
