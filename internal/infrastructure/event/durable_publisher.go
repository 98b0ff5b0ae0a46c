package event

import (
	"context"

	"github.com/backoffice/backend/internal/domain/shared"
)

// DurableEventPublisher persists domain events to the outbox table instead of
// dispatching them directly. The OutboxProcessor later delivers them to the
// event bus, so delivery survives process restarts.
type DurableEventPublisher struct {
	repo       shared.OutboxRepository
	serializer *EventSerializer
}

// NewDurableEventPublisher creates a publisher backed by the given outbox repository
func NewDurableEventPublisher(repo shared.OutboxRepository, serializer *EventSerializer) *DurableEventPublisher {
	return &DurableEventPublisher{
		repo:       repo,
		serializer: serializer,
	}
}

// Publish serializes the events and stores them as pending outbox entries
func (p *DurableEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		payload, err := p.serializer.Serialize(event)
		if err != nil {
			return err
		}
		entries = append(entries, shared.NewOutboxEntry(event.TenantID(), event, payload))
	}

	return p.repo.Save(ctx, entries...)
}

var _ shared.EventPublisher = (*DurableEventPublisher)(nil)
