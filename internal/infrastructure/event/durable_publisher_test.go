package event

import (
	"context"
	"testing"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurableEventPublisher_Publish(t *testing.T) {
	repo := newMockOutboxRepository()
	serializer := NewEventSerializer()
	publisher := NewDurableEventPublisher(repo, serializer)

	event := newSerializerTestEvent()

	err := publisher.Publish(context.Background(), event)

	require.NoError(t, err)
	require.Len(t, repo.entries, 1)
	for _, entry := range repo.entries {
		assert.Equal(t, event.EventID(), entry.EventID)
		assert.Equal(t, "SerializerTestEvent", entry.EventType)
		assert.Equal(t, event.TenantID(), entry.TenantID)
		assert.Equal(t, shared.OutboxStatusPending, entry.Status)
		assert.Contains(t, string(entry.Payload), `"data":"test data"`)
	}
}

func TestDurableEventPublisher_PublishNoEvents(t *testing.T) {
	repo := newMockOutboxRepository()
	publisher := NewDurableEventPublisher(repo, NewEventSerializer())

	err := publisher.Publish(context.Background())

	require.NoError(t, err)
	assert.Empty(t, repo.entries)
}
