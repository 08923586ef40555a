package audit

import (
	"time"

	"github.com/serroba/url-mapper/internal/messaging"
	"go.uber.org/zap"
)

const (
	saveAttempts = 3
	saveBackoff  = 200 * time.Millisecond
)

// RegisterConsumers adds one consumer per change topic to group, each
// persisting into store.
func RegisterConsumers(group *messaging.ConsumerGroup, store Store, logger *zap.Logger) {
	sub := group.Subscriber()
	retries := messaging.WithRetries(saveAttempts, saveBackoff)

	group.Add(
		messaging.NewConsumer[MappingCreatedEvent](sub, TopicMappingCreated, store.SaveCreated, logger, retries),
		messaging.NewConsumer[MappingUpdatedEvent](sub, TopicMappingUpdated, store.SaveUpdated, logger, retries),
		messaging.NewConsumer[MappingDeletedEvent](sub, TopicMappingDeleted, store.SaveDeleted, logger, retries),
		messaging.NewConsumer[MappingsPurgedEvent](sub, TopicMappingsPurged, store.SavePurged, logger, retries),
	)
}
