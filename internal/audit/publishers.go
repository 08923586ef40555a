package audit

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/url-mapper/internal/messaging"
)

// Publishers holds one typed publish function per change topic.
type Publishers struct {
	Created messaging.Publish[MappingCreatedEvent]
	Updated messaging.Publish[MappingUpdatedEvent]
	Deleted messaging.Publish[MappingDeletedEvent]
	Purged  messaging.Publish[MappingsPurgedEvent]
}

// NewPublishers binds every change topic to publisher.
func NewPublishers(publisher message.Publisher) Publishers {
	return Publishers{
		Created: messaging.NewPublishFunc[MappingCreatedEvent](publisher, TopicMappingCreated),
		Updated: messaging.NewPublishFunc[MappingUpdatedEvent](publisher, TopicMappingUpdated),
		Deleted: messaging.NewPublishFunc[MappingDeletedEvent](publisher, TopicMappingDeleted),
		Purged:  messaging.NewPublishFunc[MappingsPurgedEvent](publisher, TopicMappingsPurged),
	}
}

// DiscardPublishers returns publishers that drop every event.
func DiscardPublishers() Publishers {
	return Publishers{
		Created: messaging.Discard[MappingCreatedEvent](),
		Updated: messaging.Discard[MappingUpdatedEvent](),
		Deleted: messaging.Discard[MappingDeletedEvent](),
		Purged:  messaging.Discard[MappingsPurgedEvent](),
	}
}
