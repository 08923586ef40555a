package audit

import "context"

// Store defines the interface for persisting mapping change events.
type Store interface {
	SaveCreated(ctx context.Context, event *MappingCreatedEvent) error
	SaveUpdated(ctx context.Context, event *MappingUpdatedEvent) error
	SaveDeleted(ctx context.Context, event *MappingDeletedEvent) error
	SavePurged(ctx context.Context, event *MappingsPurgedEvent) error
}
