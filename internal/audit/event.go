package audit

import "time"

const (
	TopicMappingCreated = "mapping.created"
	TopicMappingUpdated = "mapping.updated"
	TopicMappingDeleted = "mapping.deleted"
	TopicMappingsPurged = "mapping.purged"
)

// Actor describes who triggered a change.
type Actor struct {
	ClientIP  string `json:"clientIp"`
	UserAgent string `json:"userAgent"`
}

// MappingCreatedEvent is emitted after a mapping is stored.
type MappingCreatedEvent struct {
	ID        int64     `json:"id"`
	FullURL   string    `json:"fullUrl"`
	ShortURL  string    `json:"shortUrl"`
	CreatedAt time.Time `json:"createdAt"`
	Actor
}

// MappingUpdatedEvent is emitted after a mapping is overwritten.
type MappingUpdatedEvent struct {
	ID        int64     `json:"id"`
	FullURL   string    `json:"fullUrl"`
	ShortURL  string    `json:"shortUrl"`
	UpdatedAt time.Time `json:"updatedAt"`
	Actor
}

// MappingDeletedEvent is emitted after a single mapping is removed.
type MappingDeletedEvent struct {
	ID        int64     `json:"id"`
	DeletedAt time.Time `json:"deletedAt"`
	Actor
}

// MappingsPurgedEvent is emitted after every mapping is removed.
type MappingsPurgedEvent struct {
	PurgedAt time.Time `json:"purgedAt"`
	Actor
}
