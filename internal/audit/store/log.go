package store

import (
	"context"

	"github.com/serroba/url-mapper/internal/audit"
	"github.com/serroba/url-mapper/internal/messaging"
	"go.uber.org/zap"
)

// Log is an audit.Store that writes every event to the logger.
type Log struct {
	logger *zap.Logger
}

// NewLog creates a new logging audit store.
func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) SaveCreated(ctx context.Context, event *audit.MappingCreatedEvent) error {
	l.logger.Info("mapping created",
		zap.Int64("id", event.ID),
		zap.String("fullUrl", event.FullURL),
		zap.String("shortUrl", event.ShortURL),
		zap.Time("createdAt", event.CreatedAt),
		zap.String("clientIp", event.ClientIP),
		zap.String("correlationId", messaging.CorrelationIDFromContext(ctx)),
	)

	return nil
}

func (l *Log) SaveUpdated(ctx context.Context, event *audit.MappingUpdatedEvent) error {
	l.logger.Info("mapping updated",
		zap.Int64("id", event.ID),
		zap.String("fullUrl", event.FullURL),
		zap.String("shortUrl", event.ShortURL),
		zap.Time("updatedAt", event.UpdatedAt),
		zap.String("clientIp", event.ClientIP),
		zap.String("correlationId", messaging.CorrelationIDFromContext(ctx)),
	)

	return nil
}

func (l *Log) SaveDeleted(ctx context.Context, event *audit.MappingDeletedEvent) error {
	l.logger.Info("mapping deleted",
		zap.Int64("id", event.ID),
		zap.Time("deletedAt", event.DeletedAt),
		zap.String("clientIp", event.ClientIP),
		zap.String("correlationId", messaging.CorrelationIDFromContext(ctx)),
	)

	return nil
}

func (l *Log) SavePurged(ctx context.Context, event *audit.MappingsPurgedEvent) error {
	l.logger.Warn("all mappings purged",
		zap.Time("purgedAt", event.PurgedAt),
		zap.String("clientIp", event.ClientIP),
		zap.String("correlationId", messaging.CorrelationIDFromContext(ctx)),
	)

	return nil
}

var _ audit.Store = (*Log)(nil)
