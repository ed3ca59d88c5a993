package observability

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// Pipeline event types.
const (
	EventImageResolved = "image.resolved"
	EventImageFailed   = "image.failed"
	EventPathMapped    = "path.mapped"
	EventCacheSwept    = "cache.swept"
)

// EventBus implements the domain.EventPublisher interface on top of the context logger.
type EventBus struct {
	logger *zap.Logger
}

// NewEventBus creates a new event bus. A nil logger routes events through FromContext.
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		logger: logger,
	}
}

// Publish publishes an event with the given type and data.
func (e *EventBus) Publish(ctx context.Context, eventType string, data map[string]any) {
	logger := FromContext(ctx)
	if e.logger != nil {
		logger = e.logger
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]zap.Field, 0, len(data)+1)
	fields = append(fields, zap.String("event", eventType))
	for _, k := range keys {
		fields = append(fields, zap.Any(k, data[k]))
	}

	logger.Info(eventType, fields...)
}
