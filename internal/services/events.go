package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/qaforum/apiserver/types"
)

// EventPublisher receives domain events after successful writes.
type EventPublisher interface {
	Publish(ctx context.Context, event types.Event) error
}

// emitter publishes events without letting broker failures reach callers.
type emitter struct {
	publisher EventPublisher
	logger    *slog.Logger
}

func newEmitter(publisher EventPublisher, logger *slog.Logger) emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return emitter{publisher: publisher, logger: logger}
}

func (e emitter) emit(ctx context.Context, event types.Event) {
	if e.publisher == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.Warn("publish event failed",
			"type", event.Type,
			"question_id", event.QuestionID,
			"comment_id", event.CommentID,
			"user_id", event.UserID,
			"error", err,
		)
	}
}
