package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/qaforum/apiserver/types"
)

const (
	AttrEventType   = "event_type"
	AttrContentType = "content_type"

	contentTypeJSON = "application/json"
)

// EventPublisher encodes forum events as JSON messages on one channel.
type EventPublisher struct {
	mq      *MQ
	channel string
}

func NewEventPublisher(mq *MQ, channel string) *EventPublisher {
	return &EventPublisher{mq: mq, channel: channel}
}

// Publish sends event to the configured channel.
func (p *EventPublisher) Publish(ctx context.Context, event types.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	_, err = p.mq.Publish(ctx, p.channel, data, map[string]string{
		AttrEventType:   string(event.Type),
		AttrContentType: contentTypeJSON,
	})
	return err
}

// SubscribeEvents decodes forum events from channel and passes them to fn.
func SubscribeEvents(ctx context.Context, mq *MQ, channel string, fn func(context.Context, types.Event) error) error {
	return mq.Subscribe(ctx, channel, func(ctx context.Context, msg Message) error {
		event, err := DecodeEvent(msg)
		if err != nil {
			return err
		}
		return fn(ctx, event)
	})
}

// DecodeEvent parses a message produced by EventPublisher.
func DecodeEvent(msg Message) (types.Event, error) {
	var event types.Event
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		return types.Event{}, fmt.Errorf("decode event %s: %w", msg.ID, err)
	}
	if event.Type == "" {
		return types.Event{}, errors.New("event type is missing")
	}
	return event, nil
}
