package service

import (
	"context"
	"encoding/json"

	"copyflow-be/internal/pkg/logger"
	"copyflow-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// EventPublisher is the durable bus, implemented by pkg/nats.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IPublisherService interface {
	Publish(ctx context.Context, event events.StageEvent) error
}

type publisherService struct {
	topicName string
	pubSub    message.Publisher
	bus       EventPublisher
	logger    logger.ILogger
}

// NewPublisherService publishes stage events on the in-process topic and,
// when bus is not nil, on the durable bus.
func NewPublisherService(topicName string, pubSub message.Publisher, bus EventPublisher, log logger.ILogger) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
		bus:       bus,
		logger:    log,
	}
}

func (p *publisherService) Publish(ctx context.Context, event events.StageEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := p.pubSub.Publish(p.topicName, msg); err != nil {
		return err
	}

	if p.bus != nil {
		// the durable copy is best effort, the page action already happened
		if err := p.bus.Publish(ctx, event); err != nil {
			p.logger.Warn("PUBLISHER", "Failed to publish stage event to NATS", map[string]interface{}{
				"type":        event.Type,
				"workflow_id": event.WorkflowId.String(),
				"error":       err.Error(),
			})
		}
	}
	return nil
}
