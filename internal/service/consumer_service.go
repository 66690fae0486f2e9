package service

import (
	"context"
	"encoding/json"
	"time"

	"copyflow-be/internal/entity"
	"copyflow-be/internal/pkg/logger"
	"copyflow-be/internal/repository/specification"
	"copyflow-be/internal/repository/unitofwork"
	"copyflow-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// StageDelivery pushes a serialized stage event to the live clients of a
// workflow. Implemented by the websocket hub.
type StageDelivery interface {
	SendToWorkflow(workflowId uuid.UUID, payload []byte)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub     message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	delivery   StageDelivery
	retention  time.Duration
	logger     logger.ILogger
}

// NewConsumerService records stage events in the event log and forwards them
// to websocket clients. uowFactory and delivery may be nil. A failed insert is
// logged and the event is still delivered; gochannel would redeliver a nacked
// message forever. Events of the same workflow older than retention are pruned
// in the insert transaction; zero keeps everything.
func NewConsumerService(
	pubSub message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	delivery StageDelivery,
	retention time.Duration,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		delivery:   delivery,
		retention:  retention,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var event events.StageEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal stage event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // invalid messages are never retried
		return
	}

	if cs.uowFactory != nil {
		if err := cs.record(ctx, event); err != nil {
			cs.logger.Error("CONSUMER", "Failed to record stage event", map[string]interface{}{
				"workflow_id": event.WorkflowId.String(),
				"type":        event.Type,
				"error":       err.Error(),
			})
		}
	}

	if cs.delivery != nil {
		data, _ := json.Marshal(map[string]interface{}{
			"type": "stage",
			"data": event,
		})
		cs.delivery.SendToWorkflow(event.WorkflowId, data)
	}

	msg.Ack()
}

func (cs *consumerService) record(ctx context.Context, event events.StageEvent) error {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return err
	}

	return cs.uowFactory.Transaction(ctx, func(uow unitofwork.UnitOfWork) error {
		repo := uow.WorkflowEventRepository()
		err := repo.Create(ctx, &entity.WorkflowEvent{
			Id:         event.Id,
			WorkflowId: event.WorkflowId,
			Page:       event.Page,
			Type:       event.Type,
			Stage:      event.Stage,
			Payload:    payload,
			OccurredAt: event.OccurredAt,
			CreatedAt:  time.Now(),
		})
		if err != nil || cs.retention <= 0 {
			return err
		}
		_, err = repo.Delete(ctx,
			specification.ByWorkflowID{WorkflowID: event.WorkflowId},
			specification.OccurredBefore{Time: time.Now().Add(-cs.retention)},
		)
		return err
	})
}
