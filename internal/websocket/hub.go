package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"copyflow-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// StageChannel carries stage events between server instances.
const StageChannel = "copyflow_stage_events"

type Hub struct {
	// WorkflowID -> clients watching it (several tabs or tools)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fan-out, optional
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.WorkflowID] = append(h.clients[client.WorkflowID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"workflow_id": client.WorkflowID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.WorkflowID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.WorkflowID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.WorkflowID]) == 0 {
					delete(h.clients, client.WorkflowID)
					h.logger.Info("Hub", "Workflow has no more clients", map[string]interface{}{"workflow_id": client.WorkflowID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Connected reports how many local clients watch a workflow.
func (h *Hub) Connected(workflowID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[workflowID])
}

// SendToWorkflow implements service.StageDelivery.
func (h *Hub) SendToWorkflow(workflowID uuid.UUID, payload []byte) {
	h.deliver(workflowID, payload)

	if h.rdb != nil {
		msg, _ := json.Marshal(map[string]interface{}{
			"target_workflow_id": workflowID.String(),
			"origin":             h.instance(),
			"message":            json.RawMessage(payload),
		})
		if err := h.rdb.Publish(context.Background(), StageChannel, msg).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to publish stage event to redis", map[string]interface{}{"error": err.Error()})
		}
	}
}

// pageOf reads data.page from a serialized stage message. Messages without
// one go to every client of the workflow.
func pageOf(payload []byte) string {
	var envelope struct {
		Data struct {
			Page string `json:"page"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return ""
	}
	return envelope.Data.Page
}

func (h *Hub) deliver(workflowID uuid.UUID, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.clients[workflowID]
	if len(clients) == 0 {
		return
	}
	page := pageOf(payload)

	for _, client := range clients {
		if !client.wants(page) {
			continue
		}
		select {
		case client.Send <- payload:
		default:
			// slow reader, the next stage event supersedes this one anyway
			h.logger.Warn("Hub", "Client send buffer full, dropping message", map[string]interface{}{"workflow_id": workflowID})
		}
	}
}

var instanceID = uuid.NewString()

func (h *Hub) instance() string {
	return instanceID
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to the one channel and keeps the events
	// addressed to workflows it holds locally.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, StageChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			TargetWorkflowID string          `json:"target_workflow_id"`
			Origin           string          `json:"origin"`
			Message          json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Redis message parse error", map[string]interface{}{"error": err.Error()})
			continue
		}
		if payload.Origin == h.instance() {
			continue
		}

		wid, err := uuid.Parse(payload.TargetWorkflowID)
		if err != nil {
			continue
		}
		h.deliver(wid, payload.Message)
	}
}
