package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"ai-docrouter-be/internal/entity"
	"ai-docrouter-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	ClusterChannel = "cluster_events"

	MessageTypeActivity = "agent_activity"
)

type Hub struct {
	// Registered clients. Every client receives every activity entry.
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client

	// Closed when Run returns so pumps never block on a stopped hub.
	done chan struct{}

	mu sync.RWMutex

	// Redis connection for cross-instance fan-out. Nil runs the hub standalone.
	rdb *redis.Client

	// Tags outgoing Redis payloads so an instance skips its own echo.
	instanceId string

	logger logger.ILogger
}

type clusterPayload struct {
	Origin  string          `json:"origin"`
	Message json.RawMessage `json:"message"`
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		rdb:        rdb,
		instanceId: uuid.NewString(),
		logger:     log,
	}
}

// Run owns registration until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"client_id": client.ID, "subject": client.Subject})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"client_id": client.ID})
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastActivity sends entry to every local client and to peer instances.
func (h *Hub) BroadcastActivity(entry *entity.AgentLog) {
	if entry == nil {
		return
	}

	data, err := json.Marshal(map[string]interface{}{
		"type": MessageTypeActivity,
		"data": entry,
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode activity", map[string]interface{}{"error": err.Error()})
		return
	}

	h.deliver(data)

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterPayload{Origin: h.instanceId, Message: data})
		if err := h.rdb.Publish(context.Background(), ClusterChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to publish to Redis", map[string]interface{}{"error": err.Error()})
		}
	}
}

// deliver never blocks: a client whose buffer is full misses the message and
// is left for its own pumps to tear down.
func (h *Hub) deliver(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"client_id": client.ID})
		}
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, ClusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.handleClusterMessage(msg.Payload)
		}
	}
}

func (h *Hub) handleClusterMessage(raw string) {
	var payload clusterPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		h.logger.Warn("Hub", "Redis msg parse error", map[string]interface{}{"error": err.Error()})
		return
	}
	if payload.Origin == h.instanceId {
		return
	}
	h.deliver(payload.Message)
}
