package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"loan-assist-be/internal/constant"
	"loan-assist-be/internal/pkg/logger"
	"loan-assist-be/pkg/metrics"
	"loan-assist-be/pkg/store"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionStore is the context cache the hub tears down together with connections.
type SessionStore interface {
	Get(sessionID string) (*store.SessionContext, bool)
	EndSession(sessionID string)
}

// Hub keeps at most one connection per session id.
type Hub struct {
	// Registered clients: SessionID -> Client
	clients map[string]*Client

	// Guards clients and every paired change to the session store.
	mu sync.Mutex

	sessions SessionStore

	// Redis connection for cross-instance teardown, optional.
	rdb        *redis.Client
	instanceID string

	logger logger.ILogger
}

type clusterEvent struct {
	SessionID string `json:"session_id"`
	Origin    string `json:"origin"`
}

func NewHub(sessions SessionStore, rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		sessions:   sessions,
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

// Run listens for teardown events from other instances until ctx is done.
// Without Redis it returns immediately.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb == nil {
		return
	}
	h.subscribeToRedis(ctx)
}

// register adds c as the session's connection, replacing and closing any previous one.
// It fails when the session has no stored context.
func (h *Hub) register(c *Client) (*store.SessionContext, bool) {
	h.mu.Lock()
	session, ok := h.sessions.Get(c.sessionID)
	if !ok {
		h.mu.Unlock()
		return nil, false
	}
	previous := h.clients[c.sessionID]
	h.clients[c.sessionID] = c
	h.mu.Unlock()

	if previous != nil {
		previous.close()
		h.logger.Info("Hub", "Replaced existing connection", map[string]interface{}{"session_id": c.sessionID})
	} else {
		metrics.RealtimeConnections.Inc()
	}
	h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_id": c.sessionID})
	return session, true
}

// release tears the session down when c is still its registered connection.
// A client that was already replaced changes nothing.
func (h *Hub) release(c *Client) {
	h.mu.Lock()
	current, ok := h.clients[c.sessionID]
	if !ok || current != c {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.sessionID)
	h.sessions.EndSession(c.sessionID)
	h.mu.Unlock()

	metrics.RealtimeConnections.Dec()
	h.logger.Info("Hub", "Session released on disconnect", map[string]interface{}{"session_id": c.sessionID})
}

// EndSession closes the session's connection and drops its context on this
// instance, then asks every other instance to do the same.
func (h *Hub) EndSession(sessionID string) {
	h.endLocal(sessionID)

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterEvent{SessionID: sessionID, Origin: h.instanceID})
		if err := h.rdb.Publish(context.Background(), constant.ClusterSessionChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to publish session teardown", map[string]interface{}{"session_id": sessionID, "error": err})
		}
	}
}

func (h *Hub) endLocal(sessionID string) {
	h.mu.Lock()
	c, ok := h.clients[sessionID]
	delete(h.clients, sessionID)
	h.sessions.EndSession(sessionID)
	h.mu.Unlock()

	if ok {
		c.close()
		metrics.RealtimeConnections.Dec()
	}
	h.logger.Info("Hub", "Session ended", map[string]interface{}{"session_id": sessionID, "had_connection": ok})
}

func (h *Hub) IsConnected(sessionID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.clients[sessionID]
	return ok
}

func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, constant.ClusterSessionChannel)
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
			h.handleClusterEvent(msg.Payload)
		}
	}
}

func (h *Hub) handleClusterEvent(payload string) {
	var event clusterEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		h.logger.Warn("Hub", "Redis msg parse error", map[string]interface{}{"error": err})
		return
	}
	if event.Origin == h.instanceID || event.SessionID == "" {
		return
	}
	h.endLocal(event.SessionID)
}
