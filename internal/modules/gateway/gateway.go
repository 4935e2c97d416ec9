// Package gateway pushes realtime events to signed-in admin browsers over
// socket.io.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/albedo-support/api/internal/middleware"
	"github.com/albedo-support/api/internal/models"
	pkgredis "github.com/albedo-support/api/internal/pkg/redis"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	socketio "github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"
)

const (
	namespaceAdmin = "/admin"
	redisChannel   = "albedo:gateway:push"
	publishTimeout = 2 * time.Second
)

var ErrNotAdmin = errors.New("admin access required")

// Authenticator resolves a bearer token to an active account.
type Authenticator func(token string) (*models.UserModel, error)

// Message is the envelope relayed between instances through redis.
type Message struct {
	Origin  string      `json:"origin"`
	Room    string      `json:"room"`
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

type gatewayPayload struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub owns the socket.io server. Every admin connection joins the room of its
// account so pushes reach all of that admin's tabs.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]string

	sio        *socketio.Server
	auth       Authenticator
	rc         *pkgredis.Client
	instanceID string
	logger     *zap.Logger
}

type Option func(*Hub)

func WithRedis(rc *pkgredis.Client) Option {
	return func(h *Hub) { h.rc = rc }
}

func WithLogger(l *zap.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.logger = l.Named("Gateway")
		}
	}
}

func NewHub(auth Authenticator, opts ...Option) *Hub {
	h := &Hub{
		clients:    make(map[string]string),
		sio:        socketio.NewServer(nil, nil),
		auth:       auth,
		instanceID: uuid.NewString(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.registerNamespace()
	return h
}

// UserRoom is the room an admin's sockets join.
func UserRoom(userID string) string {
	return "user:" + userID
}

func (h *Hub) registerNamespace() {
	ns := h.sio.Of(namespaceAdmin, nil)
	_ = ns.On("connection", func(args ...any) {
		client, ok := args[0].(*socketio.Socket)
		if !ok {
			return
		}

		user, err := h.authorize(extractToken(client))
		if err != nil {
			h.logger.Debug("socket rejected", zap.Error(err))
			_ = client.Emit("message", gatewayPayload{Type: "AUTH_FAILED", Data: "auth failed"})
			client.Disconnect(true)
			return
		}

		sid := string(client.Id())
		client.Join(socketio.Room(UserRoom(user.ID)))
		h.track(sid, user.ID)
		_ = client.Emit("message", gatewayPayload{Type: "GATEWAY_CONNECT", Data: "WebSocket connected"})

		_ = client.On("disconnect", func(_ ...any) {
			h.untrack(sid)
		})
	})
}

func (h *Hub) authorize(raw string) (*models.UserModel, error) {
	if h.auth == nil {
		return nil, middleware.ErrMissingToken
	}
	user, err := h.auth(raw)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, ErrNotAdmin
	}
	return user, nil
}

func extractToken(client *socketio.Socket) string {
	handshake := client.Handshake()
	if handshake == nil {
		return ""
	}
	if auth, ok := handshake.Auth.(map[string]any); ok {
		if token, ok := auth["token"].(string); ok && strings.TrimSpace(token) != "" {
			return token
		}
	}
	if token := firstValue(handshake.Query, "token"); token != "" {
		return token
	}
	return firstValue(handshake.Headers, "authorization")
}

func firstValue(values map[string][]string, key string) string {
	for k, list := range values {
		if !strings.EqualFold(strings.TrimSpace(k), key) || len(list) == 0 {
			continue
		}
		if v := strings.TrimSpace(list[0]); v != "" {
			return v
		}
	}
	return ""
}

func (h *Hub) track(sid, userID string) {
	h.mu.Lock()
	h.clients[sid] = userID
	h.mu.Unlock()
}

func (h *Hub) untrack(sid string) {
	h.mu.Lock()
	delete(h.clients, sid)
	h.mu.Unlock()
}

// ClientCount returns the number of connected admin sockets.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Push emits event to every socket of userID, on this instance and, when
// redis is configured, on every other instance.
func (h *Hub) Push(userID, event string, payload interface{}) {
	msg := Message{Origin: h.instanceID, Room: UserRoom(userID), Event: event, Payload: payload}
	h.deliver(msg)
	if h.rc == nil {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Warn("gateway encode failed", zap.String("event", event), zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := h.rc.Publish(ctx, redisChannel, string(data)); err != nil {
		h.logger.Warn("gateway publish failed", zap.String("channel", redisChannel), zap.Error(err))
	}
}

func (h *Hub) deliver(msg Message) {
	_ = h.sio.Of(namespaceAdmin, nil).To(socketio.Room(msg.Room)).Emit("message", gatewayPayload{Type: msg.Event, Data: msg.Payload})
}

// relay delivers a message published by another instance. It reports whether
// the message was delivered.
func (h *Hub) relay(raw string) bool {
	var msg Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		h.logger.Debug("gateway relay decode failed", zap.Error(err))
		return false
	}
	if msg.Origin == h.instanceID || msg.Room == "" {
		return false
	}
	h.deliver(msg)
	return true
}

// Run listens for pushes from other instances until ctx is done, then closes
// the socket.io server.
func (h *Hub) Run(ctx context.Context) {
	defer h.sio.Close(nil)
	if h.rc == nil {
		<-ctx.Done()
		return
	}

	pubsub := h.rc.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			h.relay(m.Payload)
		}
	}
}

// Handler returns the socket.io HTTP handler.
func (h *Hub) Handler() http.Handler {
	return h.sio.ServeHandler(nil)
}

// RegisterRoutes mounts socket.io on the engine root and an admin stats
// endpoint under api.
func RegisterRoutes(engine *gin.Engine, api *gin.RouterGroup, hub *Hub, authMW gin.HandlerFunc) {
	handler := gin.WrapH(hub.Handler())
	engine.Any("/socket.io", handler)
	engine.Any("/socket.io/*any", handler)

	api.GET("/gateway/stats", authMW, middleware.RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"admin": hub.ClientCount()})
	})
}
