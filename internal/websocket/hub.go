package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"lexline/internal/middleware"
	"lexline/internal/models"
	"lexline/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// QueryProcessor answers a user's chat message. Satisfied by services.Advisor.
type QueryProcessor interface {
	ProcessQuery(ctx context.Context, sessionID uuid.UUID, message string) (*models.BotResponse, error)
}

// Hub routes chat traffic: each session may hold several connections (tabs),
// and every event for a session is fanned out to all of them via redis
// pub/sub, so replies reach tabs connected to other instances too.
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID][]*websocket.Conn
	cancelFuncs map[uuid.UUID]context.CancelFunc

	auth    *middleware.SessionAuth
	advisor QueryProcessor

	// publish pushes a frame onto the session's update channel; listen
	// consumes that channel and broadcasts to local connections.
	publish func(ctx context.Context, sessionID uuid.UUID, frame []byte) error
	listen  func(ctx context.Context, sessionID uuid.UUID)
}

func NewHub(publishClient, subscribeClient *redis.Client, auth *middleware.SessionAuth, advisor QueryProcessor) *Hub {
	h := &Hub{
		connections: make(map[uuid.UUID][]*websocket.Conn),
		cancelFuncs: make(map[uuid.UUID]context.CancelFunc),
		auth:        auth,
		advisor:     advisor,
	}

	h.publish = func(ctx context.Context, sessionID uuid.UUID, frame []byte) error {
		return publishClient.Publish(ctx, updateChannel(sessionID), string(frame)).Err()
	}
	h.listen = func(ctx context.Context, sessionID uuid.UUID) {
		pubsub := subscribeClient.Subscribe(ctx, updateChannel(sessionID))
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
				h.broadcast(sessionID, []byte(msg.Payload))
			}
		}
	}

	return h
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Authenticate via token query param
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sessionID, err := h.auth.ParseToken(tokenStr)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.registerConnection(sessionID, conn)

	// Greeting goes only to the new connection, not the whole session
	h.sendTo(conn, models.EventStatus, models.StatusEvent{Msg: "Connected to UK Legal Chatbot"})

	go h.readLoop(sessionID, conn)
}

func (h *Hub) readLoop(sessionID uuid.UUID, conn *websocket.Conn) {
	defer h.unregisterConnection(sessionID, conn)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var envelope models.Envelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			log.Printf("WebSocket bad frame from %s: %v", sessionID, err)
			continue
		}

		switch envelope.Event {
		case models.EventUserMessage:
			var msg models.UserMessage
			if err := json.Unmarshal(envelope.Data, &msg); err != nil {
				log.Printf("WebSocket bad user_message from %s: %v", sessionID, err)
				continue
			}
			go h.handleUserMessage(sessionID, msg.Message)
		default:
			log.Printf("WebSocket unknown event %q from %s", envelope.Event, sessionID)
		}
	}
}

// handleUserMessage runs the advisor pipeline, bracketing it with typing
// indicator events the way the widget expects.
func (h *Hub) handleUserMessage(sessionID uuid.UUID, message string) {
	ctx := context.Background()

	h.Publish(ctx, sessionID, models.EventTyping, models.TypingEvent{Typing: true})

	response, err := h.advisor.ProcessQuery(ctx, sessionID, message)

	h.Publish(ctx, sessionID, models.EventTyping, models.TypingEvent{Typing: false})

	if err != nil {
		errResponse := &models.BotResponse{Type: "error", Message: services.ApologyMessage}
		if validationErr, ok := err.(*services.ValidationError); ok {
			if fieldMsg := validationErr.Fields["message"]; fieldMsg != "" {
				errResponse.Message = fieldMsg
			}
		} else {
			log.Printf("Query processing failed for %s: %v", sessionID, err)
		}
		h.Publish(ctx, sessionID, models.EventBotResponse, errResponse)
		return
	}

	h.Publish(ctx, sessionID, models.EventBotResponse, response)
}

// Publish fans an event out to every connection of the session.
func (h *Hub) Publish(ctx context.Context, sessionID uuid.UUID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	frame, _ := json.Marshal(models.Envelope{Event: event, Data: data})

	if err := h.publish(ctx, sessionID, frame); err != nil {
		log.Printf("Publish failed for %s: %v", sessionID, err)
	}
}

func updateChannel(sessionID uuid.UUID) string {
	return "session_updates:" + sessionID.String()
}

func (h *Hub) registerConnection(sessionID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[sessionID] = append(h.connections[sessionID], conn)

	// Start pub/sub subscription on the first connection for this session
	if len(h.connections[sessionID]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[sessionID] = cancel
		go h.listen(ctx, sessionID)
	}

	log.Printf("WebSocket connected: session %s (total: %d)", sessionID, len(h.connections[sessionID]))
}

func (h *Hub) unregisterConnection(sessionID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()

	conns := h.connections[sessionID]
	for i, c := range conns {
		if c == conn {
			h.connections[sessionID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	// If no more connections, cancel pub/sub
	if len(h.connections[sessionID]) == 0 {
		delete(h.connections, sessionID)
		if cancel, ok := h.cancelFuncs[sessionID]; ok {
			cancel()
			delete(h.cancelFuncs, sessionID)
		}
	}

	log.Printf("WebSocket disconnected: session %s", sessionID)
}

func (h *Hub) broadcast(sessionID uuid.UUID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.connections[sessionID] {
		conn.WriteMessage(websocket.TextMessage, data)
	}
}

func (h *Hub) sendTo(conn *websocket.Conn, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	conn.WriteJSON(models.Envelope{Event: event, Data: data})
}
