package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"lexline/internal/models"
)

// EventHandler receives the raw data half of an envelope for one event type.
type EventHandler func(data json.RawMessage)

// Client is the widget's side of the websocket channel. Inbound frames are
// dispatched to registered handlers in arrival order; the widget never sees
// reordered or deduplicated events.
type Client struct {
	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool

	handlers     map[string]EventHandler
	onConnect    func()
	onDisconnect func()
}

func NewClient() *Client {
	return &Client{handlers: make(map[string]EventHandler)}
}

// On registers the handler for an event type. Register handlers before Dial.
func (c *Client) On(event string, handler EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = handler
}

// OnConnect and OnDisconnect synthesize the lifecycle events the wire
// protocol itself does not carry.
func (c *Client) OnConnect(fn func())    { c.onConnect = fn }
func (c *Client) OnDisconnect(fn func()) { c.onDisconnect = fn }

// Dial opens the channel and starts the read loop. The session token rides
// as a query parameter because browser websocket APIs cannot set headers.
func (c *Client) Dial(ctx context.Context, wsURL, token string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL+"?token="+token, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	if c.onConnect != nil {
		c.onConnect()
	}

	go c.readLoop(conn)
	return nil
}

func (c *Client) readLoop(conn *websocket.Conn) {
	defer c.markDisconnected(conn)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var envelope models.Envelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			log.Printf("transport: bad frame: %v", err)
			continue
		}

		c.mu.Lock()
		handler := c.handlers[envelope.Event]
		c.mu.Unlock()

		if handler != nil {
			handler(envelope.Data)
		}
	}
}

func (c *Client) markDisconnected(conn *websocket.Conn) {
	conn.Close()

	c.mu.Lock()
	wasConnected := c.connected && c.conn == conn
	if wasConnected {
		c.connected = false
		c.conn = nil
	}
	c.mu.Unlock()

	if wasConnected && c.onDisconnect != nil {
		c.onDisconnect()
	}
}

func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Emit wraps the payload in an envelope and writes it to the channel.
func (c *Client) Emit(event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", event, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected || c.conn == nil {
		return fmt.Errorf("not connected")
	}
	return c.conn.WriteJSON(models.Envelope{Event: event, Data: data})
}

func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}
