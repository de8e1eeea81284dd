package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Zianiwarhead/MyMusicApp/logger"
	"github.com/Zianiwarhead/MyMusicApp/model"
)

// Client roles. The bridge is the one media sink: it receives transport
// commands and reports the media lifecycle back. Observers only receive
// state snapshots.
const (
	RoleBridge   = "bridge"
	RoleObserver = "observer"
)

// MsgType tags a WebSocket message.
type MsgType string

const (
	// Commands to the bridge.
	MsgLoad   MsgType = "load"
	MsgPlay   MsgType = "play"
	MsgPause  MsgType = "pause"
	MsgSeek   MsgType = "seek"
	MsgVolume MsgType = "volume"
	MsgUnload MsgType = "unload"

	// Events from the bridge.
	MsgMetadata MsgType = "metadata"
	MsgProgress MsgType = "progress"
	MsgEnded    MsgType = "ended"
	MsgError    MsgType = "error"
	MsgSamples  MsgType = "samples"

	// Broadcast to observers.
	MsgState MsgType = "state"
)

// WSMessage is the wire format in both directions.
type WSMessage struct {
	Type      MsgType         `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// CommandData carries a command's argument to the bridge.
type CommandData struct {
	Src      string  `json:"src,omitempty"`
	Position float64 `json:"position,omitempty"`
	Level    float64 `json:"level,omitempty"`
}

// EventData carries a media event's payload from the bridge.
type EventData struct {
	Duration float64   `json:"duration,omitempty"`
	Position float64   `json:"position,omitempty"`
	Message  string    `json:"message,omitempty"`
	Samples  []float64 `json:"samples,omitempty"`
}

// MediaEvents is where bridge-reported media events land; the transport
// controller implements it.
type MediaEvents interface {
	HandleMetadata(duration float64)
	HandleProgress(seconds float64)
	HandleEnded()
	HandleError(err error)
}

// Client is one WebSocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	role string

	mu     sync.Mutex
	closed bool
}

// trySend queues a message unless the client is gone or its buffer is
// full. Queueing and closing are serialized on the client's own mutex so
// a disconnect mid-fanout can never panic the sender.
func (c *Client) trySend(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// closeSend shuts the send channel exactly once.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Hub manages the WebSocket connections: at most one bridge, any number
// of observers. It doubles as the analyzer's sample tap, keeping a ring
// of the most recent PCM samples the bridge reported.
type Hub struct {
	mu        sync.RWMutex
	bridge    *Client
	observers map[*Client]bool

	events MediaEvents

	onBridgeChange func(connected bool)

	sampleMu sync.Mutex
	samples  []float64
}

// sampleRingSize bounds the retained PCM window.
const sampleRingSize = 2048

// NewHub creates the hub. Events may be nil until SetEvents is called.
func NewHub() *Hub {
	return &Hub{
		observers: make(map[*Client]bool),
	}
}

// SetEvents wires the media event sink.
func (h *Hub) SetEvents(events MediaEvents) {
	h.mu.Lock()
	h.events = events
	h.mu.Unlock()
}

// SetOnBridgeChange registers a callback fired when the bridge connects
// or disconnects.
func (h *Hub) SetOnBridgeChange(fn func(connected bool)) {
	h.mu.Lock()
	h.onBridgeChange = fn
	h.mu.Unlock()
}

// HasBridge reports whether a media sink is attached.
func (h *Hub) HasBridge() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.bridge != nil
}

// Samples implements player.SampleSource over the bridge's reports.
func (h *Hub) Samples(n int) []float64 {
	h.sampleMu.Lock()
	defer h.sampleMu.Unlock()

	if len(h.samples) == 0 {
		return nil
	}
	if n > len(h.samples) {
		n = len(h.samples)
	}
	out := make([]float64, n)
	copy(out, h.samples[len(h.samples)-n:])
	return out
}

func (h *Hub) pushSamples(samples []float64) {
	h.sampleMu.Lock()
	defer h.sampleMu.Unlock()

	h.samples = append(h.samples, samples...)
	if len(h.samples) > sampleRingSize {
		h.samples = h.samples[len(h.samples)-sampleRingSize:]
	}
}

func (h *Hub) register(client *Client) {
	var replaced *Client
	h.mu.Lock()
	if client.role == RoleBridge {
		// One sink only: a new bridge replaces the old one.
		replaced = h.bridge
		h.bridge = client
	} else {
		h.observers[client] = true
	}
	onChange := h.onBridgeChange
	h.mu.Unlock()

	if replaced != nil {
		replaced.conn.Close()
	}
	if client.role == RoleBridge && onChange != nil {
		onChange(true)
	}
	logger.Info("ws client registered", logger.String("role", client.role))
}

func (h *Hub) unregister(client *Client) {
	bridgeGone := false
	h.mu.Lock()
	if h.bridge == client {
		h.bridge = nil
		bridgeGone = true
	}
	delete(h.observers, client)
	onChange := h.onBridgeChange
	h.mu.Unlock()

	client.closeSend()
	if bridgeGone && onChange != nil {
		onChange(false)
	}
	logger.Info("ws client unregistered", logger.String("role", client.role))
}

// SendCommand ships a command to the bridge. Without a bridge the command
// is dropped and reported.
func (h *Hub) SendCommand(msgType MsgType, data CommandData) error {
	h.mu.RLock()
	bridge := h.bridge
	h.mu.RUnlock()

	if bridge == nil {
		return fmt.Errorf("no media bridge connected")
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	msg := WSMessage{Type: msgType, Data: raw, Timestamp: time.Now().UnixMilli()}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	if !bridge.trySend(payload) {
		return fmt.Errorf("failed to queue command for bridge")
	}
	return nil
}

// BroadcastState fans a transport snapshot out to all observers.
func (h *Hub) BroadcastState(state model.PlayerState) {
	raw, err := json.Marshal(state)
	if err != nil {
		return
	}
	msg := WSMessage{Type: MsgState, Data: raw, Timestamp: time.Now().UnixMilli()}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.observers))
	for client := range h.observers {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		// Slow or gone observers drop the snapshot, the next one
		// supersedes it.
		client.trySend(payload)
	}
}

// handleEvent dispatches one bridge-reported media event.
func (h *Hub) handleEvent(msg *WSMessage) {
	h.mu.RLock()
	events := h.events
	h.mu.RUnlock()
	if events == nil {
		return
	}

	var data EventData
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			logger.Warn("invalid media event payload", logger.ErrorField(err))
			return
		}
	}

	switch msg.Type {
	case MsgMetadata:
		events.HandleMetadata(data.Duration)
	case MsgProgress:
		events.HandleProgress(data.Position)
	case MsgEnded:
		events.HandleEnded()
	case MsgError:
		events.HandleError(fmt.Errorf("media bridge: %s", data.Message))
	case MsgSamples:
		h.pushSamples(data.Samples)
	default:
		logger.Debug("unhandled bridge message", logger.String("type", string(msg.Type)))
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWS upgrades the connection and runs the pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if role != RoleBridge {
		role = RoleObserver
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("ws upgrade failed", logger.ErrorField(err))
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
		role: role,
	}
	h.register(client)

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(64 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("ws read error", logger.ErrorField(err), logger.String("role", c.role))
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			logger.Warn("invalid ws message", logger.ErrorField(err))
			continue
		}

		// Only the bridge reports media events.
		if c.role == RoleBridge {
			c.hub.handleEvent(&msg)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
