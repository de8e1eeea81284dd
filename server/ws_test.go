package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zianiwarhead/MyMusicApp/model"
)

// recordingEvents captures bridge-reported media events.
type recordingEvents struct {
	mu       sync.Mutex
	metadata []float64
	progress []float64
	ended    int
	errors   []error
}

func (r *recordingEvents) HandleMetadata(duration float64) {
	r.mu.Lock()
	r.metadata = append(r.metadata, duration)
	r.mu.Unlock()
}

func (r *recordingEvents) HandleProgress(seconds float64) {
	r.mu.Lock()
	r.progress = append(r.progress, seconds)
	r.mu.Unlock()
}

func (r *recordingEvents) HandleEnded() {
	r.mu.Lock()
	r.ended++
	r.mu.Unlock()
}

func (r *recordingEvents) HandleError(err error) {
	r.mu.Lock()
	r.errors = append(r.errors, err)
	r.mu.Unlock()
}

func dial(t *testing.T, srv *httptest.Server, role string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "?role=" + role
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return conn
}

func TestSendCommandWithoutBridge(t *testing.T) {
	hub := NewHub()
	err := hub.SendCommand(MsgPlay, CommandData{})
	assert.Error(t, err)
}

func TestSamplesRing(t *testing.T) {
	hub := NewHub()

	assert.Nil(t, hub.Samples(16))

	hub.pushSamples([]float64{1, 2, 3, 4})
	assert.Equal(t, []float64{3, 4}, hub.Samples(2))
	assert.Equal(t, []float64{1, 2, 3, 4}, hub.Samples(16))

	// Overflow keeps only the newest window.
	big := make([]float64, sampleRingSize+10)
	for i := range big {
		big[i] = float64(i)
	}
	hub.pushSamples(big)
	got := hub.Samples(sampleRingSize)
	require.Len(t, got, sampleRingSize)
	assert.Equal(t, float64(len(big)-1), got[len(got)-1])
}

func TestBroadcastSurvivesDisconnectChurn(t *testing.T) {
	hub := NewHub()

	for i := 0; i < 50; i++ {
		hub.register(&Client{hub: hub, send: make(chan []byte, 1), role: RoleObserver})
	}

	// Observers connecting and dropping while broadcasts fan out must
	// never hit a closed send channel.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			c := &Client{hub: hub, send: make(chan []byte, 1), role: RoleObserver}
			hub.register(c)
			hub.unregister(c)
		}
	}()

	for {
		select {
		case <-done:
			return
		default:
			hub.BroadcastState(model.PlayerState{Playing: true, Volume: 1})
		}
	}
}

func TestCommandToClosedBridgeIsAnError(t *testing.T) {
	hub := NewHub()
	bridge := &Client{hub: hub, send: make(chan []byte, 1), role: RoleBridge}
	hub.register(bridge)

	// The connection tore down but the hub still holds the client.
	bridge.closeSend()
	assert.Error(t, hub.SendCommand(MsgPlay, CommandData{}))

	// Unregistering after the channel is already closed stays safe.
	hub.unregister(bridge)
	hub.unregister(bridge)
	assert.False(t, hub.HasBridge())
}

func TestBridgeCommandDelivery(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	connected := make(chan bool, 2)
	hub.SetOnBridgeChange(func(up bool) { connected <- up })

	bridge := dial(t, srv, RoleBridge)
	defer bridge.Close()
	require.True(t, <-connected)

	require.NoError(t, hub.SendCommand(MsgLoad, CommandData{Src: "http://blobs/a"}))

	bridge.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := bridge.ReadMessage()
	require.NoError(t, err)

	var msg WSMessage
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, MsgLoad, msg.Type)

	var data CommandData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, "http://blobs/a", data.Src)
}

func TestBridgeEventsReachSink(t *testing.T) {
	hub := NewHub()
	events := &recordingEvents{}
	hub.SetEvents(events)
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	bridge := dial(t, srv, RoleBridge)
	defer bridge.Close()

	payload, _ := json.Marshal(EventData{Duration: 180})
	msg, _ := json.Marshal(WSMessage{Type: MsgMetadata, Data: payload})
	require.NoError(t, bridge.WriteMessage(websocket.TextMessage, msg))

	require.Eventually(t, func() bool {
		events.mu.Lock()
		defer events.mu.Unlock()
		return len(events.metadata) == 1 && events.metadata[0] == 180
	}, 2*time.Second, 10*time.Millisecond)
}

func TestObserverReceivesStateBroadcast(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	observer := dial(t, srv, RoleObserver)
	defer observer.Close()

	// Registration races the dial; wait until the hub has the observer.
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.observers) == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.BroadcastState(model.PlayerState{Playing: true, Volume: 1})

	observer.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := observer.ReadMessage()
	require.NoError(t, err)

	var msg WSMessage
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, MsgState, msg.Type)

	var state model.PlayerState
	require.NoError(t, json.Unmarshal(msg.Data, &state))
	assert.True(t, state.Playing)
}

func TestObserverEventsIgnored(t *testing.T) {
	hub := NewHub()
	events := &recordingEvents{}
	hub.SetEvents(events)
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	observer := dial(t, srv, RoleObserver)
	defer observer.Close()

	payload, _ := json.Marshal(EventData{Duration: 99})
	msg, _ := json.Marshal(WSMessage{Type: MsgMetadata, Data: payload})
	require.NoError(t, observer.WriteMessage(websocket.TextMessage, msg))

	time.Sleep(200 * time.Millisecond)
	events.mu.Lock()
	defer events.mu.Unlock()
	assert.Empty(t, events.metadata)
}
