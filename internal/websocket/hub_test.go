package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ai-docrouter-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := NewHub(nil, nil)
	go h.Run(ctx)
	return h
}

func registerClient(t *testing.T, h *Hub, buffer int) *Client {
	t.Helper()
	c := &Client{Hub: h, ID: "c", Send: make(chan []byte, buffer)}
	before := h.ClientCount()
	h.register <- c
	require.Eventually(t, func() bool { return h.ClientCount() == before+1 }, time.Second, 10*time.Millisecond)
	return c
}

func TestHub_BroadcastReachesEveryClient(t *testing.T) {
	h := startHub(t)
	a := registerClient(t, h, 4)
	b := registerClient(t, h, 4)

	h.BroadcastActivity(&entity.AgentLog{Id: "log-1", AgentName: "Classifier", Action: "classified"})

	for _, c := range []*Client{a, b} {
		select {
		case raw := <-c.Send:
			var msg struct {
				Type string          `json:"type"`
				Data entity.AgentLog `json:"data"`
			}
			require.NoError(t, json.Unmarshal(raw, &msg))
			assert.Equal(t, MessageTypeActivity, msg.Type)
			assert.Equal(t, "log-1", msg.Data.Id)
			assert.Equal(t, "classified", msg.Data.Action)
		case <-time.After(time.Second):
			t.Fatal("client did not receive broadcast")
		}
	}
}

func TestHub_FullClientDoesNotBlockOthers(t *testing.T) {
	h := startHub(t)
	slow := registerClient(t, h, 1)
	fast := registerClient(t, h, 4)

	h.BroadcastActivity(&entity.AgentLog{Id: "1"})
	h.BroadcastActivity(&entity.AgentLog{Id: "2"})

	assert.Len(t, slow.Send, 1)
	assert.Len(t, fast.Send, 2)
	assert.Equal(t, 2, h.ClientCount())
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	h := startHub(t)
	c := registerClient(t, h, 1)

	h.unregister <- c
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 10*time.Millisecond)

	_, open := <-c.Send
	assert.False(t, open)
}

func TestHub_SkipsOwnClusterEcho(t *testing.T) {
	h := startHub(t)
	c := registerClient(t, h, 4)

	own, _ := json.Marshal(clusterPayload{Origin: h.instanceId, Message: json.RawMessage(`{"type":"agent_activity"}`)})
	h.handleClusterMessage(string(own))
	assert.Len(t, c.Send, 0)

	peer, _ := json.Marshal(clusterPayload{Origin: "other-instance", Message: json.RawMessage(`{"type":"agent_activity"}`)})
	h.handleClusterMessage(string(peer))
	assert.Len(t, c.Send, 1)

	h.handleClusterMessage("not json")
	assert.Len(t, c.Send, 1)
}

func TestHub_NilEntryIsIgnored(t *testing.T) {
	h := startHub(t)
	c := registerClient(t, h, 1)

	h.BroadcastActivity(nil)
	assert.Len(t, c.Send, 0)
}
