package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	return hub
}

func registerClient(t *testing.T, hub *Hub, userID, role string) *Client {
	t.Helper()
	client := NewClient(userID, role, nil, hub)
	hub.register <- client

	require.Eventually(t, func() bool {
		return hub.IsUserConnected(userID)
	}, time.Second, 5*time.Millisecond)

	return client
}

func receiveEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case data := <-c.send:
		var ev Event
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatalf("client %s received no event", c.UserID)
		return Event{}
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub := startHub(t)

	citizen := registerClient(t, hub, "citizen-1", "Citizen")
	worker := registerClient(t, hub, "worker-1", "Municipal")

	hub.Broadcast("newReport", map[string]interface{}{"id": 42})

	// The transport is role-unaware: every connected client gets the event.
	for _, c := range []*Client{citizen, worker} {
		ev := receiveEvent(t, c)
		assert.Equal(t, "newReport", ev.Type)

		data, ok := ev.Data.(map[string]interface{})
		require.True(t, ok)
		assert.EqualValues(t, 42, data["id"])
	}
}

func TestBroadcastWithNoClientsIsNotAnError(t *testing.T) {
	hub := startHub(t)

	// Fire-and-forget: nothing to assert beyond "does not block or panic".
	hub.Broadcast("updateReport", map[string]interface{}{"id": 1})

	assert.Equal(t, 0, hub.GetClientCount())
}

func TestSendToUser(t *testing.T) {
	hub := startHub(t)

	alice := registerClient(t, hub, "alice", "Citizen")
	bob := registerClient(t, hub, "bob", "Citizen")

	hub.SendToUser("alice", "gamification", map[string]interface{}{"points_earned": 10})

	ev := receiveEvent(t, alice)
	assert.Equal(t, "gamification", ev.Type)

	select {
	case <-bob.send:
		t.Fatal("event leaked to another user")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSendToUnknownUserIsNoop(t *testing.T) {
	hub := startHub(t)
	hub.SendToUser("ghost", "gamification", nil)
	assert.False(t, hub.IsUserConnected("ghost"))
}

func TestSlowClientDropRefusesLateSend(t *testing.T) {
	hub := startHub(t)
	client := registerClient(t, hub, "worker-1", "Municipal")

	// Fill the buffer so the next broadcast drops this client.
	for i := 0; i < cap(client.send); i++ {
		client.send <- []byte("{}")
	}
	hub.Broadcast("newReport", map[string]interface{}{"id": 1})

	require.Eventually(t, func() bool {
		return !hub.IsUserConnected("worker-1")
	}, time.Second, 5*time.Millisecond)

	// The hub has closed client.send. A keepalive pong enqueued by the still
	// running read loop must be refused here, not panic on a closed channel.
	assert.False(t, hub.sendToClient(client, []byte(`{"type":"pong"}`)))
}

func TestDuplicateLoginReplacesConnection(t *testing.T) {
	hub := startHub(t)

	first := registerClient(t, hub, "worker-1", "Municipal")
	second := NewClient("worker-1", "Municipal", nil, hub)
	hub.register <- second

	// The replaced connection's channel is closed so its pumps shut down.
	require.Eventually(t, func() bool {
		select {
		case _, open := <-first.send:
			return !open
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	// The first connection's late unregister must not evict its successor.
	hub.unregister <- first
	time.Sleep(50 * time.Millisecond)
	require.True(t, hub.IsUserConnected("worker-1"))

	hub.SendToUser("worker-1", "gamification", map[string]interface{}{"points_earned": 10})
	ev := receiveEvent(t, second)
	assert.Equal(t, "gamification", ev.Type)

	// Stale sends addressed to the replaced connection are refused.
	assert.False(t, hub.sendToClient(first, []byte(`{"type":"pong"}`)))
}

func TestUnregisterRemovesClient(t *testing.T) {
	hub := startHub(t)

	client := registerClient(t, hub, "worker-1", "Municipal")
	hub.unregister <- client

	require.Eventually(t, func() bool {
		return !hub.IsUserConnected("worker-1")
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 0, hub.GetClientCount())
}
