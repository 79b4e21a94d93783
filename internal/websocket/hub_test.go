package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForPayload(t *testing.T, ch chan []byte) []byte {
	t.Helper()
	select {
	case payload := <-ch:
		return payload
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for payload")
		return nil
	}
}

func TestHubDeliversToRegisteredUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{hub: hub, send: make(chan []byte, 4), UserID: 7}
	hub.register <- client

	hub.DeliverToUser(7, []byte(`{"type":"friend_request.requested"}`))

	payload := waitForPayload(t, client.send)
	assert.Contains(t, string(payload), "friend_request.requested")
}

func TestHubDropsForOfflineUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{hub: hub, send: make(chan []byte, 4), UserID: 7}
	hub.register <- client

	// Addressed to a user with no connection; nothing reaches our client.
	hub.DeliverToUser(99, []byte("ignored"))
	hub.DeliverToUser(7, []byte("for seven"))

	payload := waitForPayload(t, client.send)
	assert.Equal(t, "for seven", string(payload))
	assert.Empty(t, client.send)
}

func TestHubReplacesDuplicateConnection(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	first := &Client{hub: hub, send: make(chan []byte, 4), UserID: 7}
	hub.register <- first

	second := &Client{hub: hub, send: make(chan []byte, 4), UserID: 7}
	hub.register <- second

	// The replaced connection's channel is closed.
	select {
	case _, open := <-first.send:
		require.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for replaced connection to close")
	}

	hub.DeliverToUser(7, []byte("hello"))
	payload := waitForPayload(t, second.send)
	assert.Equal(t, "hello", string(payload))
}

func TestHubUnregisterIgnoresReplacedClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	first := &Client{hub: hub, send: make(chan []byte, 4), UserID: 7}
	hub.register <- first
	second := &Client{hub: hub, send: make(chan []byte, 4), UserID: 7}
	hub.register <- second

	// The stale connection unregistering must not evict its successor.
	hub.unregister <- first

	hub.DeliverToUser(7, []byte("still here"))
	payload := waitForPayload(t, second.send)
	assert.Equal(t, "still here", string(payload))
}
