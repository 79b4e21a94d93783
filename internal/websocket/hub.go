package websocket

import (
	"github.com/sirupsen/logrus"
)

// notification is a payload addressed to a single connected user.
type notification struct {
	UserID  uint
	Payload []byte
}

// Hub maintains the set of connected notification clients and routes
// friend-event payloads to them. One registered connection per user ID;
// a newer connection replaces the older one.
type Hub struct {
	clients map[uint]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Payloads aimed at a specific user.
	deliver chan notification
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uint]*Client),
		deliver:    make(chan notification, 256),
	}
}

// DeliverToUser hands the hub a payload for the given user. The send is
// non-blocking so a full hub never stalls the caller (the Kafka consumer);
// on overflow the notification is dropped, the user still sees the state
// change via the REST API.
func (h *Hub) DeliverToUser(userID uint, payload []byte) {
	select {
	case h.deliver <- notification{UserID: userID, Payload: payload}:
	default:
		logrus.Warnf("Notification hub deliver channel full, dropping payload for user %d", userID)
	}
}

// Run starts the hub loop. It must run in its own goroutine.
func (h *Hub) Run() {
	logrus.Info("Notification hub started.")
	for {
		select {
		case client := <-h.register:
			if existing, ok := h.clients[client.UserID]; ok {
				// Replace the old connection for this user.
				logrus.Warnf("User %d already connected, replacing previous connection.", client.UserID)
				close(existing.send)
			}
			h.clients[client.UserID] = client
			logrus.Debugf("Notification client registered: user %d", client.UserID)

		case client := <-h.unregister:
			// Only drop the client if it is still the registered one; a
			// replaced connection must not close its successor's channel.
			if stored, ok := h.clients[client.UserID]; ok && stored == client {
				delete(h.clients, client.UserID)
				close(client.send)
				logrus.Debugf("Notification client unregistered: user %d", client.UserID)
			}

		case n := <-h.deliver:
			client, ok := h.clients[n.UserID]
			if !ok {
				continue // user offline, drop
			}
			select {
			case client.send <- n.Payload:
			default:
				// Slow or dead client; evict it.
				logrus.Warnf("Send buffer full for user %d, removing client.", n.UserID)
				close(client.send)
				delete(h.clients, n.UserID)
			}
		}
	}
}
