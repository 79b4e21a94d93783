package apiserver

import (
	"net/http"

	"socialnet/internal/auth"
	"socialnet/internal/config"
	ws "socialnet/internal/websocket"

	"github.com/sirupsen/logrus"
)

// NotificationHandler upgrades authenticated clients to a websocket
// connection on which friend events are pushed.
type NotificationHandler struct {
	hub       *ws.Hub
	authCfg   config.AuthConfig
	wsCfg     config.WebSocketConfig
	blacklist auth.TokenBlacklist
}

// NewNotificationHandler creates a new NotificationHandler instance.
func NewNotificationHandler(hub *ws.Hub, authCfg config.AuthConfig, wsCfg config.WebSocketConfig, blacklist auth.TokenBlacklist) *NotificationHandler {
	return &NotificationHandler{hub: hub, authCfg: authCfg, wsCfg: wsCfg, blacklist: blacklist}
}

// ServeWS handles GET /ws/notifications?token=...
// Browsers cannot set an Authorization header on websocket upgrades, so the
// token travels as a query parameter and is validated here directly.
func (h *NotificationHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeJSONError(w, "missing authentication token", http.StatusUnauthorized)
		return
	}

	claims, err := auth.ValidateToken(r.Context(), token, h.authCfg.JWTSecretKey, h.blacklist)
	if err != nil {
		logrus.Warnf("WebSocket connection rejected, invalid token: %v", err)
		writeJSONError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	ws.ServeNotifications(h.hub, claims.UserID, w, r, h.wsCfg)
}
