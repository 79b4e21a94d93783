package apiserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"socialnet/internal/middleware"
	"socialnet/internal/models"
	"socialnet/internal/services"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// FriendRequestHandler bundles the friend request and friend list HTTP handlers.
type FriendRequestHandler struct {
	friendService services.FriendRequestService
}

// NewFriendRequestHandler creates a new FriendRequestHandler.
func NewFriendRequestHandler(fs services.FriendRequestService) *FriendRequestHandler {
	return &FriendRequestHandler{friendService: fs}
}

// SendFriendRequestPayload is the body for sending a friend request.
type SendFriendRequestPayload struct {
	RecipientID uint `json:"recipientId"`
}

// SendFriendRequestHandler handles POST /api/v1/friend-requests.
func (h *FriendRequestHandler) SendFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "missing user identity in context", http.StatusUnauthorized)
		return
	}

	var payload SendFriendRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if payload.RecipientID == 0 {
		writeJSONError(w, "recipientId is required", http.StatusBadRequest)
		return
	}

	request, err := h.friendService.SendFriendRequest(r.Context(), requesterID, payload.RecipientID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidTarget), errors.Is(err, services.ErrRecipientNotFound):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrDuplicateRequest):
			writeJSONError(w, err.Error(), http.StatusConflict)
		case errors.Is(err, services.ErrTooManyRequests):
			writeJSONError(w, err.Error(), http.StatusTooManyRequests)
		default:
			logrus.Errorf("Failed to send friend request from %d to %d: %v", requesterID, payload.RecipientID, err)
			writeJSONError(w, "failed to send friend request", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusCreated, request)
}

// AcceptFriendRequestHandler handles POST /api/v1/friend-requests/{requestID}/accept.
func (h *FriendRequestHandler) AcceptFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.friendService.AcceptFriendRequest, "accepted")
}

// RejectFriendRequestHandler handles POST /api/v1/friend-requests/{requestID}/reject.
func (h *FriendRequestHandler) RejectFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.friendService.RejectFriendRequest, "rejected")
}

// respond factors out the shared accept/reject flow: extract the caller,
// parse the request ID from the path, invoke the decision, map errors.
func (h *FriendRequestHandler) respond(w http.ResponseWriter, r *http.Request, decide func(ctx context.Context, recipientUserID, requestID uint) error, outcome string) {
	recipientUserID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "missing user identity in context", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	requestIDStr, ok := vars["requestID"]
	if !ok {
		writeJSONError(w, "missing friend request ID", http.StatusBadRequest)
		return
	}
	requestID, err := strconv.ParseUint(requestIDStr, 10, 32)
	if err != nil {
		writeJSONError(w, "invalid friend request ID format", http.StatusBadRequest)
		return
	}

	if err := decide(r.Context(), recipientUserID, uint(requestID)); err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrNotRecipient):
			writeJSONError(w, err.Error(), http.StatusForbidden)
		case errors.Is(err, services.ErrAlreadyResolved):
			writeJSONError(w, err.Error(), http.StatusConflict)
		default:
			logrus.Errorf("Failed to resolve friend request %d by user %d: %v", requestID, recipientUserID, err)
			writeJSONError(w, "failed to process friend request", http.StatusInternalServerError)
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"status": outcome})
}

// ListPendingRequestsHandler handles GET /api/v1/friend-requests/pending.
func (h *FriendRequestHandler) ListPendingRequestsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "missing user identity in context", http.StatusUnauthorized)
		return
	}

	pendingRequests, err := h.friendService.ListPendingRequests(r.Context(), userID)
	if err != nil {
		logrus.Errorf("Failed to fetch pending requests for user %d: %v", userID, err)
		writeJSONError(w, "failed to fetch pending requests", http.StatusInternalServerError)
		return
	}

	if pendingRequests == nil {
		pendingRequests = []*models.FriendRequestWithRequester{}
	}

	writeJSONResponse(w, http.StatusOK, pendingRequests)
}

// ListFriendsHandler handles GET /api/v1/friends.
func (h *FriendRequestHandler) ListFriendsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "missing user identity in context", http.StatusUnauthorized)
		return
	}

	friendsList, err := h.friendService.GetFriendsList(r.Context(), userID)
	if err != nil {
		logrus.Errorf("Failed to fetch friends list for user %d: %v", userID, err)
		writeJSONError(w, "failed to fetch friends list", http.StatusInternalServerError)
		return
	}

	if friendsList == nil {
		friendsList = []*models.UserBasicInfo{} // empty list, not null
	}

	writeJSONResponse(w, http.StatusOK, friendsList)
}
