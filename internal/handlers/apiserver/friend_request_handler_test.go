package apiserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"socialnet/internal/middleware"
	"socialnet/internal/models"
	"socialnet/internal/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFriendService scripts FriendRequestService responses per test case.
type stubFriendService struct {
	sendRequest *models.FriendRequest
	sendErr     error
	respondErr  error
	pending     []*models.FriendRequestWithRequester
	friends     []*models.UserBasicInfo
	listErr     error

	gotRecipientUserID uint
	gotRequestID       uint
}

func (s *stubFriendService) SendFriendRequest(_ context.Context, _, _ uint) (*models.FriendRequest, error) {
	return s.sendRequest, s.sendErr
}

func (s *stubFriendService) AcceptFriendRequest(_ context.Context, recipientUserID, requestID uint) error {
	s.gotRecipientUserID = recipientUserID
	s.gotRequestID = requestID
	return s.respondErr
}

func (s *stubFriendService) RejectFriendRequest(_ context.Context, recipientUserID, requestID uint) error {
	s.gotRecipientUserID = recipientUserID
	s.gotRequestID = requestID
	return s.respondErr
}

func (s *stubFriendService) ListPendingRequests(_ context.Context, _ uint) ([]*models.FriendRequestWithRequester, error) {
	return s.pending, s.listErr
}

func (s *stubFriendService) GetFriendsList(_ context.Context, _ uint) ([]*models.UserBasicInfo, error) {
	return s.friends, s.listErr
}

func authenticatedRequest(method, target, body string, userID uint) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func TestSendFriendRequestHandlerCreated(t *testing.T) {
	stub := &stubFriendService{
		sendRequest: &models.FriendRequest{
			BaseModel:       models.BaseModel{ID: 9},
			RequesterUserID: 1,
			RecipientUserID: 2,
			Status:          models.FriendRequestStatusPending,
		},
	}
	handler := NewFriendRequestHandler(stub)

	req := authenticatedRequest(http.MethodPost, "/api/v1/friend-requests", `{"recipientId": 2}`, 1)
	rec := httptest.NewRecorder()
	handler.SendFriendRequestHandler(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var got models.FriendRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, uint(9), got.ID)
	assert.Equal(t, models.FriendRequestStatusPending, got.Status)
}

func TestSendFriendRequestHandlerErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{name: "self target", serviceErr: services.ErrInvalidTarget, wantStatus: http.StatusBadRequest},
		{name: "recipient missing", serviceErr: services.ErrRecipientNotFound, wantStatus: http.StatusBadRequest},
		{name: "duplicate", serviceErr: services.ErrDuplicateRequest, wantStatus: http.StatusConflict},
		{name: "too many pending", serviceErr: services.ErrTooManyRequests, wantStatus: http.StatusTooManyRequests},
		{name: "storage failure", serviceErr: assert.AnError, wantStatus: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewFriendRequestHandler(&stubFriendService{sendErr: tc.serviceErr})

			req := authenticatedRequest(http.MethodPost, "/api/v1/friend-requests", `{"recipientId": 2}`, 1)
			rec := httptest.NewRecorder()
			handler.SendFriendRequestHandler(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestSendFriendRequestHandlerBadBody(t *testing.T) {
	handler := NewFriendRequestHandler(&stubFriendService{})

	req := authenticatedRequest(http.MethodPost, "/api/v1/friend-requests", `{bad json`, 1)
	rec := httptest.NewRecorder()
	handler.SendFriendRequestHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = authenticatedRequest(http.MethodPost, "/api/v1/friend-requests", `{}`, 1)
	rec = httptest.NewRecorder()
	handler.SendFriendRequestHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendFriendRequestHandlerUnauthenticated(t *testing.T) {
	handler := NewFriendRequestHandler(&stubFriendService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/friend-requests", strings.NewReader(`{"recipientId": 2}`))
	rec := httptest.NewRecorder()
	handler.SendFriendRequestHandler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAcceptFriendRequestHandler(t *testing.T) {
	stub := &stubFriendService{}
	handler := NewFriendRequestHandler(stub)

	req := authenticatedRequest(http.MethodPost, "/api/v1/friend-requests/5/accept", "", 2)
	req = mux.SetURLVars(req, map[string]string{"requestID": "5"})
	rec := httptest.NewRecorder()
	handler.AcceptFriendRequestHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(2), stub.gotRecipientUserID)
	assert.Equal(t, uint(5), stub.gotRequestID)

	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "accepted", got["status"])
}

func TestRejectFriendRequestHandler(t *testing.T) {
	stub := &stubFriendService{}
	handler := NewFriendRequestHandler(stub)

	req := authenticatedRequest(http.MethodPost, "/api/v1/friend-requests/5/reject", "", 2)
	req = mux.SetURLVars(req, map[string]string{"requestID": "5"})
	rec := httptest.NewRecorder()
	handler.RejectFriendRequestHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "rejected", got["status"])
}

func TestRespondErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{name: "not found", serviceErr: services.ErrRequestNotFound, wantStatus: http.StatusNotFound},
		{name: "not recipient", serviceErr: services.ErrNotRecipient, wantStatus: http.StatusForbidden},
		{name: "already resolved", serviceErr: services.ErrAlreadyResolved, wantStatus: http.StatusConflict},
		{name: "storage failure", serviceErr: assert.AnError, wantStatus: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewFriendRequestHandler(&stubFriendService{respondErr: tc.serviceErr})

			req := authenticatedRequest(http.MethodPost, "/api/v1/friend-requests/5/accept", "", 2)
			req = mux.SetURLVars(req, map[string]string{"requestID": "5"})
			rec := httptest.NewRecorder()
			handler.AcceptFriendRequestHandler(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestRespondInvalidRequestID(t *testing.T) {
	handler := NewFriendRequestHandler(&stubFriendService{})

	req := authenticatedRequest(http.MethodPost, "/api/v1/friend-requests/abc/accept", "", 2)
	req = mux.SetURLVars(req, map[string]string{"requestID": "abc"})
	rec := httptest.NewRecorder()
	handler.AcceptFriendRequestHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPendingRequestsHandlerEmpty(t *testing.T) {
	handler := NewFriendRequestHandler(&stubFriendService{})

	req := authenticatedRequest(http.MethodGet, "/api/v1/friend-requests/pending", "", 2)
	rec := httptest.NewRecorder()
	handler.ListPendingRequestsHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	// nil from the service serializes as an empty array, not null.
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestListFriendsHandler(t *testing.T) {
	stub := &stubFriendService{
		friends: []*models.UserBasicInfo{
			{ID: 3, Username: "carol", Nickname: "Carol"},
		},
	}
	handler := NewFriendRequestHandler(stub)

	req := authenticatedRequest(http.MethodGet, "/api/v1/friends", "", 2)
	rec := httptest.NewRecorder()
	handler.ListFriendsHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var got []*models.UserBasicInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "carol", got[0].Username)
}

func TestListFriendsHandlerEmpty(t *testing.T) {
	handler := NewFriendRequestHandler(&stubFriendService{})

	req := authenticatedRequest(http.MethodGet, "/api/v1/friends", "", 2)
	rec := httptest.NewRecorder()
	handler.ListFriendsHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}
