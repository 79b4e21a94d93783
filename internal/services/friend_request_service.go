package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"socialnet/internal/config"
	"socialnet/internal/kafka"
	"socialnet/internal/models"
	"socialnet/internal/storage"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInvalidTarget     = errors.New("cannot send a friend request to yourself")
	ErrRecipientNotFound = errors.New("recipient user does not exist")
	ErrDuplicateRequest  = errors.New("a pending or accepted friend request already exists between these users")
	ErrTooManyRequests   = errors.New("too many pending friend requests, try again later")
	ErrRequestNotFound   = errors.New("friend request not found")
	ErrNotRecipient      = errors.New("you are not the recipient of this friend request")
	ErrAlreadyResolved   = errors.New("friend request has already been resolved")
)

// Friend event types published to Kafka for notification fan-out.
const (
	FriendEventRequested = "friend_request.requested"
	FriendEventAccepted  = "friend_request.accepted"
	FriendEventRejected  = "friend_request.rejected"
)

// FriendEvent is the Kafka payload describing a friend request lifecycle change.
// NotifyUserID is the user the notification consumer should deliver to.
type FriendEvent struct {
	Type            string    `json:"type"`
	RequestID       uint      `json:"requestId"`
	RequesterUserID uint      `json:"requesterUserId"`
	RecipientUserID uint      `json:"recipientUserId"`
	NotifyUserID    uint      `json:"notifyUserId"`
	Timestamp       time.Time `json:"timestamp"`
}

// FriendRequestService defines the interface for friend request operations.
// The caller identity is an explicit parameter on every method.
type FriendRequestService interface {
	SendFriendRequest(ctx context.Context, requesterID, recipientID uint) (*models.FriendRequest, error)
	AcceptFriendRequest(ctx context.Context, recipientUserID uint, requestID uint) error
	RejectFriendRequest(ctx context.Context, recipientUserID uint, requestID uint) error
	ListPendingRequests(ctx context.Context, userID uint) ([]*models.FriendRequestWithRequester, error)
	GetFriendsList(ctx context.Context, userID uint) ([]*models.UserBasicInfo, error)
}

type friendRequestService struct {
	userRepo       storage.UserRepository
	friendRepo     storage.FriendRequestRepository
	friendshipRepo storage.FriendshipRepository
	producer       kafka.MessageProducer
	kafkaCfg       config.KafkaConfig
	maxPendingSent int
}

// NewFriendRequestService creates a new FriendRequestService instance.
// producer may be nil, in which case no events are published.
func NewFriendRequestService(
	userRepo storage.UserRepository,
	friendRepo storage.FriendRequestRepository,
	friendshipRepo storage.FriendshipRepository,
	producer kafka.MessageProducer,
	kafkaCfg config.KafkaConfig,
	rateCfg config.RateLimitConfig,
) FriendRequestService {
	return &friendRequestService{
		userRepo:       userRepo,
		friendRepo:     friendRepo,
		friendshipRepo: friendshipRepo,
		producer:       producer,
		kafkaCfg:       kafkaCfg,
		maxPendingSent: rateCfg.MaxPendingSentRequests,
	}
}

// SendFriendRequest validates and creates a new pending friend request.
// The write is a single insert; concurrent duplicate sends are resolved by
// the store's unique index over the active pair, not by locking.
func (s *friendRequestService) SendFriendRequest(ctx context.Context, requesterID, recipientID uint) (*models.FriendRequest, error) {
	if requesterID == recipientID {
		return nil, ErrInvalidTarget
	}

	// 1. Recipient must exist
	if _, err := s.userRepo.GetByID(ctx, recipientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, fmt.Errorf("failed to check recipient user %d: %w", recipientID, err)
	}

	// 2. Cap outstanding requests per sender
	if s.maxPendingSent > 0 {
		pendingSent, err := s.friendRepo.CountPendingSentByUser(ctx, requesterID)
		if err != nil {
			return nil, fmt.Errorf("failed to count pending requests for user %d: %w", requesterID, err)
		}
		if pendingSent >= int64(s.maxPendingSent) {
			return nil, ErrTooManyRequests
		}
	}

	// 3. No pending or accepted request may exist between the pair, in
	// either direction. A rejected request does not block a resend.
	existing, err := s.friendRepo.FindActiveRequest(ctx, requesterID, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing request between %d and %d: %w", requesterID, recipientID, err)
	}
	if existing != nil {
		return nil, ErrDuplicateRequest
	}

	request := &models.FriendRequest{
		RequesterUserID: requesterID,
		RecipientUserID: recipientID,
		Status:          models.FriendRequestStatusPending,
	}
	if err := s.friendRepo.Create(ctx, request); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race against a concurrent send for the same pair.
			return nil, ErrDuplicateRequest
		}
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}

	s.publishEvent(ctx, FriendEvent{
		Type:            FriendEventRequested,
		RequestID:       request.ID,
		RequesterUserID: requesterID,
		RecipientUserID: recipientID,
		NotifyUserID:    recipientID,
		Timestamp:       time.Now(),
	})

	logrus.WithFields(logrus.Fields{
		"requestId":   request.ID,
		"requesterId": requesterID,
		"recipientId": recipientID,
	}).Info("Friend request created")
	return request, nil
}

// AcceptFriendRequest moves a pending request to accepted. Only the
// recipient may do this, and only once.
func (s *friendRequestService) AcceptFriendRequest(ctx context.Context, recipientUserID uint, requestID uint) error {
	return s.respond(ctx, recipientUserID, requestID, models.FriendRequestStatusAccepted, FriendEventAccepted)
}

// RejectFriendRequest moves a pending request to rejected. Only the
// recipient may do this, and only once.
func (s *friendRequestService) RejectFriendRequest(ctx context.Context, recipientUserID uint, requestID uint) error {
	return s.respond(ctx, recipientUserID, requestID, models.FriendRequestStatusRejected, FriendEventRejected)
}

func (s *friendRequestService) respond(ctx context.Context, recipientUserID uint, requestID uint, decision models.FriendRequestStatus, eventType string) error {
	request, err := s.friendRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("failed to retrieve friend request %d: %w", requestID, err)
	}

	if request.RecipientUserID != recipientUserID {
		return ErrNotRecipient
	}
	if request.Status.IsTerminal() {
		return ErrAlreadyResolved
	}

	resolved, err := s.friendRepo.ResolveIfPending(ctx, requestID, decision)
	if err != nil {
		return fmt.Errorf("failed to update friend request %d to %s: %w", requestID, decision, err)
	}
	if !resolved {
		// A concurrent responder got there first.
		return ErrAlreadyResolved
	}

	s.publishEvent(ctx, FriendEvent{
		Type:            eventType,
		RequestID:       request.ID,
		RequesterUserID: request.RequesterUserID,
		RecipientUserID: request.RecipientUserID,
		NotifyUserID:    request.RequesterUserID,
		Timestamp:       time.Now(),
	})

	logrus.WithFields(logrus.Fields{
		"requestId":   requestID,
		"recipientId": recipientUserID,
		"decision":    decision,
	}).Info("Friend request resolved")
	return nil
}

// ListPendingRequests retrieves all pending friend requests received by the given user.
func (s *friendRequestService) ListPendingRequests(ctx context.Context, userID uint) ([]*models.FriendRequestWithRequester, error) {
	pendingRequests, err := s.friendRepo.GetPendingRequestsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending friend requests for user %d: %w", userID, err)
	}

	if len(pendingRequests) == 0 {
		return []*models.FriendRequestWithRequester{}, nil
	}

	// Enrich with requester info
	var resultDTOs []*models.FriendRequestWithRequester
	for _, req := range pendingRequests {
		requester, err := s.userRepo.GetBasicInfoByID(ctx, req.RequesterUserID)
		if err != nil {
			logrus.Errorf("Failed to fetch requester info for user %d (request %d): %v", req.RequesterUserID, req.ID, err)
			continue
		}
		resultDTOs = append(resultDTOs, &models.FriendRequestWithRequester{
			FriendRequest: req,
			Requester:     requester,
		})
	}
	return resultDTOs, nil
}

// GetFriendsList retrieves the basic info for all friends of the given user.
// Friendship is derived from accepted requests; order is unspecified.
func (s *friendRequestService) GetFriendsList(ctx context.Context, userID uint) ([]*models.UserBasicInfo, error) {
	friendIDs, err := s.friendshipRepo.GetFriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get friend IDs for user %d: %w", userID, err)
	}

	if len(friendIDs) == 0 {
		return []*models.UserBasicInfo{}, nil
	}

	friendsInfo, err := s.userRepo.GetMultipleBasicInfoByIDs(ctx, friendIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get basic info for friends of user %d: %w", userID, err)
	}

	return friendsInfo, nil
}

// publishEvent emits a friend event to Kafka. Delivery is best effort:
// a publish failure is logged and never surfaced to the caller, since the
// state change has already committed.
func (s *friendRequestService) publishEvent(ctx context.Context, event FriendEvent) {
	if s.producer == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logrus.Errorf("Failed to marshal friend event for request %d: %v", event.RequestID, err)
		return
	}

	key := []byte(fmt.Sprintf("%d-%d", event.RequesterUserID, event.RecipientUserID))
	if err := s.producer.SendMessage(ctx, s.kafkaCfg.FriendEventTopic, key, payload); err != nil {
		logrus.Errorf("Failed to publish friend event %s for request %d: %v", event.Type, event.RequestID, err)
	}
}
