package storage

import (
	"context"
	"errors"

	"socialnet/internal/models"

	"gorm.io/gorm"
)

// FriendRequestRepository defines the interface for friend request data operations.
type FriendRequestRepository interface {
	Create(ctx context.Context, request *models.FriendRequest) error
	// FindActiveRequest returns a pending or accepted request between the two
	// users in either direction, or nil when none exists.
	FindActiveRequest(ctx context.Context, userID1, userID2 uint) (*models.FriendRequest, error)
	GetRequestByID(ctx context.Context, requestID uint) (*models.FriendRequest, error)
	// ResolveIfPending conditionally moves the request to a terminal status.
	// It reports false when the request was no longer pending, which is how
	// a losing concurrent responder finds out.
	ResolveIfPending(ctx context.Context, requestID uint, status models.FriendRequestStatus) (bool, error)
	GetPendingRequestsForUser(ctx context.Context, recipientUserID uint) ([]models.FriendRequest, error)
	CountPendingSentByUser(ctx context.Context, requesterUserID uint) (int64, error)
}

type gormFriendRequestRepository struct {
	db *gorm.DB
}

func NewGormFriendRequestRepository(db *gorm.DB) FriendRequestRepository {
	return &gormFriendRequestRepository{db: db}
}

func (r *gormFriendRequestRepository) Create(ctx context.Context, request *models.FriendRequest) error {
	// The active-pair unique index turns a concurrent duplicate into
	// gorm.ErrDuplicatedKey here.
	return r.db.WithContext(ctx).Create(request).Error
}

// FindActiveRequest checks for a pending or accepted request between two users (in either direction).
func (r *gormFriendRequestRepository) FindActiveRequest(ctx context.Context, userID1, userID2 uint) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("(requester_user_id = ? AND recipient_user_id = ?) OR (requester_user_id = ? AND recipient_user_id = ?)",
			userID1, userID2, userID2, userID1).
		Where("status IN ?", []models.FriendRequestStatus{
			models.FriendRequestStatusPending,
			models.FriendRequestStatusAccepted,
		}).
		First(&request).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // no active request is not an error here
		}
		return nil, err
	}
	return &request, nil
}

func (r *gormFriendRequestRepository) GetRequestByID(ctx context.Context, requestID uint) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := r.db.WithContext(ctx).First(&request, requestID).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *gormFriendRequestRepository) ResolveIfPending(ctx context.Context, requestID uint, status models.FriendRequestStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.FriendRequest{}).
		Where("id = ? AND status = ?", requestID, models.FriendRequestStatusPending).
		Update("status", status)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *gormFriendRequestRepository) GetPendingRequestsForUser(ctx context.Context, recipientUserID uint) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("recipient_user_id = ? AND status = ?", recipientUserID, models.FriendRequestStatusPending).
		Find(&requests).Error
	return requests, err
}

func (r *gormFriendRequestRepository) CountPendingSentByUser(ctx context.Context, requesterUserID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.FriendRequest{}).
		Where("requester_user_id = ? AND status = ?", requesterUserID, models.FriendRequestStatusPending).
		Count(&count).Error
	return count, err
}
