package storage

import (
	"context"

	"socialnet/internal/models"

	"gorm.io/gorm"
)

// FriendshipRepository answers friendship queries. Friendship is not a
// stored table: two users are friends iff an accepted friend request exists
// between them, so every method here is a view over friend_requests.
type FriendshipRepository interface {
	AreUsersFriends(ctx context.Context, userID1, userID2 uint) (bool, error)
	GetFriendIDs(ctx context.Context, userID uint) ([]uint, error)
}

type gormFriendshipRepository struct {
	db *gorm.DB
}

// NewGormFriendshipRepository creates a new GormFriendshipRepository.
func NewGormFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &gormFriendshipRepository{db: db}
}

// AreUsersFriends reports whether an accepted request connects the two users,
// in either direction.
func (r *gormFriendshipRepository) AreUsersFriends(ctx context.Context, userID1, userID2 uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.FriendRequest{}).
		Where("(requester_user_id = ? AND recipient_user_id = ?) OR (requester_user_id = ? AND recipient_user_id = ?)",
			userID1, userID2, userID2, userID1).
		Where("status = ?", models.FriendRequestStatusAccepted).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetFriendIDs retrieves the IDs of every user connected to userID by an
// accepted request, whichever side sent it.
func (r *gormFriendshipRepository) GetFriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	// The user may sit on either side of the accepted request, so the
	// counterpart ID comes from two plucks.
	var sentTo []uint
	err := r.db.WithContext(ctx).
		Model(&models.FriendRequest{}).
		Where("requester_user_id = ? AND status = ?", userID, models.FriendRequestStatusAccepted).
		Pluck("recipient_user_id", &sentTo).Error
	if err != nil {
		return nil, err
	}

	var receivedFrom []uint
	err = r.db.WithContext(ctx).
		Model(&models.FriendRequest{}).
		Where("recipient_user_id = ? AND status = ?", userID, models.FriendRequestStatusAccepted).
		Pluck("requester_user_id", &receivedFrom).Error
	if err != nil {
		return nil, err
	}

	// The active-pair index guarantees at most one accepted request per
	// pair, so the two slices cannot overlap.
	return append(sentTo, receivedFrom...), nil
}
