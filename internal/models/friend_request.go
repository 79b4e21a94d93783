package models

// FriendRequestStatus is the lifecycle state of a friend request.
type FriendRequestStatus string

const (
	FriendRequestStatusPending  FriendRequestStatus = "pending"
	FriendRequestStatusAccepted FriendRequestStatus = "accepted"
	FriendRequestStatusRejected FriendRequestStatus = "rejected"
)

// IsTerminal reports whether the status permits no further transitions.
// Only the recipient may move a request out of pending, and only once.
func (s FriendRequestStatus) IsTerminal() bool {
	return s == FriendRequestStatusAccepted || s == FriendRequestStatusRejected
}

// FriendRequest records one user's proposal of friendship to another.
// A friendship is derived: two users are friends iff an accepted request
// exists between them. At most one non-rejected request may exist per
// unordered user pair; this is enforced by a partial unique index over
// (LEAST, GREATEST) of the pair, see storage.AutoMigrateTables.
type FriendRequest struct {
	BaseModel
	RequesterUserID uint                `gorm:"not null;index:idx_friend_request_users" json:"requesterUserId"`
	RecipientUserID uint                `gorm:"not null;index:idx_friend_request_users" json:"recipientUserId"`
	Status          FriendRequestStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
}

// InvolvesPair reports whether the request connects the two given users,
// in either direction.
func (fr *FriendRequest) InvolvesPair(userID1, userID2 uint) bool {
	return (fr.RequesterUserID == userID1 && fr.RecipientUserID == userID2) ||
		(fr.RequesterUserID == userID2 && fr.RecipientUserID == userID1)
}

// FriendRequestWithRequester is a DTO that includes friend request details
// along with basic information about the user who sent the request.
// Useful for API responses for listing pending requests.
type FriendRequestWithRequester struct {
	FriendRequest
	Requester *UserBasicInfo `json:"requester"`
}
