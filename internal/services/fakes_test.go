package services

import (
	"context"
	"strings"
	"sync"

	"socialnet/internal/models"

	"gorm.io/gorm"
)

// memUserRepo is an in-memory storage.UserRepository for tests.
type memUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User

	createErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: make(map[uint]*models.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.nextID++
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) SearchUsers(_ context.Context, query string, currentUserID uint, limit, offset int) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := strings.ToLower(query)
	var out []models.User
	for _, user := range r.users {
		if user.ID == currentUserID {
			continue
		}
		if strings.Contains(strings.ToLower(user.Username), q) ||
			strings.Contains(strings.ToLower(user.Nickname), q) ||
			strings.Contains(strings.ToLower(user.Email), q) {
			out = append(out, *user)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memUserRepo) GetBasicInfoByID(_ context.Context, id uint) (*models.UserBasicInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.UserBasicInfo{ID: user.ID, Username: user.Username, Nickname: user.Nickname, AvatarURL: user.AvatarURL}, nil
}

func (r *memUserRepo) GetMultipleBasicInfoByIDs(ctx context.Context, userIDs []uint) ([]*models.UserBasicInfo, error) {
	var out []*models.UserBasicInfo
	for _, id := range userIDs {
		info, err := r.GetBasicInfoByID(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, info)
	}
	return out, nil
}

// memFriendStore implements both storage.FriendRequestRepository and
// storage.FriendshipRepository over one in-memory request table, mirroring
// production where friendship is derived from accepted requests.
type memFriendStore struct {
	mu       sync.Mutex
	nextID   uint
	requests map[uint]*models.FriendRequest

	createErr error
}

func newMemFriendStore() *memFriendStore {
	return &memFriendStore{nextID: 1, requests: make(map[uint]*models.FriendRequest)}
}

func (s *memFriendStore) Create(_ context.Context, request *models.FriendRequest) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// Mimic the active-pair unique index.
	for _, existing := range s.requests {
		if existing.Status != models.FriendRequestStatusRejected &&
			existing.InvolvesPair(request.RequesterUserID, request.RecipientUserID) {
			return gorm.ErrDuplicatedKey
		}
	}
	request.ID = s.nextID
	s.nextID++
	copied := *request
	s.requests[request.ID] = &copied
	return nil
}

func (s *memFriendStore) FindActiveRequest(_ context.Context, userID1, userID2 uint) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, req := range s.requests {
		if req.Status == models.FriendRequestStatusRejected {
			continue
		}
		if req.InvolvesPair(userID1, userID2) {
			copied := *req
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *memFriendStore) GetRequestByID(_ context.Context, requestID uint) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[requestID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *req
	return &copied, nil
}

func (s *memFriendStore) ResolveIfPending(_ context.Context, requestID uint, status models.FriendRequestStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[requestID]
	if !ok || req.Status != models.FriendRequestStatusPending {
		return false, nil
	}
	req.Status = status
	return true, nil
}

func (s *memFriendStore) GetPendingRequestsForUser(_ context.Context, recipientUserID uint) ([]models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.FriendRequest
	for _, req := range s.requests {
		if req.RecipientUserID == recipientUserID && req.Status == models.FriendRequestStatusPending {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (s *memFriendStore) CountPendingSentByUser(_ context.Context, requesterUserID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, req := range s.requests {
		if req.RequesterUserID == requesterUserID && req.Status == models.FriendRequestStatusPending {
			count++
		}
	}
	return count, nil
}

func (s *memFriendStore) AreUsersFriends(_ context.Context, userID1, userID2 uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, req := range s.requests {
		if req.Status == models.FriendRequestStatusAccepted && req.InvolvesPair(userID1, userID2) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memFriendStore) GetFriendIDs(_ context.Context, userID uint) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []uint
	for _, req := range s.requests {
		if req.Status != models.FriendRequestStatusAccepted {
			continue
		}
		if req.RequesterUserID == userID {
			out = append(out, req.RecipientUserID)
		} else if req.RecipientUserID == userID {
			out = append(out, req.RequesterUserID)
		}
	}
	return out, nil
}

// capturingProducer records every published Kafka message.
type capturingProducer struct {
	mu       sync.Mutex
	topics   []string
	payloads [][]byte

	sendErr error
}

func (p *capturingProducer) SendMessage(_ context.Context, topic string, _ []byte, payload []byte) error {
	if p.sendErr != nil {
		return p.sendErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *capturingProducer) Close() {}

func (p *capturingProducer) published() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payloads)
}
