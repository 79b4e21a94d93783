package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFriendRequestStatusIsTerminal(t *testing.T) {
	assert.False(t, FriendRequestStatusPending.IsTerminal())
	assert.True(t, FriendRequestStatusAccepted.IsTerminal())
	assert.True(t, FriendRequestStatusRejected.IsTerminal())
}

func TestFriendRequestInvolvesPair(t *testing.T) {
	request := &FriendRequest{RequesterUserID: 1, RecipientUserID: 2}

	assert.True(t, request.InvolvesPair(1, 2))
	assert.True(t, request.InvolvesPair(2, 1))
	assert.False(t, request.InvolvesPair(1, 3))
	assert.False(t, request.InvolvesPair(3, 2))
}
