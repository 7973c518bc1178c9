package model

import (
	"errors"
	"time"
)

// FriendRequest statuses. A request starts pending and transitions exactly
// once, to accepted or declined. Resolved requests are never mutated again.
const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusDeclined = "declined"
)

// FriendRequest is the directional record friendship is derived from.
// At most one row exists per ordered (sender, receiver) pair.
type FriendRequest struct {
	ID          int64      `db:"id" json:"id"`
	SenderID    int64      `db:"sender_id" json:"sender_id"`
	ReceiverID  int64      `db:"receiver_id" json:"receiver_id"`
	Status      string     `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	RespondedAt *time.Time `db:"responded_at" json:"responded_at,omitempty"`
}

// IsResolved reports whether the request has reached a terminal status.
func (r *FriendRequest) IsResolved() bool {
	return r.Status != RequestStatusPending
}

// FriendRequestView is a pending request enriched with the sender, for the
// receiver's inbox.
type FriendRequestView struct {
	ID        int64       `db:"id" json:"id"`
	Sender    UserSummary `json:"sender"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}

// SendOutcome enumerates the results of sending a friend request. These are
// business-rule branches, not errors: every outcome leaves the caller with
// user-facing feedback rather than a failure.
type SendOutcome string

const (
	// OutcomeSent means a new pending request was created.
	OutcomeSent SendOutcome = "sent"
	// OutcomeSelfRequest means the sender targeted themselves; no row created.
	OutcomeSelfRequest SendOutcome = "self_request"
	// OutcomeAlreadyFriends means an accepted request already connects the pair.
	OutcomeAlreadyFriends SendOutcome = "already_friends"
	// OutcomeAlreadyPending means this sender already has a pending request
	// to this receiver.
	OutcomeAlreadyPending SendOutcome = "already_pending"
	// OutcomePreviouslyResolved means a resolved request exists for the
	// ordered pair; it is not mutated or recreated.
	OutcomePreviouslyResolved SendOutcome = "previously_resolved"
	// OutcomeMutualAccepted means the receiver already had a pending request
	// to the sender, which was accepted instead of creating a duplicate edge.
	OutcomeMutualAccepted SendOutcome = "mutual_accepted"
)

// Decision values for responding to a friend request.
const (
	DecisionAccept  = "accept"
	DecisionDecline = "decline"
)

// SendFriendRequestRequest is the request body for POST /friend-requests.
type SendFriendRequestRequest struct {
	ReceiverUsername string `json:"receiver_username"`
}

// SendFriendRequestResponse reports the outcome of a send attempt.
type SendFriendRequestResponse struct {
	Outcome SendOutcome    `json:"outcome"`
	Request *FriendRequest `json:"request,omitempty"`
}

// Friend request errors
var (
	ErrRequestNotFound    = errors.New("friend request not found")
	ErrNotRequestReceiver = errors.New("not the receiver of this friend request")
	ErrRequestResolved    = errors.New("friend request already resolved")
	ErrInvalidDecision    = errors.New("invalid decision")
)
