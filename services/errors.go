// services/errors.go - Hackathon error taxonomy
package services

import (
	"errors"
	"fmt"
)

// All of these are recoverable, user-facing conditions. Handlers map
// them to HTTP statuses; nothing retries automatically.
var (
	ErrAlreadyTeamed         = errors.New("you already have a team for this hackathon")
	ErrTeamFull              = errors.New("this team already has three members")
	ErrTeamNotFound          = errors.New("team not found")
	ErrNotTeamMember         = errors.New("you are not a member of this team")
	ErrSelfInvite            = errors.New("you cannot invite yourself")
	ErrInviteNotFound        = errors.New("invite not found")
	ErrInviteNotPending      = errors.New("this invite has already been answered")
	ErrInviteExpired         = errors.New("this invite has expired")
	ErrInviteAlreadyPending  = errors.New("this person already has a pending invite from your team")
	ErrRequestNotFound       = errors.New("join request not found")
	ErrRequestNotPending     = errors.New("this join request has already been answered")
	ErrRequestAlreadyPending = errors.New("you already have a pending join request")
	ErrNotFullTeam           = errors.New("your team needs three members first")
	ErrNotRegistered         = errors.New("no repository has been registered for this team")
	ErrAlreadyLocked         = errors.New("this submission is locked and can no longer change")
	ErrCutoffPassed          = errors.New("the submission window for this hackathon has closed")
)

// IneligibleError blocks pool joins and team formation. Reason is the
// first unmet eligibility rule, already phrased for display.
type IneligibleError struct {
	Reason string
}

func (e *IneligibleError) Error() string {
	return e.Reason
}

// RepoInvalidError reports a repository that failed the external
// visibility/recency check during registration.
type RepoInvalidError struct {
	Reason string
}

func (e *RepoInvalidError) Error() string {
	return fmt.Sprintf("repository rejected: %s", e.Reason)
}
