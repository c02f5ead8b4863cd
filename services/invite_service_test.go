package services

import (
	"errors"
	"testing"
)

func TestSendRejectsSelfInvite(t *testing.T) {
	invites := NewInviteService(nil)

	_, _, err := invites.Send(7, 7, "2025-06")
	if !errors.Is(err, ErrSelfInvite) {
		t.Fatalf("expected ErrSelfInvite, got %v", err)
	}
}
