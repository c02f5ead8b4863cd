// models/invite.go
package models

import "time"

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusDeclined InviteStatus = "declined"
	InviteStatusExpired  InviteStatus = "expired"
)

// Invite is a team-initiated proposal to a specific participant.
// Accepted/declined/expired rows are immutable history.
type Invite struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	HackathonID string       `json:"hackathon_id" gorm:"size:7;not null;index"`
	TeamID      uint         `json:"team_id" gorm:"not null;index"`
	Team        *Team        `json:"team,omitempty" gorm:"foreignKey:TeamID"`
	FromUserID  uint         `json:"from_user_id" gorm:"not null"`
	FromUser    *User        `json:"from_user,omitempty" gorm:"foreignKey:FromUserID"`
	ToUserID    uint         `json:"to_user_id" gorm:"not null;index"`
	ToUser      *User        `json:"to_user,omitempty" gorm:"foreignKey:ToUserID"`
	Status      InviteStatus `json:"status" gorm:"size:16;not null;default:'pending';index"`
	CreatedAt   time.Time    `json:"created_at"`
	ExpiresAt   *time.Time   `json:"expires_at,omitempty"`
}

func (Invite) TableName() string {
	return "invites"
}

// Expired reports whether a pending invite has aged out.
func (i *Invite) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}
