// models/join_request.go
package models

import "time"

type JoinRequestStatus string

const (
	JoinRequestStatusPending  JoinRequestStatus = "pending"
	JoinRequestStatusAccepted JoinRequestStatus = "accepted"
	JoinRequestStatusDeclined JoinRequestStatus = "declined"
)

// JoinRequest mirrors Invite but runs in the other direction: a teamless
// participant asks a specific team for one of its open slots. A
// participant holds at most one pending request per period.
type JoinRequest struct {
	ID          uint              `json:"id" gorm:"primaryKey"`
	HackathonID string            `json:"hackathon_id" gorm:"size:7;not null;index"`
	TeamID      uint              `json:"team_id" gorm:"not null;index"`
	Team        *Team             `json:"team,omitempty" gorm:"foreignKey:TeamID"`
	FromUserID  uint              `json:"from_user_id" gorm:"not null;index"`
	FromUser    *User             `json:"from_user,omitempty" gorm:"foreignKey:FromUserID"`
	Status      JoinRequestStatus `json:"status" gorm:"size:16;not null;default:'pending';index"`
	CreatedAt   time.Time         `json:"created_at"`
}

func (JoinRequest) TableName() string {
	return "join_requests"
}
