// models/user.go
package models

import (
	"time"
)

type User struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Username    string  `gorm:"uniqueIndex;not null" json:"username"`
	Email       *string `gorm:"uniqueIndex" json:"email,omitempty"`
	Password    string  `gorm:"not null" json:"-"`
	DisplayName string  `json:"display_name"`
	Avatar      string  `json:"avatar"`
	Bio         string  `json:"bio"`
	IsGuest     bool    `gorm:"default:false" json:"is_guest"`
	IsAdmin     bool    `gorm:"default:false" json:"is_admin"`
	IsBanned    bool    `gorm:"default:false" json:"is_banned"`

	// Hackathon standing. Period IDs are "YYYY-MM", so a plain string
	// comparison against the current period decides whether a lockout
	// is still in force. Empty means never locked out.
	LockedUntilPeriod string `gorm:"size:7;index" json:"locked_until_period,omitempty"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LastLogin time.Time `json:"last_login"`
	LastSeen  time.Time `json:"last_seen"`
}

func (User) TableName() string {
	return "users"
}

// ProfileComplete reports whether the profile meets the minimum bar for
// hackathon participation. Guests never qualify.
func (u *User) ProfileComplete() bool {
	return !u.IsGuest && u.DisplayName != "" && u.Bio != ""
}
