// models/pool_entry.go
package models

import "time"

// PoolEntry marks a participant as looking for a team in one hackathon
// period. At most one row per (user, period); the row is removed when
// the participant leaves the pool or lands on a team.
type PoolEntry struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_pool_user_period"`
	User        *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	HackathonID string    `json:"hackathon_id" gorm:"size:7;not null;index;uniqueIndex:idx_pool_user_period"`
	JoinedAt    time.Time `json:"joined_at" gorm:"not null;index"`
}

func (PoolEntry) TableName() string {
	return "pool_entries"
}
