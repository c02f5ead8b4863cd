// models/team_member.go
package models

import "time"

// TeamMember is one row per participant per team. Membership order (who
// founded, who joined later) is recovered by sorting on JoinedAt; the
// member count is always derived from these rows, never cached on Team.
type TeamMember struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	TeamID   uint      `json:"team_id" gorm:"not null;index;uniqueIndex:idx_team_members_team_user"`
	Team     *Team     `json:"team,omitempty" gorm:"foreignKey:TeamID"`
	UserID   uint      `json:"user_id" gorm:"not null;index;uniqueIndex:idx_team_members_team_user"`
	User     *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	JoinedAt time.Time `json:"joined_at" gorm:"not null"`
}

func (TeamMember) TableName() string {
	return "team_members"
}
