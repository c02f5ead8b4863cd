// models/team.go
package models

import "time"

// MaxTeamSize is the hard cap on hackathon team membership.
const MaxTeamSize = 3

type Team struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	HackathonID string       `json:"hackathon_id" gorm:"size:7;not null;index"`
	Name        string       `json:"name" gorm:"size:100"`
	LogoURL     string       `json:"logo_url"`
	Wins        int          `json:"wins" gorm:"default:0"`
	CreatedBy   uint         `json:"created_by" gorm:"not null"`
	Creator     *User        `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
	Members     []TeamMember `json:"members,omitempty" gorm:"foreignKey:TeamID"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (Team) TableName() string {
	return "teams"
}

// Full reports whether the team has reached MaxTeamSize. Only meaningful
// when Members has been loaded.
func (t *Team) Full() bool {
	return len(t.Members) >= MaxTeamSize
}
