// models/submission.go
package models

import "time"

// Submission is the one repository a full team registers for a period.
// RepoURL stays mutable until the team submits or is disqualified, after
// which the row is frozen.
type Submission struct {
	ID                 uint       `json:"id" gorm:"primaryKey"`
	HackathonID        string     `json:"hackathon_id" gorm:"size:7;not null;uniqueIndex:idx_submissions_period_team"`
	TeamID             uint       `json:"team_id" gorm:"not null;uniqueIndex:idx_submissions_period_team"`
	Team               *Team      `json:"team,omitempty" gorm:"foreignKey:TeamID"`
	RepoURL            string     `json:"repo_url" gorm:"not null"`
	RegisteredBy       uint       `json:"registered_by" gorm:"not null"`
	RegisteredAt       time.Time  `json:"registered_at" gorm:"not null"`
	SubmittedAt        *time.Time `json:"submitted_at,omitempty"`
	CutoffAt           time.Time  `json:"cutoff_at" gorm:"not null"`
	Disqualified       bool       `json:"disqualified" gorm:"default:false"`
	DisqualifiedReason string     `json:"disqualified_reason,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}

// Locked reports whether the submission can no longer be changed.
func (s *Submission) Locked() bool {
	return s.SubmittedAt != nil || s.Disqualified
}
