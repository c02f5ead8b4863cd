// services/submission_service.go - Repository registration and lock
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hackhub/models"
)

// SubmissionService walks a team's submission through
// unregistered -> registered -> submitted, with disqualified as the
// orthogonal terminal state. Every transition is a conditional write on
// the current row state, so a racing register/submit/disqualify can
// never half-apply.
type SubmissionService struct {
	db    *gorm.DB
	repos RepoChecker
}

func NewSubmissionService(db *gorm.DB, repos RepoChecker) *SubmissionService {
	return &SubmissionService{db: db, repos: repos}
}

// Register records (or overwrites) the calling member's team repository
// for the period. Requires a full team, an open submission window, and
// a repository that passes the external visibility/recency check.
func (s *SubmissionService) Register(ctx context.Context, userID uint, hackathonID, repoURL string) (*models.Submission, error) {
	cutoff, err := PeriodCutoff(hackathonID)
	if err != nil {
		return nil, err
	}
	periodStart, err := PeriodStart(hackathonID)
	if err != nil {
		return nil, err
	}
	if time.Now().UTC().After(cutoff) {
		return nil, ErrCutoffPassed
	}

	// The external lookup stays outside the transaction; holding a row
	// lock across a network call would serialize every other mutation on
	// the team.
	if err := s.repos.Check(ctx, repoURL, periodStart); err != nil {
		return nil, err
	}

	var sub *models.Submission
	err = s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		team, err := teamForUserTx(tx, userID, hackathonID)
		if err != nil {
			return err
		}
		if team == nil {
			return ErrNotTeamMember
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&models.Team{}, team.ID).Error; err != nil {
			return err
		}

		var memberCount int64
		if err := tx.Model(&models.TeamMember{}).Where("team_id = ?", team.ID).Count(&memberCount).Error; err != nil {
			return err
		}
		if memberCount < models.MaxTeamSize {
			return ErrNotFullTeam
		}

		var existing models.Submission
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("team_id = ? AND hackathon_id = ?", team.ID, hackathonID).
			First(&existing).Error
		switch {
		case err == nil:
			if existing.Locked() {
				return ErrAlreadyLocked
			}
			// Update-in-place until the lock: re-registering swaps the URL.
			if err := tx.Model(&existing).
				Where("submitted_at IS NULL AND disqualified = ?", false).
				Updates(map[string]interface{}{
					"repo_url":      repoURL,
					"registered_by": userID,
					"registered_at": now,
				}).Error; err != nil {
				return err
			}
			existing.RepoURL = repoURL
			existing.RegisteredBy = userID
			existing.RegisteredAt = now
			sub = &existing
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			sub = &models.Submission{
				HackathonID:  hackathonID,
				TeamID:       team.ID,
				RepoURL:      repoURL,
				RegisteredBy: userID,
				RegisteredAt: now,
				CutoffAt:     cutoff,
			}
			return tx.Create(sub).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Submit locks the team's submission. One-way: there is no unsubmit.
func (s *SubmissionService) Submit(userID uint, hackathonID string) (*models.Submission, error) {
	var sub *models.Submission
	err := s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		team, err := teamForUserTx(tx, userID, hackathonID)
		if err != nil {
			return err
		}
		if team == nil {
			return ErrNotTeamMember
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&models.Team{}, team.ID).Error; err != nil {
			return err
		}

		var memberCount int64
		if err := tx.Model(&models.TeamMember{}).Where("team_id = ?", team.ID).Count(&memberCount).Error; err != nil {
			return err
		}
		if memberCount < models.MaxTeamSize {
			return ErrNotFullTeam
		}

		var existing models.Submission
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("team_id = ? AND hackathon_id = ?", team.ID, hackathonID).
			First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotRegistered
			}
			return err
		}
		if existing.Locked() {
			return ErrAlreadyLocked
		}
		if now.After(existing.CutoffAt) {
			return ErrCutoffPassed
		}

		res := tx.Model(&existing).
			Where("submitted_at IS NULL AND disqualified = ?", false).
			Update("submitted_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyLocked
		}
		existing.SubmittedAt = &now
		sub = &existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Disqualify marks the team's submission disqualified. Reachable from
// the leave rule or from moderation; idempotent in the sense that a
// second call on an already-disqualified row reports ErrAlreadyLocked
// and changes nothing.
func (s *SubmissionService) Disqualify(teamID uint, hackathonID, reason string) error {
	res := s.db.Model(&models.Submission{}).
		Where("team_id = ? AND hackathon_id = ? AND disqualified = ?", teamID, hackathonID, false).
		Updates(map[string]interface{}{
			"disqualified":        true,
			"disqualified_reason": reason,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := s.db.Model(&models.Submission{}).
			Where("team_id = ? AND hackathon_id = ?", teamID, hackathonID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotRegistered
		}
		return ErrAlreadyLocked
	}
	return nil
}

// ForTeam returns the team's submission for the period, or nil when
// nothing has been registered yet.
func (s *SubmissionService) ForTeam(teamID uint, hackathonID string) (*models.Submission, error) {
	var sub models.Submission
	err := s.db.Where("team_id = ? AND hackathon_id = ?", teamID, hackathonID).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}
