// services/team_service.go - Hackathon team state machine
package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hackhub/models"
)

// TeamService owns team membership for hackathon periods. Teams come
// into existence implicitly when a teamless participant sends their
// first invite, grow through accepted invites and join requests, and
// disappear when the last member leaves. Membership counts are always
// derived from team_members rows under a row lock on the team, never
// cached, so two concurrent accepts cannot overfill a team.
type TeamService struct {
	db *gorm.DB
}

func NewTeamService(db *gorm.DB) *TeamService {
	return &TeamService{db: db}
}

// GetTeam loads a team with its members in join order.
func (s *TeamService) GetTeam(teamID uint) (*models.Team, error) {
	var team models.Team
	err := s.db.
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("joined_at ASC") }).
		Preload("Members.User").
		First(&team, teamID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &team, nil
}

// TeamForUser returns the user's team for the period, or nil when the
// user is teamless.
func (s *TeamService) TeamForUser(userID uint, hackathonID string) (*models.Team, error) {
	return teamForUserTx(s.db, userID, hackathonID)
}

func teamForUserTx(tx *gorm.DB, userID uint, hackathonID string) (*models.Team, error) {
	var team models.Team
	err := tx.
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ? AND teams.hackathon_id = ?", userID, hackathonID).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("joined_at ASC") }).
		Preload("Members.User").
		First(&team).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &team, nil
}

// OpenTeams lists teams for the period that still have a free slot,
// newest first. This is the discovery surface join requests start from.
func (s *TeamService) OpenTeams(hackathonID string) ([]models.Team, error) {
	var teams []models.Team
	err := s.db.Where("hackathon_id = ?", hackathonID).
		Where("(SELECT COUNT(*) FROM team_members WHERE team_members.team_id = teams.id) < ?", models.MaxTeamSize).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("joined_at ASC") }).
		Preload("Members.User").
		Order("created_at DESC").
		Find(&teams).Error
	return teams, err
}

// IsMember reports whether the user currently belongs to the team.
func (s *TeamService) IsMember(userID, teamID uint) (bool, error) {
	return isMemberTx(s.db, userID, teamID)
}

func isMemberTx(tx *gorm.DB, userID, teamID uint) (bool, error) {
	var count int64
	err := tx.Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Count(&count).Error
	return count > 0, err
}

// UpdateInfo lets any current member set the vanity fields.
func (s *TeamService) UpdateInfo(userID, teamID uint, name, logoURL string) error {
	member, err := s.IsMember(userID, teamID)
	if err != nil {
		return err
	}
	if !member {
		return ErrNotTeamMember
	}
	return s.db.Model(&models.Team{}).Where("id = ?", teamID).Updates(map[string]interface{}{
		"name":       name,
		"logo_url":   logoURL,
		"updated_at": time.Now().UTC(),
	}).Error
}

// AddWin bumps the team's win counter. Admin-only surface.
func (s *TeamService) AddWin(teamID uint) error {
	res := s.db.Model(&models.Team{}).Where("id = ?", teamID).
		UpdateColumn("wins", gorm.Expr("wins + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTeamNotFound
	}
	return nil
}

// Leave removes the user from the team. When the team has a registered
// submission for the period, the submission is disqualified and the
// leaver is locked out until the next period; both happen in the same
// transaction as the membership removal, so a crash can never leave a
// half-applied penalty. Returns whether a lockout was applied.
func (s *TeamService) Leave(userID, teamID uint) (bool, error) {
	lockedOutApplied := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var team models.Team
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&team, teamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTeamNotFound
			}
			return err
		}

		var member models.TeamMember
		if err := tx.Where("team_id = ? AND user_id = ?", teamID, userID).First(&member).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotTeamMember
			}
			return err
		}

		var sub models.Submission
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("team_id = ? AND hackathon_id = ?", teamID, team.HackathonID).
			First(&sub).Error
		switch {
		case err == nil:
			// Abandoning a registered team: disqualify the submission
			// (idempotent) and lock the leaver out through next period.
			if !sub.Disqualified {
				if err := tx.Model(&models.Submission{}).
					Where("id = ? AND disqualified = ?", sub.ID, false).
					Updates(map[string]interface{}{
						"disqualified":        true,
						"disqualified_reason": "a member left the team after registration",
					}).Error; err != nil {
					return err
				}
			}
			next, perr := NextPeriodID(team.HackathonID)
			if perr != nil {
				return perr
			}
			if err := tx.Model(&models.User{}).
				Where("id = ? AND (locked_until_period = '' OR locked_until_period < ?)", userID, next).
				Update("locked_until_period", next).Error; err != nil {
				return err
			}
			lockedOutApplied = true
		case errors.Is(err, gorm.ErrRecordNotFound):
			// No submission registered; leaving is unconditional.
		default:
			return err
		}

		if err := tx.Delete(&member).Error; err != nil {
			return err
		}

		var remaining int64
		if err := tx.Model(&models.TeamMember{}).Where("team_id = ?", teamID).Count(&remaining).Error; err != nil {
			return err
		}
		if remaining == 0 {
			// A team never persists with zero members. Kill its open
			// proposals along with it.
			if err := tx.Model(&models.Invite{}).
				Where("team_id = ? AND status = ?", teamID, models.InviteStatusPending).
				Update("status", models.InviteStatusDeclined).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.JoinRequest{}).
				Where("team_id = ? AND status = ?", teamID, models.JoinRequestStatusPending).
				Update("status", models.JoinRequestStatusDeclined).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Team{}, teamID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return lockedOutApplied, err
}

// createTeamTx creates a forming team for a teamless, non-locked-out
// creator. Only the invite send path calls this; there is no explicit
// create-team action.
func createTeamTx(tx *gorm.DB, creatorID uint, hackathonID string, now time.Time) (*models.Team, error) {
	// Same user-row lock as the append path, so creating a team cannot
	// race a concurrent accept into someone else's team.
	var user models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, creatorID).Error; err != nil {
		return nil, err
	}
	if lockedOut(user.LockedUntilPeriod, hackathonID) {
		return nil, &IneligibleError{Reason: "You left a registered team and are locked out until " + user.LockedUntilPeriod + "."}
	}

	teamed, err := userHasTeamTx(tx, creatorID, hackathonID)
	if err != nil {
		return nil, err
	}
	if teamed {
		return nil, ErrAlreadyTeamed
	}

	team := &models.Team{
		HackathonID: hackathonID,
		CreatedBy:   creatorID,
		CreatedAt:   now,
	}
	if err := tx.Create(team).Error; err != nil {
		return nil, err
	}
	if err := tx.Create(&models.TeamMember{
		TeamID:   team.ID,
		UserID:   creatorID,
		JoinedAt: now,
	}).Error; err != nil {
		return nil, err
	}
	// The creator is now teamed; their pool entry and open proposals are
	// no longer meaningful.
	if err := cleanupJoinerStateTx(tx, creatorID, hackathonID); err != nil {
		return nil, err
	}
	return team, nil
}

// appendMemberTx adds userID to the team, revalidating capacity and the
// joiner's teamless status at commit time under the team row lock.
// Callers that accept a proposal must flip that proposal's status before
// calling this, so the sweep below only hits the others.
func appendMemberTx(tx *gorm.DB, teamID uint, hackathonID string, userID uint, now time.Time) error {
	var team models.Team
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		return err
	}

	var count int64
	if err := tx.Model(&models.TeamMember{}).Where("team_id = ?", teamID).Count(&count).Error; err != nil {
		return err
	}
	if count >= models.MaxTeamSize {
		return ErrTeamFull
	}

	// Lock the joiner's user row before the teamless check. The team row
	// lock serializes accepts into one team; this serializes the same
	// user accepting into different teams.
	var joiner models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&joiner, userID).Error; err != nil {
		return err
	}
	if lockedOut(joiner.LockedUntilPeriod, hackathonID) {
		return &IneligibleError{Reason: "You left a registered team and are locked out until " + joiner.LockedUntilPeriod + "."}
	}

	teamed, err := userHasTeamTx(tx, userID, hackathonID)
	if err != nil {
		return err
	}
	if teamed {
		return ErrAlreadyTeamed
	}

	if err := tx.Create(&models.TeamMember{
		TeamID:   teamID,
		UserID:   userID,
		JoinedAt: now,
	}).Error; err != nil {
		return err
	}
	return cleanupJoinerStateTx(tx, userID, hackathonID)
}

// cleanupJoinerStateTx removes the pool entry and declines every pending
// proposal involving a user who just became teamed for the period.
func cleanupJoinerStateTx(tx *gorm.DB, userID uint, hackathonID string) error {
	if err := tx.Where("user_id = ? AND hackathon_id = ?", userID, hackathonID).
		Delete(&models.PoolEntry{}).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.Invite{}).
		Where("to_user_id = ? AND hackathon_id = ? AND status = ?", userID, hackathonID, models.InviteStatusPending).
		Update("status", models.InviteStatusDeclined).Error; err != nil {
		return err
	}
	return tx.Model(&models.JoinRequest{}).
		Where("from_user_id = ? AND hackathon_id = ? AND status = ?", userID, hackathonID, models.JoinRequestStatusPending).
		Update("status", models.JoinRequestStatusDeclined).Error
}
