// services/invite_service.go - Team-initiated invites
package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hackhub/models"
)

// inviteTTL bounds how long a pending invite stays answerable. The
// cleanup service sweeps aged-out invites to expired; acceptance also
// checks the deadline directly in case the sweep has not run yet.
const inviteTTL = 7 * 24 * time.Hour

// InviteService runs the team-to-participant half of the proposal
// broker. Sending an invite while teamless creates the sender's team;
// that is the only way a team comes into existence.
type InviteService struct {
	db *gorm.DB
}

func NewInviteService(db *gorm.DB) *InviteService {
	return &InviteService{db: db}
}

// Send invites toUserID to the sender's team for the period, creating
// the team first if the sender is teamless. A second pending invite to
// the same recipient from the same team is rejected.
func (s *InviteService) Send(fromUserID, toUserID uint, hackathonID string) (*models.Team, *models.Invite, error) {
	if fromUserID == toUserID {
		return nil, nil, ErrSelfInvite
	}

	var (
		team   *models.Team
		invite *models.Invite
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		var err error
		team, err = teamForUserTx(tx, fromUserID, hackathonID)
		if err != nil {
			return err
		}
		if team == nil {
			team, err = createTeamTx(tx, fromUserID, hackathonID, now)
			if err != nil {
				return err
			}
		} else {
			// Re-read under lock so the capacity check holds through commit.
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&models.Team{}, team.ID).Error; err != nil {
				return err
			}
		}

		var memberCount int64
		if err := tx.Model(&models.TeamMember{}).Where("team_id = ?", team.ID).Count(&memberCount).Error; err != nil {
			return err
		}
		if memberCount >= models.MaxTeamSize {
			return ErrTeamFull
		}

		teamed, err := userHasTeamTx(tx, toUserID, hackathonID)
		if err != nil {
			return err
		}
		if teamed {
			return ErrAlreadyTeamed
		}

		var pending int64
		if err := tx.Model(&models.Invite{}).
			Where("team_id = ? AND to_user_id = ? AND status = ?", team.ID, toUserID, models.InviteStatusPending).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return ErrInviteAlreadyPending
		}

		expires := now.Add(inviteTTL)
		invite = &models.Invite{
			HackathonID: hackathonID,
			TeamID:      team.ID,
			FromUserID:  fromUserID,
			ToUserID:    toUserID,
			Status:      models.InviteStatusPending,
			CreatedAt:   now,
			ExpiresAt:   &expires,
		}
		return tx.Create(invite).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return team, invite, nil
}

// Accept merges the recipient into the inviting team. Capacity and the
// recipient's teamless status are revalidated inside the transaction, so
// two accepts racing for the last slot resolve to exactly one winner.
func (s *InviteService) Accept(inviteID, userID uint) (*models.Team, error) {
	var teamID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		// Lock order is user, then proposal, then team, everywhere a
		// membership is granted. The joiner-state sweep updates proposal
		// rows while holding the user lock, so taking a proposal lock
		// first would deadlock against it.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&models.User{}, userID).Error; err != nil {
			return err
		}

		var invite models.Invite
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&invite, inviteID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInviteNotFound
			}
			return err
		}
		if invite.ToUserID != userID {
			return ErrInviteNotFound
		}
		if invite.Status != models.InviteStatusPending {
			return ErrInviteNotPending
		}
		if invite.Expired(now) {
			return ErrInviteExpired
		}

		// Mark accepted before the append so the joiner-state sweep only
		// declines the other pending proposals.
		if err := tx.Model(&invite).Update("status", models.InviteStatusAccepted).Error; err != nil {
			return err
		}

		teamID = invite.TeamID
		return appendMemberTx(tx, invite.TeamID, invite.HackathonID, userID, now)
	})
	if err != nil {
		return nil, err
	}
	return NewTeamService(s.db).GetTeam(teamID)
}

// Decline is recipient-only and terminal; the row stays as history.
func (s *InviteService) Decline(inviteID, userID uint) error {
	res := s.db.Model(&models.Invite{}).
		Where("id = ? AND to_user_id = ? AND status = ?", inviteID, userID, models.InviteStatusPending).
		Update("status", models.InviteStatusDeclined)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return inviteDeclineFailure(s.db, inviteID, userID)
	}
	return nil
}

// inviteDeclineFailure distinguishes "not yours / missing" from "already
// answered" after a conditional decline matched nothing.
func inviteDeclineFailure(db *gorm.DB, inviteID, userID uint) error {
	var invite models.Invite
	if err := db.First(&invite, inviteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteNotFound
		}
		return err
	}
	if invite.ToUserID != userID {
		return ErrInviteNotFound
	}
	return ErrInviteNotPending
}

// ListForUser returns the user's pending invites for the period, newest
// first, matching the pool listing order.
func (s *InviteService) ListForUser(userID uint, hackathonID string) ([]models.Invite, error) {
	var invites []models.Invite
	err := s.db.
		Where("to_user_id = ? AND hackathon_id = ? AND status = ?", userID, hackathonID, models.InviteStatusPending).
		Preload("FromUser").
		Preload("Team").
		Preload("Team.Members").
		Preload("Team.Members.User").
		Order("created_at DESC").
		Find(&invites).Error
	return invites, err
}

// ExpirePending sweeps pending invites past their deadline to expired.
// Returns how many rows changed. Called by the cleanup scheduler.
func (s *InviteService) ExpirePending(now time.Time) (int64, error) {
	res := s.db.Model(&models.Invite{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", models.InviteStatusPending, now).
		Update("status", models.InviteStatusExpired)
	return res.RowsAffected, res.Error
}
