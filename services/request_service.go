// services/request_service.go - Participant-initiated join requests
package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hackhub/models"
)

// RequestService runs the participant-to-team half of the proposal
// broker. One pending request per participant at a time; a second send
// is rejected rather than superseding the first.
type RequestService struct {
	db *gorm.DB
}

func NewRequestService(db *gorm.DB) *RequestService {
	return &RequestService{db: db}
}

// Send asks the target team for one of its open slots.
func (s *RequestService) Send(userID, teamID uint) (*models.JoinRequest, error) {
	var request *models.JoinRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		var team models.Team
		if err := tx.First(&team, teamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTeamNotFound
			}
			return err
		}

		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}
		if lockedOut(user.LockedUntilPeriod, team.HackathonID) {
			return &IneligibleError{Reason: "You left a registered team and are locked out until " + user.LockedUntilPeriod + "."}
		}

		teamed, err := userHasTeamTx(tx, userID, team.HackathonID)
		if err != nil {
			return err
		}
		if teamed {
			return ErrAlreadyTeamed
		}

		var pending int64
		if err := tx.Model(&models.JoinRequest{}).
			Where("from_user_id = ? AND hackathon_id = ? AND status = ?", userID, team.HackathonID, models.JoinRequestStatusPending).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return ErrRequestAlreadyPending
		}

		var memberCount int64
		if err := tx.Model(&models.TeamMember{}).Where("team_id = ?", teamID).Count(&memberCount).Error; err != nil {
			return err
		}
		if memberCount >= models.MaxTeamSize {
			return ErrTeamFull
		}

		request = &models.JoinRequest{
			HackathonID: team.HackathonID,
			TeamID:      teamID,
			FromUserID:  userID,
			Status:      models.JoinRequestStatusPending,
			CreatedAt:   now,
		}
		return tx.Create(request).Error
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// Accept merges the requester into the team. Any current member of the
// target team may accept. The capacity and teamless checks rerun inside
// the transaction under the team row lock.
func (s *RequestService) Accept(requestID, actingUserID uint) (*models.Team, error) {
	var teamID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		// Peek at the request to learn the requester, lock their user row,
		// then take the request lock. Same user-before-proposal order as
		// the invite path; the pending check reruns under the lock.
		var request models.JoinRequest
		if err := tx.First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&models.User{}, request.FromUserID).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if request.Status != models.JoinRequestStatusPending {
			return ErrRequestNotPending
		}

		member, err := isMemberTx(tx, actingUserID, request.TeamID)
		if err != nil {
			return err
		}
		if !member {
			return ErrNotTeamMember
		}

		// Flip the status first so the joiner-state sweep inside the
		// append leaves this row alone.
		if err := tx.Model(&request).Update("status", models.JoinRequestStatusAccepted).Error; err != nil {
			return err
		}

		teamID = request.TeamID
		return appendMemberTx(tx, request.TeamID, request.HackathonID, request.FromUserID, now)
	})
	if err != nil {
		return nil, err
	}
	return NewTeamService(s.db).GetTeam(teamID)
}

// Decline is terminal. Team members decline requests aimed at their
// team; the requester may decline their own row to withdraw it.
func (s *RequestService) Decline(requestID, actingUserID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var request models.JoinRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if request.Status != models.JoinRequestStatusPending {
			return ErrRequestNotPending
		}

		if request.FromUserID != actingUserID {
			member, err := isMemberTx(tx, actingUserID, request.TeamID)
			if err != nil {
				return err
			}
			if !member {
				return ErrRequestNotFound
			}
		}

		return tx.Model(&request).Update("status", models.JoinRequestStatusDeclined).Error
	})
}

// ListForTeam returns a team's pending requests newest-first. Restricted
// to current members.
func (s *RequestService) ListForTeam(teamID, actingUserID uint) ([]models.JoinRequest, error) {
	member, err := isMemberTx(s.db, actingUserID, teamID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotTeamMember
	}

	var requests []models.JoinRequest
	err = s.db.
		Where("team_id = ? AND status = ?", teamID, models.JoinRequestStatusPending).
		Preload("FromUser").
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// PendingForUser returns the user's outstanding request for the period,
// or nil.
func (s *RequestService) PendingForUser(userID uint, hackathonID string) (*models.JoinRequest, error) {
	var request models.JoinRequest
	err := s.db.
		Where("from_user_id = ? AND hackathon_id = ? AND status = ?", userID, hackathonID, models.JoinRequestStatusPending).
		Preload("Team").
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}
