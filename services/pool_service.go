// services/pool_service.go - Looking-for-team pool
package services

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hackhub/models"
)

// PoolService tracks who has opted into team-hunting for a period. The
// pool is a discovery surface only: being invited never requires having
// joined it.
type PoolService struct {
	db          *gorm.DB
	eligibility *EligibilityChecker
}

func NewPoolService(db *gorm.DB, eligibility *EligibilityChecker) *PoolService {
	return &PoolService{db: db, eligibility: eligibility}
}

// Join adds the user to the pool. Joining twice is a no-op success.
// Returns *IneligibleError when the eligibility rules reject the user.
func (s *PoolService) Join(userID uint, hackathonID string) error {
	eligible, reason, err := s.eligibility.Check(userID, hackathonID)
	if err != nil {
		return err
	}
	if !eligible {
		return &IneligibleError{Reason: reason}
	}

	entry := &models.PoolEntry{
		UserID:      userID,
		HackathonID: hackathonID,
		JoinedAt:    time.Now().UTC(),
	}

	// Upsert keyed on (user, period); a second join leaves the original
	// joined_at in place.
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "hackathon_id"}},
		DoNothing: true,
	}).Create(entry).Error
}

// Leave removes the user's pool entry. No-op if absent, and requires no
// eligibility check.
func (s *PoolService) Leave(userID uint, hackathonID string) error {
	return s.db.Where("user_id = ? AND hackathon_id = ?", userID, hackathonID).
		Delete(&models.PoolEntry{}).Error
}

// List returns the pool newest-first. The ordering is a user-facing
// contract: the most recently interested participants surface first.
func (s *PoolService) List(hackathonID string) ([]models.PoolEntry, error) {
	var entries []models.PoolEntry
	err := s.db.Where("hackathon_id = ?", hackathonID).
		Preload("User").
		Order("joined_at DESC").
		Find(&entries).Error
	return entries, err
}

// Contains reports whether the user currently sits in the pool.
func (s *PoolService) Contains(userID uint, hackathonID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.PoolEntry{}).
		Where("user_id = ? AND hackathon_id = ?", userID, hackathonID).
		Count(&count).Error
	return count > 0, err
}
