// services/eligibility.go - Pool/team eligibility rules
package services

import (
	"errors"

	"gorm.io/gorm"

	"hackhub/models"
)

// ProfileCompleteFunc is the platform's minimum-profile predicate. It
// returns false plus a display-ready reason when the profile falls
// short.
type ProfileCompleteFunc func(u *models.User) (bool, string)

// EligibilityChecker decides whether a participant may enter the pool or
// take a team slot for a period. Rules run in a fixed order and the
// first failure wins, so callers always get a single stable reason.
type EligibilityChecker struct {
	db              *gorm.DB
	profileComplete ProfileCompleteFunc
}

func NewEligibilityChecker(db *gorm.DB) *EligibilityChecker {
	return &EligibilityChecker{
		db:              db,
		profileComplete: defaultProfileComplete,
	}
}

// SetProfilePredicate swaps the completeness rule. Used by tests and by
// deployments that delegate the bar to an external profile service.
func (c *EligibilityChecker) SetProfilePredicate(fn ProfileCompleteFunc) {
	c.profileComplete = fn
}

func defaultProfileComplete(u *models.User) (bool, string) {
	if u.IsGuest {
		return false, "Guest accounts cannot enter hackathons. Create a full account first."
	}
	if u.DisplayName == "" || u.Bio == "" {
		return false, "Complete your profile (display name and bio) before entering."
	}
	return true, ""
}

// Check runs every rule for userID against hackathonID. When eligible is
// false, reason carries the first unmet rule; callers must surface it.
func (c *EligibilityChecker) Check(userID uint, hackathonID string) (bool, string, error) {
	var user models.User
	if err := c.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, "Account not found.", nil
		}
		return false, "", err
	}

	// Rule 1: no active lockout against this or a later period.
	if lockedOut(user.LockedUntilPeriod, hackathonID) {
		return false, "You left a registered team and are locked out until " + user.LockedUntilPeriod + ".", nil
	}

	// Rule 2: profile completeness.
	if ok, why := c.profileComplete(&user); !ok {
		return false, why, nil
	}

	// Rule 3: not already on a team this period.
	teamed, err := userHasTeamTx(c.db, userID, hackathonID)
	if err != nil {
		return false, "", err
	}
	if teamed {
		return false, "You already have a team for this hackathon.", nil
	}

	return true, "", nil
}

// lockedOut reports whether a lockout recorded as lockedUntil still
// covers periodID. Period IDs sort lexicographically by time.
func lockedOut(lockedUntil, periodID string) bool {
	return lockedUntil != "" && lockedUntil > periodID
}

// userHasTeamTx reports team membership for the period via query; no
// back-reference is stored on the user row.
func userHasTeamTx(tx *gorm.DB, userID uint, hackathonID string) (bool, error) {
	var count int64
	err := tx.Model(&models.TeamMember{}).
		Joins("JOIN teams ON teams.id = team_members.team_id").
		Where("team_members.user_id = ? AND teams.hackathon_id = ?", userID, hackathonID).
		Count(&count).Error
	return count > 0, err
}
