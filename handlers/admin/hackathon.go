// handlers/admin/hackathon.go - Moderation endpoints
package admin

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"hackhub/database"
	"hackhub/models"
	"hackhub/services"
)

// DisqualifyTeam disqualifies a team's submission for the current
// period with a moderation reason.
// POST /api/admin/hackathon/teams/:id/disqualify
func DisqualifyTeam(c *fiber.Ctx) error {
	teamID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid team ID"})
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil || req.Reason == "" {
		return c.Status(400).JSON(fiber.Map{"error": "A reason is required"})
	}

	svc := services.NewSubmissionService(database.GetDB(), services.NewGitHubRepoChecker())
	err = svc.Disqualify(uint(teamID), services.CurrentPeriodID(), req.Reason)
	switch {
	case errors.Is(err, services.ErrNotRegistered):
		return c.Status(404).JSON(fiber.Map{"error": "This team has no registered submission"})
	case errors.Is(err, services.ErrAlreadyLocked):
		return c.Status(409).JSON(fiber.Map{"error": "This submission is already disqualified"})
	case err != nil:
		return c.Status(500).JSON(fiber.Map{"error": "Failed to disqualify submission"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// AwardWin bumps a team's win counter after judging concludes.
// POST /api/admin/hackathon/teams/:id/win
func AwardWin(c *fiber.Ctx) error {
	teamID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid team ID"})
	}

	svc := services.NewTeamService(database.GetDB())
	if err := svc.AddWin(uint(teamID)); err != nil {
		if errors.Is(err, services.ErrTeamNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Team not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to record win"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// ListSubmissions returns every submission for a period.
// GET /api/admin/hackathon/submissions?period=2025-06
func ListSubmissions(c *fiber.Ctx) error {
	periodID := c.Query("period", services.CurrentPeriodID())

	db := database.GetDB()
	var subs []models.Submission
	if err := db.Where("hackathon_id = ?", periodID).
		Preload("Team").
		Preload("Team.Members").
		Preload("Team.Members.User").
		Order("registered_at DESC").
		Find(&subs).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch submissions"})
	}

	return c.JSON(fiber.Map{
		"period":      periodID,
		"submissions": subs,
	})
}

// ClearLockout lifts a user's abandonment lockout early.
// POST /api/admin/hackathon/users/:id/clear-lockout
func ClearLockout(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	db := database.GetDB()
	res := db.Model(&models.User{}).Where("id = ?", uint(userID)).
		Update("locked_until_period", "")
	if res.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to clear lockout"})
	}
	if res.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(fiber.Map{"success": true})
}
