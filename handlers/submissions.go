// handlers/submissions.go - Submission registrar endpoints
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"hackhub/middleware"
	"hackhub/services"
)

// RegisterSubmission registers (or replaces) the caller's team repo for
// the current period. The repository must be public and created during
// the period.
// POST /api/hackathon/submission/register
func RegisterSubmission(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req struct {
		RepoURL string `json:"repo_url"`
	}
	if err := c.BodyParser(&req); err != nil || req.RepoURL == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "repo_url is required"})
	}

	sub, err := submissionService.Register(c.Context(), userID, services.CurrentPeriodID(), req.RepoURL)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "submission": sub})
}

// SubmitSubmission locks the team's submission. Irreversible.
// POST /api/hackathon/submission/submit
func SubmitSubmission(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	sub, err := submissionService.Submit(userID, services.CurrentPeriodID())
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "submission": sub})
}

// GetMySubmission returns the caller's team submission, if any.
// GET /api/hackathon/submission
func GetMySubmission(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	periodID := services.CurrentPeriodID()
	team, err := teamService.TeamForUser(userID, periodID)
	if err != nil {
		return serviceError(c, err)
	}
	if team == nil {
		return c.JSON(fiber.Map{"success": true, "submission": nil})
	}

	sub, err := submissionService.ForTeam(team.ID, periodID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "submission": sub})
}
