// handlers/teams.go - Team endpoints
package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"hackhub/middleware"
	"hackhub/services"
)

// GetMyTeam returns the caller's team for the current period along with
// its pending join requests and submission state.
// GET /api/hackathon/team
func GetMyTeam(c *fiber.Ctx) error {
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
		return c.JSON(fiber.Map{"success": true, "team": nil})
	}

	requests, err := requestService.ListForTeam(team.ID, userID)
	if err != nil {
		return serviceError(c, err)
	}

	submission, err := submissionService.ForTeam(team.ID, periodID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"team":       team,
		"requests":   requests,
		"submission": submission,
	})
}

// GetTeam returns any team with its members.
// GET /api/hackathon/teams/:id
func GetTeam(c *fiber.Ctx) error {
	teamID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid team ID"})
	}

	team, err := teamService.GetTeam(uint(teamID))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "team": team})
}

// UpdateTeam sets the team's name and logo. Any current member may.
// PUT /api/hackathon/teams/:id
func UpdateTeam(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	teamID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid team ID"})
	}

	var req struct {
		Name    string `json:"name"`
		LogoURL string `json:"logo_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	if err := teamService.UpdateInfo(userID, uint(teamID), req.Name, req.LogoURL); err != nil {
		return serviceError(c, err)
	}

	team, err := teamService.GetTeam(uint(teamID))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "team": team})
}

// LeaveTeam removes the caller from their team. The response reports
// whether the abandonment penalty applied.
// POST /api/hackathon/teams/:id/leave
func LeaveTeam(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	teamID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid team ID"})
	}

	lockedOut, err := teamService.Leave(userID, uint(teamID))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":                  true,
		"locked_until_next_period": lockedOut,
	})
}
