// handlers/hackathon.go - Pool and discovery endpoints
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"hackhub/middleware"
	"hackhub/services"
)

// GetCurrentHackathon describes the active period and the caller's
// standing in it.
// GET /api/hackathon
func GetCurrentHackathon(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	periodID := services.CurrentPeriodID()
	cutoff, err := services.PeriodCutoff(periodID)
	if err != nil {
		return serviceError(c, err)
	}

	eligible, reason, err := eligibilityChecker.Check(userID, periodID)
	if err != nil {
		return serviceError(c, err)
	}

	inPool, err := poolService.Contains(userID, periodID)
	if err != nil {
		return serviceError(c, err)
	}

	team, err := teamService.TeamForUser(userID, periodID)
	if err != nil {
		return serviceError(c, err)
	}

	result := fiber.Map{
		"success":   true,
		"hackathon": periodID,
		"cutoff_at": cutoff,
		"eligible":  eligible,
		"in_pool":   inPool,
		"has_team":  team != nil,
	}
	if !eligible {
		result["ineligible_reason"] = reason
	}
	if team != nil {
		result["team"] = team
	}
	return c.JSON(result)
}

// JoinPool opts the caller into the looking-for-team pool.
// POST /api/hackathon/pool/join
func JoinPool(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	if err := poolService.Join(userID, services.CurrentPeriodID()); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// LeavePool removes the caller from the pool; always succeeds.
// POST /api/hackathon/pool/leave
func LeavePool(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	if err := poolService.Leave(userID, services.CurrentPeriodID()); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// GetPool lists everyone looking for a team, newest first.
// GET /api/hackathon/pool
func GetPool(c *fiber.Ctx) error {
	entries, err := poolService.List(services.CurrentPeriodID())
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"pool":    entries,
	})
}

// GetOpenTeams lists teams with a free slot, newest first.
// GET /api/hackathon/teams/open
func GetOpenTeams(c *fiber.Ctx) error {
	teams, err := teamService.OpenTeams(services.CurrentPeriodID())
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"teams":   teams,
	})
}
