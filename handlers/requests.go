// handlers/requests.go - Join request endpoints
package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"hackhub/middleware"
	"hackhub/services"
)

// SendJoinRequest asks a team with an open slot to take the caller.
// POST /api/hackathon/requests
func SendJoinRequest(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req struct {
		TeamID uint `json:"team_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.TeamID == 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "team_id is required"})
	}

	request, err := requestService.Send(userID, req.TeamID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "request": request})
}

// GetMyJoinRequest returns the caller's outstanding request, if any.
// GET /api/hackathon/requests/mine
func GetMyJoinRequest(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	request, err := requestService.PendingForUser(userID, services.CurrentPeriodID())
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "request": request})
}

// GetTeamRequests lists a team's pending requests, newest first.
// Members only.
// GET /api/hackathon/teams/:id/requests
func GetTeamRequests(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	teamID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid team ID"})
	}

	requests, err := requestService.ListForTeam(uint(teamID), userID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "requests": requests})
}

// AcceptJoinRequest merges the requester into the caller's team.
// POST /api/hackathon/requests/:id/accept
func AcceptJoinRequest(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	requestID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request ID"})
	}

	team, err := requestService.Accept(uint(requestID), userID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "team": team})
}

// DeclineJoinRequest declines a pending request. Team members decline
// incoming requests; the requester may call it to withdraw their own.
// POST /api/hackathon/requests/:id/decline
func DeclineJoinRequest(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	requestID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request ID"})
	}

	if err := requestService.Decline(uint(requestID), userID); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}
