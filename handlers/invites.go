// handlers/invites.go - Team-initiated invite endpoints
package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"hackhub/middleware"
	"hackhub/services"
)

// SendInvite invites a participant to the caller's team, creating the
// team if the caller is still teamless.
// POST /api/hackathon/invites
func SendInvite(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req struct {
		ToUserID uint `json:"to_user_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.ToUserID == 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "to_user_id is required"})
	}

	team, invite, err := inviteService.Send(userID, req.ToUserID, services.CurrentPeriodID())
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"team_id": team.ID,
		"invite":  invite,
	})
}

// GetMyInvites lists pending invites addressed to the caller, newest
// first.
// GET /api/hackathon/invites
func GetMyInvites(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	invites, err := inviteService.ListForUser(userID, services.CurrentPeriodID())
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "invites": invites})
}

// AcceptInvite joins the caller to the inviting team.
// POST /api/hackathon/invites/:id/accept
func AcceptInvite(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	inviteID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid invite ID"})
	}

	team, err := inviteService.Accept(uint(inviteID), userID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "team": team})
}

// DeclineInvite declines a pending invite addressed to the caller.
// POST /api/hackathon/invites/:id/decline
func DeclineInvite(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	inviteID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid invite ID"})
	}

	if err := inviteService.Decline(uint(inviteID), userID); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}
