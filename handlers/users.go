// handlers/users.go - Profile endpoints
package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"hackhub/database"
	"hackhub/middleware"
	"hackhub/models"
)

// GetCurrentUser returns the authenticated user's own record, including
// whether their profile clears the hackathon bar.
// GET /api/users/me
func GetCurrentUser(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "User not found"})
	}

	return c.JSON(fiber.Map{
		"success":          true,
		"user":             user,
		"profile_complete": user.ProfileComplete(),
	})
}

// UpdateCurrentUser edits the profile fields the completeness check
// looks at.
// PUT /api/users/me
func UpdateCurrentUser(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req struct {
		DisplayName string `json:"display_name"`
		Bio         string `json:"bio"`
		Avatar      string `json:"avatar"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	db := database.GetDB()
	if err := db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"display_name": req.DisplayName,
		"bio":          req.Bio,
		"avatar":       req.Avatar,
		"updated_at":   time.Now(),
	}).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to update profile"})
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load profile"})
	}

	return c.JSON(fiber.Map{
		"success":          true,
		"user":             user,
		"profile_complete": user.ProfileComplete(),
	})
}

// GetUserProfile returns another user's public profile.
// GET /api/users/:id
func GetUserProfile(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid user ID"})
	}

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, uint(id)).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "User not found"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":           user.ID,
			"username":     user.Username,
			"display_name": user.DisplayName,
			"avatar":       user.Avatar,
			"bio":          user.Bio,
		},
	})
}
