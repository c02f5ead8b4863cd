// handlers/admin/users.go - User administration
package admin

import (
	"github.com/gofiber/fiber/v2"

	"hackhub/database"
	"hackhub/models"
)

// GetUsers returns all users with pagination
func GetUsers(c *fiber.Ctx) error {
	db := database.GetDB()

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	search := c.Query("search", "")

	offset := (page - 1) * limit

	var users []models.User
	var total int64

	query := db.Model(&models.User{})
	if search != "" {
		query = query.Where("username LIKE ? OR email LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	query.Count(&total)

	if err := query.Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to fetch users",
		})
	}

	return c.JSON(fiber.Map{
		"users": users,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetUser returns a single user by ID
func GetUser(c *fiber.Ctx) error {
	db := database.GetDB()
	id := c.Params("id")

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	return c.JSON(user)
}

// BanUser flags an account as banned; banned users cannot log in.
func BanUser(c *fiber.Ctx) error {
	db := database.GetDB()
	id := c.Params("id")

	res := db.Model(&models.User{}).Where("id = ?", id).Update("is_banned", true)
	if res.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to ban user"})
	}
	if res.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// UnbanUser lifts a ban.
func UnbanUser(c *fiber.Ctx) error {
	db := database.GetDB()
	id := c.Params("id")

	res := db.Model(&models.User{}).Where("id = ?", id).Update("is_banned", false)
	if res.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to unban user"})
	}
	if res.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(fiber.Map{"success": true})
}
