// handlers/handlers.go - Handler wiring and shared error mapping
package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"hackhub/database"
	"hackhub/services"
)

var (
	eligibilityChecker *services.EligibilityChecker
	poolService        *services.PoolService
	teamService        *services.TeamService
	inviteService      *services.InviteService
	requestService     *services.RequestService
	submissionService  *services.SubmissionService
)

// InitHackathonHandlers wires the hackathon services. Must run after
// database.InitDB.
func InitHackathonHandlers() {
	db := database.GetDB()
	if db == nil {
		panic("Database not initialized before InitHackathonHandlers")
	}

	eligibilityChecker = services.NewEligibilityChecker(db)
	poolService = services.NewPoolService(db, eligibilityChecker)
	teamService = services.NewTeamService(db)
	inviteService = services.NewInviteService(db)
	requestService = services.NewRequestService(db)
	submissionService = services.NewSubmissionService(db, services.NewGitHubRepoChecker())
}

// serviceError translates the service error taxonomy into an HTTP
// response. Everything in the taxonomy is user-facing; anything else is
// logged and reported as a 500.
func serviceError(c *fiber.Ctx, err error) error {
	var ineligible *services.IneligibleError
	var repoInvalid *services.RepoInvalidError

	status := 0
	switch {
	case errors.As(err, &ineligible):
		status = fiber.StatusForbidden
	case errors.As(err, &repoInvalid):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrInviteNotFound),
		errors.Is(err, services.ErrRequestNotFound),
		errors.Is(err, services.ErrNotRegistered):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrNotTeamMember):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrSelfInvite):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrTeamFull),
		errors.Is(err, services.ErrAlreadyTeamed),
		errors.Is(err, services.ErrInviteNotPending),
		errors.Is(err, services.ErrInviteExpired),
		errors.Is(err, services.ErrInviteAlreadyPending),
		errors.Is(err, services.ErrRequestNotPending),
		errors.Is(err, services.ErrRequestAlreadyPending),
		errors.Is(err, services.ErrNotFullTeam),
		errors.Is(err, services.ErrAlreadyLocked),
		errors.Is(err, services.ErrCutoffPassed):
		status = fiber.StatusConflict
	}

	if status == 0 {
		log.Printf("Internal error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(500).JSON(fiber.Map{
			"success": false,
			"error":   "Something went wrong. Please try again.",
		})
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
