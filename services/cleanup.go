// services/cleanup.go - Background maintenance
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// CleanupService expires stale pending invites on a schedule. Expiry is
// cosmetic hygiene for listings; acceptance re-checks the deadline on
// its own, so nothing correctness-critical rides on this loop.
type CleanupService struct {
	invites *InviteService
	sched   gocron.Scheduler
}

var cleanupService *CleanupService

// InitCleanupService starts the singleton cleanup scheduler.
func InitCleanupService(db *gorm.DB) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create cleanup scheduler: %v", err)
	}

	svc := &CleanupService{
		invites: NewInviteService(db),
		sched:   sched,
	}

	if _, err := sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(svc.ExpireInvites),
	); err != nil {
		log.Fatalf("Failed to schedule invite expiry job: %v", err)
	}

	sched.Start()
	cleanupService = svc
	log.Println("✅ Cleanup service started (invite expiry every hour)")
}

// GetCleanupService returns the initialized cleanup service.
func GetCleanupService() *CleanupService {
	return cleanupService
}

// Stop shuts the scheduler down.
func (s *CleanupService) Stop() {
	if err := s.sched.Shutdown(); err != nil {
		log.Printf("Cleanup scheduler shutdown: %v", err)
	}
}

// ExpireInvites marks pending invites past their deadline as expired.
func (s *CleanupService) ExpireInvites() {
	n, err := s.invites.ExpirePending(time.Now().UTC())
	if err != nil {
		log.Printf("Error expiring invites: %v", err)
		return
	}
	if n > 0 {
		log.Printf("✅ Expired %d stale invites", n)
	}
}
