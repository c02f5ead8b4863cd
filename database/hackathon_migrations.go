// database/hackathon_migrations.go - Hackathon table migrations
package database

import (
	"log"

	"gorm.io/gorm"

	"hackhub/models"
)

// RunHackathonMigrations creates the pool/team/broker/submission tables.
func RunHackathonMigrations(db *gorm.DB) error {
	log.Println("Running hackathon migrations...")

	if err := db.AutoMigrate(
		&models.Team{},
		&models.TeamMember{},
		&models.PoolEntry{},
		&models.Invite{},
		&models.JoinRequest{},
		&models.Submission{},
	); err != nil {
		return err
	}

	if err := createHackathonIndexes(db); err != nil {
		return err
	}

	log.Println("✅ Hackathon migrations completed successfully")
	return nil
}

// createHackathonIndexes covers the hot listing and lookup paths.
func createHackathonIndexes(db *gorm.DB) error {
	log.Println("Creating hackathon indexes...")

	// Pool listing is newest-first per period.
	db.Exec("CREATE INDEX IF NOT EXISTS idx_pool_entries_period_joined ON pool_entries(hackathon_id, joined_at DESC)")

	// One-team-per-user-per-period checks join team_members to teams.
	db.Exec("CREATE INDEX IF NOT EXISTS idx_team_members_user ON team_members(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_teams_period ON teams(hackathon_id)")

	// Pending-proposal listings.
	db.Exec("CREATE INDEX IF NOT EXISTS idx_invites_recipient_pending ON invites(to_user_id, hackathon_id, status)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_invites_team_pending ON invites(team_id, status)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_join_requests_team_pending ON join_requests(team_id, status)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_join_requests_user_pending ON join_requests(from_user_id, hackathon_id, status)")

	// Invite expiry sweep.
	db.Exec("CREATE INDEX IF NOT EXISTS idx_invites_expiry ON invites(status, expires_at)")

	return nil
}
