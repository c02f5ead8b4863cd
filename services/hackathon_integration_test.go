package services

// Integration tests are opt-in and require TEST_DATABASE_URL pointing at
// a disposable PostgreSQL database. Without it the suite skips.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hackhub/models"
)

type okRepoChecker struct{}

func (okRepoChecker) Check(ctx context.Context, repoURL string, notBefore time.Time) error {
	return nil
}

func mustOpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.PoolEntry{},
		&models.Invite{},
		&models.JoinRequest{},
		&models.Submission{},
	); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	if err := db.Exec("TRUNCATE users, teams, team_members, pool_entries, invites, join_requests, submissions RESTART IDENTITY CASCADE").Error; err != nil {
		t.Fatalf("truncate test database: %v", err)
	}

	return db
}

func mustCreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	email := fmt.Sprintf("%s@example.test", username)
	user := &models.User{
		Username:    username,
		Email:       &email,
		Password:    "x",
		DisplayName: username,
		Bio:         "hacks on things",
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func memberCount(t *testing.T, db *gorm.DB, teamID uint) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&models.TeamMember{}).Where("team_id = ?", teamID).Count(&count).Error; err != nil {
		t.Fatalf("count members: %v", err)
	}
	return count
}

// buildFullTeam forms a three-member team via the invite flow and
// returns it.
func buildFullTeam(t *testing.T, db *gorm.DB, period string, a, b, c *models.User) *models.Team {
	t.Helper()

	invites := NewInviteService(db)

	team, inv1, err := invites.Send(a.ID, b.ID, period)
	if err != nil {
		t.Fatalf("send invite to %s: %v", b.Username, err)
	}
	if _, err := invites.Accept(inv1.ID, b.ID); err != nil {
		t.Fatalf("accept invite as %s: %v", b.Username, err)
	}

	_, inv2, err := invites.Send(a.ID, c.ID, period)
	if err != nil {
		t.Fatalf("send invite to %s: %v", c.Username, err)
	}
	if _, err := invites.Accept(inv2.ID, c.ID); err != nil {
		t.Fatalf("accept invite as %s: %v", c.Username, err)
	}

	if got := memberCount(t, db, team.ID); got != 3 {
		t.Fatalf("expected full team, got %d members", got)
	}
	return team
}

func TestPoolJoinIsIdempotentAndOrderedNewestFirst(t *testing.T) {
	db := mustOpenTestDB(t)
	period := CurrentPeriodID()

	pool := NewPoolService(db, NewEligibilityChecker(db))

	first := mustCreateUser(t, db, "first")
	second := mustCreateUser(t, db, "second")

	if err := pool.Join(first.ID, period); err != nil {
		t.Fatalf("join: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := pool.Join(second.ID, period); err != nil {
		t.Fatalf("join: %v", err)
	}

	// Joining twice is a no-op success.
	if err := pool.Join(first.ID, period); err != nil {
		t.Fatalf("second join should be a no-op, got %v", err)
	}

	entries, err := pool.List(period)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 pool entries, got %d", len(entries))
	}
	if entries[0].UserID != second.ID || entries[1].UserID != first.ID {
		t.Fatalf("pool not ordered newest-first: %v, %v", entries[0].UserID, entries[1].UserID)
	}

	// Leaving twice is fine too.
	if err := pool.Leave(first.ID, period); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if err := pool.Leave(first.ID, period); err != nil {
		t.Fatalf("repeat leave should be a no-op, got %v", err)
	}
}

func TestPoolJoinRejectsIncompleteProfile(t *testing.T) {
	db := mustOpenTestDB(t)
	period := CurrentPeriodID()

	pool := NewPoolService(db, NewEligibilityChecker(db))

	bare := mustCreateUser(t, db, "bare")
	if err := db.Model(bare).Updates(map[string]interface{}{"display_name": "", "bio": ""}).Error; err != nil {
		t.Fatalf("strip profile: %v", err)
	}

	err := pool.Join(bare.ID, period)
	var ineligible *IneligibleError
	if !errors.As(err, &ineligible) {
		t.Fatalf("expected IneligibleError, got %v", err)
	}
	if ineligible.Reason == "" {
		t.Fatal("IneligibleError must carry a reason")
	}
}

func TestInviteCreatesTeamAndAcceptMerges(t *testing.T) {
	db := mustOpenTestDB(t)
	period := CurrentPeriodID()

	pool := NewPoolService(db, NewEligibilityChecker(db))
	invites := NewInviteService(db)

	a := mustCreateUser(t, db, "alice")
	b := mustCreateUser(t, db, "bob")

	if err := pool.Join(a.ID, period); err != nil {
		t.Fatalf("pool join: %v", err)
	}

	// B invites A while teamless: the team forms with B as sole member.
	team, invite, err := invites.Send(b.ID, a.ID, period)
	if err != nil {
		t.Fatalf("send invite: %v", err)
	}
	if team.CreatedBy != b.ID {
		t.Fatalf("team creator = %d, want %d", team.CreatedBy, b.ID)
	}
	if got := memberCount(t, db, team.ID); got != 1 {
		t.Fatalf("forming team has %d members, want 1", got)
	}

	// Duplicate pending invite to the same recipient is rejected.
	if _, _, err := invites.Send(b.ID, a.ID, period); !errors.Is(err, ErrInviteAlreadyPending) {
		t.Fatalf("expected ErrInviteAlreadyPending, got %v", err)
	}

	merged, err := invites.Accept(invite.ID, a.ID)
	if err != nil {
		t.Fatalf("accept invite: %v", err)
	}
	if len(merged.Members) != 2 {
		t.Fatalf("team has %d members after accept, want 2", len(merged.Members))
	}

	// Membership removed A from the pool.
	inPool, err := pool.Contains(a.ID, period)
	if err != nil {
		t.Fatalf("pool contains: %v", err)
	}
	if inPool {
		t.Fatal("accepting an invite must remove the joiner from the pool")
	}

	// The invite is terminal history now.
	if _, err := invites.Accept(invite.ID, a.ID); !errors.Is(err, ErrInviteNotPending) {
		t.Fatalf("expected ErrInviteNotPending on re-accept, got %v", err)
	}
}

func TestJoinRequestFlowAndOnePendingPolicy(t *testing.T) {
	db := mustOpenTestDB(t)
	period := CurrentPeriodID()

	invites := NewInviteService(db)
	requests := NewRequestService(db)

	a := mustCreateUser(t, db, "alice")
	b := mustCreateUser(t, db, "bob")
	c := mustCreateUser(t, db, "carol")
	d := mustCreateUser(t, db, "dave")

	team, inv, err := invites.Send(a.ID, b.ID, period)
	if err != nil {
		t.Fatalf("send invite: %v", err)
	}
	if _, err := invites.Accept(inv.ID, b.ID); err != nil {
		t.Fatalf("accept invite: %v", err)
	}

	req, err := requests.Send(c.ID, team.ID)
	if err != nil {
		t.Fatalf("send request: %v", err)
	}

	// One pending request at a time; another team doesn't matter because
	// there is only one here, so a duplicate against the same team
	// exercises the policy.
	if _, err := requests.Send(c.ID, team.ID); !errors.Is(err, ErrRequestAlreadyPending) {
		t.Fatalf("expected ErrRequestAlreadyPending, got %v", err)
	}

	// An outsider cannot accept.
	if _, err := requests.Accept(req.ID, d.ID); !errors.Is(err, ErrNotTeamMember) {
		t.Fatalf("expected ErrNotTeamMember for outsider accept, got %v", err)
	}

	// Any current member may: B accepts, not just the creator.
	merged, err := requests.Accept(req.ID, b.ID)
	if err != nil {
		t.Fatalf("accept request: %v", err)
	}
	if len(merged.Members) != 3 {
		t.Fatalf("team has %d members, want 3", len(merged.Members))
	}

	// A full team rejects further requests.
	if _, err := requests.Send(d.ID, team.ID); !errors.Is(err, ErrTeamFull) {
		t.Fatalf("expected ErrTeamFull, got %v", err)
	}
}

func TestAcceptIntoFullTeamFailsWithoutMutation(t *testing.T) {
	db := mustOpenTestDB(t)
	period := CurrentPeriodID()

	invites := NewInviteService(db)

	a := mustCreateUser(t, db, "alice")
	b := mustCreateUser(t, db, "bob")
	c := mustCreateUser(t, db, "carol")
	d := mustCreateUser(t, db, "dave")

	// Invite D before the team fills, then fill it.
	team, invD, err := invites.Send(a.ID, d.ID, period)
	if err != nil {
		t.Fatalf("send invite: %v", err)
	}
	_, invB, err := invites.Send(a.ID, b.ID, period)
	if err != nil {
		t.Fatalf("send invite: %v", err)
	}
	_, invC, err := invites.Send(a.ID, c.ID, period)
	if err != nil {
		t.Fatalf("send invite: %v", err)
	}
	if _, err := invites.Accept(invB.ID, b.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := invites.Accept(invC.ID, c.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if _, err := invites.Accept(invD.ID, d.ID); !errors.Is(err, ErrTeamFull) {
		t.Fatalf("expected ErrTeamFull, got %v", err)
	}
	if got := memberCount(t, db, team.ID); got != 3 {
		t.Fatalf("failed accept must not mutate: %d members", got)
	}

	// The failed accept rolled back, so the invite is still pending and
	// D remains teamless.
	var stored models.Invite
	if err := db.First(&stored, invD.ID).Error; err != nil {
		t.Fatalf("load invite: %v", err)
	}
	if stored.Status != models.InviteStatusPending {
		t.Fatalf("invite status = %s, want pending", stored.Status)
	}
}

func TestConcurrentAcceptsFillLastSlotExactlyOnce(t *testing.T) {
	db := mustOpenTestDB(t)
	period := CurrentPeriodID()

	invites := NewInviteService(db)

	a := mustCreateUser(t, db, "alice")
	b := mustCreateUser(t, db, "bob")
	c := mustCreateUser(t, db, "carol")
	d := mustCreateUser(t, db, "dave")

	team, invB, err := invites.Send(a.ID, b.ID, period)
	if err != nil {
		t.Fatalf("send invite: %v", err)
	}
	if _, err := invites.Accept(invB.ID, b.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	_, invC, err := invites.Send(a.ID, c.ID, period)
	if err != nil {
		t.Fatalf("send invite: %v", err)
	}
	_, invD, err := invites.Send(a.ID, d.ID, period)
	if err != nil {
		t.Fatalf("send invite: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	accepts := []struct {
		inviteID uint
		userID   uint
	}{
		{invC.ID, c.ID},
		{invD.ID, d.ID},
	}
	for i, acc := range accepts {
		wg.Add(1)
		go func(i int, inviteID, userID uint) {
			defer wg.Done()
			_, results[i] = invites.Accept(inviteID, userID)
		}(i, acc.inviteID, acc.userID)
	}
	wg.Wait()

	var wins, fulls int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrTeamFull):
			fulls++
		default:
			t.Fatalf("unexpected accept error: %v", err)
		}
	}
	if wins != 1 || fulls != 1 {
		t.Fatalf("want exactly one winner and one ErrTeamFull, got %d/%d", wins, fulls)
	}
	if got := memberCount(t, db, team.ID); got != 3 {
		t.Fatalf("team has %d members, want 3", got)
	}
}

func TestConcurrentAcceptsAcrossTeamsJoinExactlyOne(t *testing.T) {
	db := mustOpenTestDB(t)
	period := CurrentPeriodID()

	invites := NewInviteService(db)

	x := mustCreateUser(t, db, "xavier")
	y := mustCreateUser(t, db, "yusuf")
	u := mustCreateUser(t, db, "uma")

	// Two separate teams form, each inviting the same person.
	_, invX, err := invites.Send(x.ID, u.ID, period)
	if err != nil {
		t.Fatalf("send invite: %v", err)
	}
	_, invY, err := invites.Send(y.ID, u.ID, period)
	if err != nil {
		t.Fatalf("send invite: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, inviteID := range []uint{invX.ID, invY.ID} {
		wg.Add(1)
		go func(i int, inviteID uint) {
			defer wg.Done()
			_, results[i] = invites.Accept(inviteID, u.ID)
		}(i, inviteID)
	}
	wg.Wait()

	var wins, teamed int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrAlreadyTeamed), errors.Is(err, ErrInviteNotPending):
			// The loser fails either on the teamless revalidation or, if
			// the winner's commit already swept its invite, on the status
			// check.
			teamed++
		default:
			t.Fatalf("unexpected accept error: %v", err)
		}
	}
	if wins != 1 || teamed != 1 {
		t.Fatalf("want exactly one winner, got %d wins and %d rejections", wins, teamed)
	}

	var memberships int64
	if err := db.Model(&models.TeamMember{}).Where("user_id = ?", u.ID).Count(&memberships).Error; err != nil {
		t.Fatalf("count memberships: %v", err)
	}
	if memberships != 1 {
		t.Fatalf("user belongs to %d teams, want 1", memberships)
	}
}

func TestLeaveWithoutSubmissionIsPenaltyFree(t *testing.T) {
	db := mustOpenTestDB(t)
	period := CurrentPeriodID()

	invites := NewInviteService(db)
	teams := NewTeamService(db)

	a := mustCreateUser(t, db, "alice")
	b := mustCreateUser(t, db, "bob")

	team, inv, err := invites.Send(a.ID, b.ID, period)
	if err != nil {
		t.Fatalf("send invite: %v", err)
	}
	if _, err := invites.Accept(inv.ID, b.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	lockedOut, err := teams.Leave(b.ID, team.ID)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if lockedOut {
		t.Fatal("no submission registered, so leaving must not lock out")
	}
	if got := memberCount(t, db, team.ID); got != 1 {
		t.Fatalf("team has %d members, want 1", got)
	}

	// Last member leaving dissolves the team.
	if _, err := teams.Leave(a.ID, team.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if _, err := teams.GetTeam(team.ID); !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("expected dissolved team, got %v", err)
	}
}

func TestLeaveAfterRegistrationDisqualifiesAndLocksOut(t *testing.T) {
	db := mustOpenTestDB(t)
	period := CurrentPeriodID()

	teams := NewTeamService(db)
	pool := NewPoolService(db, NewEligibilityChecker(db))
	subs := NewSubmissionService(db, okRepoChecker{})

	a := mustCreateUser(t, db, "alice")
	b := mustCreateUser(t, db, "bob")
	c := mustCreateUser(t, db, "carol")
	team := buildFullTeam(t, db, period, a, b, c)

	if _, err := subs.Register(context.Background(), a.ID, period, "https://github.com/x/y"); err != nil {
		t.Fatalf("register: %v", err)
	}

	lockedOut, err := teams.Leave(b.ID, team.ID)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if !lockedOut {
		t.Fatal("leaving a registered team must lock the leaver out")
	}

	sub, err := subs.ForTeam(team.ID, period)
	if err != nil {
		t.Fatalf("load submission: %v", err)
	}
	if sub == nil || !sub.Disqualified {
		t.Fatalf("submission not disqualified: %+v", sub)
	}
	if sub.DisqualifiedReason == "" {
		t.Fatal("disqualification must carry a reason")
	}

	// The leaver is barred from the pool for the rest of the period.
	err = pool.Join(b.ID, period)
	var ineligible *IneligibleError
	if !errors.As(err, &ineligible) {
		t.Fatalf("expected IneligibleError on pool re-join, got %v", err)
	}

	// And the lockout names the next period.
	var leaver models.User
	if err := db.First(&leaver, b.ID).Error; err != nil {
		t.Fatalf("load leaver: %v", err)
	}
	next, err := NextPeriodID(period)
	if err != nil {
		t.Fatalf("next period: %v", err)
	}
	if leaver.LockedUntilPeriod != next {
		t.Fatalf("locked_until_period = %q, want %q", leaver.LockedUntilPeriod, next)
	}

	// Remaining members keep their team and may re-register.
	if got := memberCount(t, db, team.ID); got != 2 {
		t.Fatalf("team has %d members, want 2", got)
	}

	// The lockout also blocks taking a team slot through an invite.
	invites := NewInviteService(db)
	_, inv, err := invites.Send(a.ID, b.ID, period)
	if err != nil {
		t.Fatalf("re-invite leaver: %v", err)
	}
	if _, err := invites.Accept(inv.ID, b.ID); !errors.As(err, &ineligible) {
		t.Fatalf("expected IneligibleError on accept while locked out, got %v", err)
	}
}

func TestRegisterRequiresFullTeam(t *testing.T) {
	db := mustOpenTestDB(t)
	period := CurrentPeriodID()

	invites := NewInviteService(db)
	subs := NewSubmissionService(db, okRepoChecker{})

	a := mustCreateUser(t, db, "alice")
	b := mustCreateUser(t, db, "bob")

	_, inv, err := invites.Send(a.ID, b.ID, period)
	if err != nil {
		t.Fatalf("send invite: %v", err)
	}
	if _, err := invites.Accept(inv.ID, b.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if _, err := subs.Register(context.Background(), a.ID, period, "https://github.com/x/y"); !errors.Is(err, ErrNotFullTeam) {
		t.Fatalf("expected ErrNotFullTeam, got %v", err)
	}
}

func TestSubmitLocksAndBlocksFurtherMutation(t *testing.T) {
	db := mustOpenTestDB(t)
	period := CurrentPeriodID()

	subs := NewSubmissionService(db, okRepoChecker{})

	a := mustCreateUser(t, db, "alice")
	b := mustCreateUser(t, db, "bob")
	c := mustCreateUser(t, db, "carol")
	buildFullTeam(t, db, period, a, b, c)

	if _, err := subs.Register(context.Background(), a.ID, period, "https://github.com/x/y"); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Re-registering before the lock overwrites the URL in place.
	again, err := subs.Register(context.Background(), b.ID, period, "https://github.com/x/z")
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if again.RepoURL != "https://github.com/x/z" {
		t.Fatalf("repo_url = %q, want overwrite", again.RepoURL)
	}

	locked, err := subs.Submit(a.ID, period)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if locked.SubmittedAt == nil {
		t.Fatal("submitted_at not set")
	}
	firstSubmit := *locked.SubmittedAt

	// Second submit fails and leaves the timestamp untouched.
	if _, err := subs.Submit(b.ID, period); !errors.Is(err, ErrAlreadyLocked) {
		t.Fatalf("expected ErrAlreadyLocked, got %v", err)
	}
	var stored models.Submission
	if err := db.First(&stored, locked.ID).Error; err != nil {
		t.Fatalf("load submission: %v", err)
	}
	if stored.SubmittedAt == nil || !stored.SubmittedAt.Equal(firstSubmit) {
		t.Fatalf("submitted_at changed: %v vs %v", stored.SubmittedAt, firstSubmit)
	}

	// Registration is rejected after the lock too.
	if _, err := subs.Register(context.Background(), a.ID, period, "https://github.com/x/w"); !errors.Is(err, ErrAlreadyLocked) {
		t.Fatalf("expected ErrAlreadyLocked, got %v", err)
	}
}

func TestSubmitWithoutRegistrationFails(t *testing.T) {
	db := mustOpenTestDB(t)
	period := CurrentPeriodID()

	subs := NewSubmissionService(db, okRepoChecker{})

	a := mustCreateUser(t, db, "alice")
	b := mustCreateUser(t, db, "bob")
	c := mustCreateUser(t, db, "carol")
	buildFullTeam(t, db, period, a, b, c)

	if _, err := subs.Submit(a.ID, period); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
}

func TestDisqualifyIsTerminalAndIdempotent(t *testing.T) {
	db := mustOpenTestDB(t)
	period := CurrentPeriodID()

	subs := NewSubmissionService(db, okRepoChecker{})

	a := mustCreateUser(t, db, "alice")
	b := mustCreateUser(t, db, "bob")
	c := mustCreateUser(t, db, "carol")
	team := buildFullTeam(t, db, period, a, b, c)

	if _, err := subs.Register(context.Background(), a.ID, period, "https://github.com/x/y"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := subs.Disqualify(team.ID, period, "rule violation"); err != nil {
		t.Fatalf("disqualify: %v", err)
	}

	// Second disqualification changes nothing.
	if err := subs.Disqualify(team.ID, period, "again"); !errors.Is(err, ErrAlreadyLocked) {
		t.Fatalf("expected ErrAlreadyLocked, got %v", err)
	}
	sub, err := subs.ForTeam(team.ID, period)
	if err != nil {
		t.Fatalf("load submission: %v", err)
	}
	if sub.DisqualifiedReason != "rule violation" {
		t.Fatalf("reason overwritten: %q", sub.DisqualifiedReason)
	}

	// Register and submit stay rejected.
	if _, err := subs.Register(context.Background(), a.ID, period, "https://github.com/x/z"); !errors.Is(err, ErrAlreadyLocked) {
		t.Fatalf("expected ErrAlreadyLocked on register, got %v", err)
	}
	if _, err := subs.Submit(a.ID, period); !errors.Is(err, ErrAlreadyLocked) {
		t.Fatalf("expected ErrAlreadyLocked on submit, got %v", err)
	}
}

func TestExpiredInviteCannotBeAccepted(t *testing.T) {
	db := mustOpenTestDB(t)
	period := CurrentPeriodID()

	invites := NewInviteService(db)

	a := mustCreateUser(t, db, "alice")
	b := mustCreateUser(t, db, "bob")

	_, inv, err := invites.Send(a.ID, b.ID, period)
	if err != nil {
		t.Fatalf("send invite: %v", err)
	}

	past := time.Now().UTC().Add(-time.Hour)
	if err := db.Model(&models.Invite{}).Where("id = ?", inv.ID).Update("expires_at", past).Error; err != nil {
		t.Fatalf("age invite: %v", err)
	}

	if _, err := invites.Accept(inv.ID, b.ID); !errors.Is(err, ErrInviteExpired) {
		t.Fatalf("expected ErrInviteExpired, got %v", err)
	}

	// The sweep flips it to expired.
	n, err := invites.ExpirePending(time.Now().UTC())
	if err != nil {
		t.Fatalf("expire pending: %v", err)
	}
	if n != 1 {
		t.Fatalf("expired %d invites, want 1", n)
	}
}
