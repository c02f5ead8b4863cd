package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestChecker(handler http.Handler) (*GitHubRepoChecker, func()) {
	srv := httptest.NewServer(handler)
	checker := &GitHubRepoChecker{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	}
	return checker, srv.Close
}

func repoHandler(t *testing.T, wantPath string, status int, body string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != wantPath {
			t.Errorf("unexpected path %q, want %q", r.URL.Path, wantPath)
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	})
}

func TestGitHubRepoChecker_AcceptsFreshPublicRepo(t *testing.T) {
	notBefore := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	checker, done := newTestChecker(repoHandler(t, "/repos/x/y", 200,
		`{"private": false, "created_at": "2025-06-03T10:00:00Z"}`))
	defer done()

	if err := checker.Check(context.Background(), "https://github.com/x/y", notBefore); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestGitHubRepoChecker_RejectsPrivateRepo(t *testing.T) {
	notBefore := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	checker, done := newTestChecker(repoHandler(t, "/repos/x/y", 200,
		`{"private": true, "created_at": "2025-06-03T10:00:00Z"}`))
	defer done()

	err := checker.Check(context.Background(), "https://github.com/x/y", notBefore)
	var invalid *RepoInvalidError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected RepoInvalidError, got %v", err)
	}
}

func TestGitHubRepoChecker_RejectsRepoPredatingPeriod(t *testing.T) {
	notBefore := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	checker, done := newTestChecker(repoHandler(t, "/repos/x/y", 200,
		`{"private": false, "created_at": "2025-05-20T10:00:00Z"}`))
	defer done()

	err := checker.Check(context.Background(), "https://github.com/x/y", notBefore)
	var invalid *RepoInvalidError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected RepoInvalidError, got %v", err)
	}
}

func TestGitHubRepoChecker_TreatsNotFoundAsInvalid(t *testing.T) {
	notBefore := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	checker, done := newTestChecker(repoHandler(t, "/repos/x/gone", 404, `{"message": "Not Found"}`))
	defer done()

	err := checker.Check(context.Background(), "https://github.com/x/gone", notBefore)
	var invalid *RepoInvalidError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected RepoInvalidError, got %v", err)
	}
}

func TestGitHubRepoChecker_ServerErrorIsNotUserFacing(t *testing.T) {
	notBefore := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	checker, done := newTestChecker(repoHandler(t, "/repos/x/y", 500, `{}`))
	defer done()

	err := checker.Check(context.Background(), "https://github.com/x/y", notBefore)
	if err == nil {
		t.Fatal("expected error")
	}
	var invalid *RepoInvalidError
	if errors.As(err, &invalid) {
		t.Fatalf("a 500 upstream must not surface as a user-facing rejection, got %v", err)
	}
}

func TestSplitRepoURL(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantOwner string
		wantName  string
		wantErr   bool
	}{
		{"plain repo", "https://github.com/x/y", "x", "y", false},
		{"trailing slash", "https://github.com/x/y/", "x", "y", false},
		{"git suffix stripped", "https://github.com/x/y.git", "x", "y", false},
		{"host case insensitive", "https://GitHub.com/x/y", "x", "y", false},
		{"http rejected", "http://github.com/x/y", "", "", true},
		{"other host rejected", "https://gitlab.com/x/y", "", "", true},
		{"missing repo segment", "https://github.com/x", "", "", true},
		{"extra segments", "https://github.com/x/y/tree/main", "", "", true},
		{"empty", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, name, err := splitRepoURL(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("splitRepoURL(%q): expected error", tt.in)
				}
				var invalid *RepoInvalidError
				if !errors.As(err, &invalid) {
					t.Fatalf("splitRepoURL(%q): expected RepoInvalidError, got %v", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("splitRepoURL(%q): %v", tt.in, err)
			}
			if owner != tt.wantOwner || name != tt.wantName {
				t.Fatalf("splitRepoURL(%q) = (%q, %q), want (%q, %q)", tt.in, owner, name, tt.wantOwner, tt.wantName)
			}
		})
	}
}
