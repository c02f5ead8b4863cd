// services/repocheck.go - External repository verification
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"hackhub/utils"
)

// RepoChecker verifies that a submission's repository is publicly
// visible and was created on or after notBefore. Failures surface as
// *RepoInvalidError; anything else is a transport problem.
type RepoChecker interface {
	Check(ctx context.Context, repoURL string, notBefore time.Time) error
}

// GitHubRepoChecker checks repositories against the GitHub REST API.
type GitHubRepoChecker struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
}

func NewGitHubRepoChecker() *GitHubRepoChecker {
	return &GitHubRepoChecker{
		BaseURL:    "https://api.github.com",
		HTTPClient: utils.HTTPClient,
		Token:      os.Getenv("GITHUB_TOKEN"),
	}
}

type gitHubRepo struct {
	Private   bool      `json:"private"`
	CreatedAt time.Time `json:"created_at"`
}

func (g *GitHubRepoChecker) Check(ctx context.Context, repoURL string, notBefore time.Time) error {
	owner, name, err := splitRepoURL(repoURL)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/repos/%s/%s", g.BaseURL, owner, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if g.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.Token)
	}

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("github lookup failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// GitHub returns 404 for private repos the caller cannot see, so
		// "not found" and "not public" collapse into one answer.
		return &RepoInvalidError{Reason: "repository not found or not public"}
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("github lookup returned status %d", resp.StatusCode)
	}

	var repo gitHubRepo
	if err := json.NewDecoder(resp.Body).Decode(&repo); err != nil {
		return fmt.Errorf("github lookup: %w", err)
	}

	if repo.Private {
		return &RepoInvalidError{Reason: "repository is private"}
	}
	if repo.CreatedAt.Before(notBefore) {
		return &RepoInvalidError{
			Reason: fmt.Sprintf("repository predates this hackathon (created %s)", repo.CreatedAt.Format("2006-01-02")),
		}
	}
	return nil
}

// splitRepoURL extracts owner and repo name from a github.com URL.
func splitRepoURL(repoURL string) (owner, name string, err error) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", "", &RepoInvalidError{Reason: "not a valid URL"}
	}
	if u.Scheme != "https" || !strings.EqualFold(u.Host, "github.com") {
		return "", "", &RepoInvalidError{Reason: "only https://github.com repositories are accepted"}
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", &RepoInvalidError{Reason: "URL must look like https://github.com/owner/repo"}
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}
