// Package github reads GitHub Actions workflow runs for `deployctl verify`.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cli/go-gh/v2/pkg/auth"
	gogithub "github.com/google/go-github/v72/github"
)

const defaultHost = "github.com"

var (
	// ErrNoRuns is returned when the branch has no workflow runs.
	ErrNoRuns = errors.New("no workflow runs found")
	// ErrInvalidRepository is returned for a repository not written as owner/name.
	ErrInvalidRepository = errors.New("repository must be owner/name")
)

// Run is the state of one workflow run.
type Run struct {
	Name       string
	Number     int
	Status     string
	Conclusion string
	HeadSHA    string
	URL        string
	CreatedAt  time.Time
}

// Succeeded reports a completed run with a successful conclusion.
func (r Run) Succeeded() bool {
	return r.Status == "completed" && r.Conclusion == "success"
}

// Failed reports a completed run that did not succeed or get skipped.
func (r Run) Failed() bool {
	if r.Status != "completed" {
		return false
	}

	switch r.Conclusion {
	case "success", "skipped", "neutral":
		return false
	default:
		return true
	}
}

// Client queries the Actions API.
type Client struct {
	gh *gogithub.Client
}

// TokenForHost finds a token the way the gh CLI does: GH_TOKEN / GITHUB_TOKEN, then the gh config.
// The second value names where the token came from.
func TokenForHost(host string) (string, string) {
	if host == "" {
		host = defaultHost
	}

	return auth.TokenForHost(host)
}

// NewClient returns a client for host. Hosts other than github.com are treated as GitHub Enterprise.
func NewClient(httpClient *http.Client, host, token string) (*Client, error) {
	client := gogithub.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	if host != "" && host != defaultHost {
		base := "https://" + host + "/"

		var err error

		client, err = client.WithEnterpriseURLs(base, base)
		if err != nil {
			return nil, fmt.Errorf("configure GitHub Enterprise host %s: %w", host, err)
		}
	}

	return &Client{gh: client}, nil
}

// SetBaseURL points the client at another API root.
func (c *Client) SetBaseURL(raw string) error {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse base URL: %w", err)
	}

	c.gh.BaseURL = parsed

	return nil
}

// LatestRun returns the newest run on branch. When workflow is set only runs of that
// workflow file (e.g. ci.yml) are considered.
func (c *Client) LatestRun(ctx context.Context, repository, branch, workflow string) (Run, error) {
	owner, repo, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return Run{}, fmt.Errorf("%w: %q", ErrInvalidRepository, repository)
	}

	opts := &gogithub.ListWorkflowRunsOptions{
		Branch:      branch,
		ListOptions: gogithub.ListOptions{PerPage: 1},
	}

	var (
		runs *gogithub.WorkflowRuns
		err  error
	)

	if workflow != "" {
		runs, _, err = c.gh.Actions.ListWorkflowRunsByFileName(ctx, owner, repo, workflow, opts)
	} else {
		runs, _, err = c.gh.Actions.ListRepositoryWorkflowRuns(ctx, owner, repo, opts)
	}

	if err != nil {
		return Run{}, fmt.Errorf("list workflow runs of %s: %w", repository, err)
	}

	if runs == nil || len(runs.WorkflowRuns) == 0 {
		return Run{}, fmt.Errorf("%w on %s@%s", ErrNoRuns, repository, branch)
	}

	run := runs.WorkflowRuns[0]

	return Run{
		Name:       run.GetName(),
		Number:     run.GetRunNumber(),
		Status:     run.GetStatus(),
		Conclusion: run.GetConclusion(),
		HeadSHA:    run.GetHeadSHA(),
		URL:        run.GetHTMLURL(),
		CreatedAt:  run.GetCreatedAt().Time,
	}, nil
}

// ClientFactory returns a client for a GitHub host.
type ClientFactory func(host string) (*Client, error)

// NewClientFactory returns a ClientFactory authenticating with the token gh would use
// for the host. newHTTPClient supplies the transport of each client.
func NewClientFactory(newHTTPClient func() *http.Client) ClientFactory {
	return func(host string) (*Client, error) {
		token, _ := TokenForHost(host)

		return NewClient(newHTTPClient(), host, token)
	}
}
