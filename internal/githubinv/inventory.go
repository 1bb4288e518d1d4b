// Package githubinv fetches the GitHub-side repository inventory used to
// enrich the project registry: which canonical projects have a GitHub
// remote, and what GitHub knows about them (default branch, visibility,
// archived state). With a token it talks to the API directly; without one
// it shells out to the `gh` CLI; with neither, GitHub-origin scanners are
// simply disabled for the run rather than failing it.
package githubinv

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/time/rate"

	omnierrors "github.com/Pantheon-LadderWorks/omni-governance/internal/errors"
)

// Repo is the subset of GitHub repository metadata the registry builder
// enriches projects with.
type Repo struct {
	Owner      string `json:"owner"`
	Name       string `json:"name"`
	FullName   string `json:"full_name"`
	URL        string `json:"url"`
	Archived   bool   `json:"archived"`
	Private    bool   `json:"private"`
	DefaultRef string `json:"default_branch"`
}

// Source reports which collection path produced a Fetcher's results.
type Source int

const (
	SourceNone Source = iota
	SourceAPI
	SourceCLI
)

// Fetcher resolves the GitHub inventory for an org, preferring the API and
// falling back to the `gh` CLI.
type Fetcher struct {
	client      *github.Client
	rateLimiter *rate.Limiter
	hasToken    bool
	useCLI      bool
}

// NewFetcher builds a Fetcher. token may be empty; useCLI controls whether
// the `gh` CLI fallback is attempted when it is.
func NewFetcher(token string, rateLimit int, useCLI bool) *Fetcher {
	f := &Fetcher{useCLI: useCLI}
	if token != "" {
		f.client = github.NewClient(nil).WithAuthToken(token)
		if rateLimit <= 0 {
			rateLimit = 10
		}
		f.rateLimiter = rate.NewLimiter(rate.Limit(rateLimit), 1)
		f.hasToken = true
	}
	return f
}

// Available reports whether any GitHub collection path (API or CLI) can
// actually be used. Scanners that depend on GitHub origin data should
// check this and skip, not fail, when it is false.
func (f *Fetcher) Available() bool {
	if f.hasToken {
		return true
	}
	if f.useCLI {
		_, err := exec.LookPath("gh")
		return err == nil
	}
	return false
}

// ListOrgRepos returns every repository in org.
func (f *Fetcher) ListOrgRepos(ctx context.Context, org string) ([]Repo, Source, error) {
	if f.hasToken {
		repos, err := f.listViaAPI(ctx, org)
		if err == nil {
			return repos, SourceAPI, nil
		}
		if !f.useCLI {
			return nil, SourceNone, err
		}
	}
	if f.useCLI {
		repos, err := f.listViaCLI(ctx, org)
		if err != nil {
			return nil, SourceNone, err
		}
		return repos, SourceCLI, nil
	}
	return nil, SourceNone, omnierrors.ExternalError(fmt.Errorf("no github token and gh CLI disabled"), "github inventory unavailable")
}

func (f *Fetcher) listViaAPI(ctx context.Context, org string) ([]Repo, error) {
	opts := &github.RepositoryListByOrgOptions{ListOptions: github.ListOptions{PerPage: 100}}
	var all []Repo
	for {
		if err := f.rateLimiter.Wait(ctx); err != nil {
			return nil, omnierrors.ExternalError(err, "github rate limiter")
		}
		repos, resp, err := f.client.Repositories.ListByOrg(ctx, org, opts)
		if err != nil {
			return nil, omnierrors.ExternalError(err, "listing org repos via github api")
		}
		for _, r := range repos {
			all = append(all, Repo{
				Owner:      org,
				Name:       r.GetName(),
				FullName:   r.GetFullName(),
				URL:        r.GetHTMLURL(),
				Archived:   r.GetArchived(),
				Private:    r.GetPrivate(),
				DefaultRef: r.GetDefaultBranch(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

type ghRepoJSON struct {
	Name          string `json:"name"`
	NameWithOwner string `json:"nameWithOwner"`
	URL           string `json:"url"`
	IsArchived    bool   `json:"isArchived"`
	IsPrivate     bool   `json:"isPrivate"`
	DefaultBranch struct {
		Name string `json:"name"`
	} `json:"defaultBranchRef"`
}

func (f *Fetcher) listViaCLI(ctx context.Context, org string) ([]Repo, error) {
	cmd := exec.CommandContext(ctx, "gh", "repo", "list", org,
		"--limit", "1000",
		"--json", "name,nameWithOwner,url,isArchived,isPrivate,defaultBranchRef")
	out, err := cmd.Output()
	if err != nil {
		return nil, omnierrors.ExternalError(err, "listing org repos via gh CLI")
	}
	var raw []ghRepoJSON
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, omnierrors.DataError(err, "parsing gh CLI repo list output")
	}
	repos := make([]Repo, 0, len(raw))
	for _, r := range raw {
		owner := org
		if idx := strings.Index(r.NameWithOwner, "/"); idx >= 0 {
			owner = r.NameWithOwner[:idx]
		}
		repos = append(repos, Repo{
			Owner:      owner,
			Name:       r.Name,
			FullName:   r.NameWithOwner,
			URL:        r.URL,
			Archived:   r.IsArchived,
			Private:    r.IsPrivate,
			DefaultRef: r.DefaultBranch.Name,
		})
	}
	return repos, nil
}

// AsMap dedups repos by lowercased URL, matching the registry builder's
// enrichment-map convention.
func AsMap(repos []Repo) map[string]Repo {
	m := make(map[string]Repo, len(repos))
	for _, r := range repos {
		m[strings.ToLower(r.URL)] = r
	}
	return m
}
