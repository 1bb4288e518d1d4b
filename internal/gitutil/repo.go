// Package gitutil wraps the git CLI as a subprocess, the same way the
// teacher's internal/git package does, generalized to operate against an
// arbitrary repository directory instead of only the process's working
// directory, and to accept a context so long scans can be cancelled.
package gitutil

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	omnierrors "github.com/Pantheon-LadderWorks/omni-governance/internal/errors"
)

// Repo is a git working tree rooted at Dir.
type Repo struct {
	Dir string
}

// At returns a Repo rooted at dir.
func At(dir string) *Repo {
	return &Repo{Dir: dir}
}

func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Dir
	out, err := cmd.Output()
	if err != nil {
		return "", omnierrors.ExternalErrorf(err, "git %s (in %s)", strings.Join(args, " "), r.Dir)
	}
	return strings.TrimSpace(string(out)), nil
}

// IsWorkTree reports whether Dir is inside a git working tree.
func (r *Repo) IsWorkTree(ctx context.Context) bool {
	_, err := r.run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil
}

// RemoteURL returns the URL of the named remote (typically "origin").
func (r *Repo) RemoteURL(ctx context.Context, remote string) (string, error) {
	return r.run(ctx, "config", "--get", "remote."+remote+".url")
}

// CurrentBranch returns the checked-out branch name.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	return r.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

// HeadSHA returns the current commit SHA.
func (r *Repo) HeadSHA(ctx context.Context) (string, error) {
	return r.run(ctx, "rev-parse", "HEAD")
}

// RevParse resolves an arbitrary ref.
func (r *Repo) RevParse(ctx context.Context, ref string) (string, error) {
	return r.run(ctx, "rev-parse", ref)
}

// MergeBase returns the best common ancestor of a and b.
func (r *Repo) MergeBase(ctx context.Context, a, b string) (string, error) {
	return r.run(ctx, "merge-base", a, b)
}

// CatFile returns the content of an object (blob, tree, commit) by ref.
func (r *Repo) CatFile(ctx context.Context, ref string) (string, error) {
	return r.run(ctx, "cat-file", "-p", ref)
}

// RevListCount returns the number of commits reachable from ref.
func (r *Repo) RevListCount(ctx context.Context, ref string) (int, error) {
	out, err := r.run(ctx, "rev-list", "--count", ref)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, c := range out {
		if c < '0' || c > '9' {
			return 0, omnierrors.DataError(fmt.Errorf("non-numeric output"), "unexpected rev-list --count output: "+out)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}

// Status returns porcelain-v1 status lines.
func (r *Repo) Status(ctx context.Context) ([]string, error) {
	out, err := r.run(ctx, "status", "--porcelain")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// Log returns "%H %ct %ae %s"-formatted entries for the last n commits
// touching path (path may be empty for the whole repo).
func (r *Repo) Log(ctx context.Context, n int, path string) ([]LogEntry, error) {
	args := []string{"log", "--pretty=format:%H%x1f%ct%x1f%ae%x1f%s"}
	if n > 0 {
		args = append(args, "-n", itoa(n))
	}
	if path != "" {
		args = append(args, "--", path)
	}
	out, err := r.run(ctx, args...)
	if err != nil || out == "" {
		return nil, err
	}
	var entries []LogEntry
	for _, line := range strings.Split(out, "\n") {
		fields := strings.SplitN(line, "\x1f", 4)
		if len(fields) != 4 {
			continue
		}
		entries = append(entries, LogEntry{SHA: fields[0], UnixTime: fields[1], AuthorEmail: fields[2], Subject: fields[3]})
	}
	return entries, nil
}

// LogEntry is one commit as surfaced by Log.
type LogEntry struct {
	SHA         string
	UnixTime    string
	AuthorEmail string
	Subject     string
}

// ChangedFiles returns paths modified relative to HEAD in the working tree.
func (r *Repo) ChangedFiles(ctx context.Context) ([]string, error) {
	out, err := r.run(ctx, "diff", "--name-only", "HEAD")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// LogFollow returns the historical paths a file has had, following renames.
// Grounded on the bbolt-cached git-log-follow fallback the teacher's
// identity resolver uses.
func (r *Repo) LogFollow(ctx context.Context, path string) ([]string, error) {
	out, err := r.run(ctx, "log", "--follow", "--name-only", "--format=", "--", path)
	if err != nil || out == "" {
		return nil, err
	}
	seen := make(map[string]bool)
	var paths []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		paths = append(paths, line)
	}
	return paths, nil
}

var (
	httpsRemoteRe = regexp.MustCompile(`https?://[^/]+/([^/]+)/([^/]+)`)
	sshRemoteRe   = regexp.MustCompile(`git@[^:]+:([^/]+)/([^/]+)`)
	gitRemoteRe   = regexp.MustCompile(`git://[^/]+/([^/]+)/([^/]+)`)
)

// ParseRemoteURL extracts org and repo from an HTTPS, SSH, or git-protocol
// remote URL.
func ParseRemoteURL(remoteURL string) (org, repo string, err error) {
	remoteURL = strings.TrimSuffix(remoteURL, ".git")
	for _, re := range []*regexp.Regexp{httpsRemoteRe, sshRemoteRe, gitRemoteRe} {
		if m := re.FindStringSubmatch(remoteURL); len(m) == 3 {
			return m[1], m[2], nil
		}
	}
	return "", "", omnierrors.DataError(fmt.Errorf("no pattern matched"), "unrecognized git remote url format: "+remoteURL)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
