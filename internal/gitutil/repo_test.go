package gitutil

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) *Repo {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}
	run("init", "-q")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "Test")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file.txt"), []byte("hello\n"), 0644))
	run("add", "file.txt")
	run("commit", "-q", "-m", "initial commit")
	return At(dir)
}

func TestIsWorkTree(t *testing.T) {
	r := initRepo(t)
	assert.True(t, r.IsWorkTree(context.Background()))

	notRepo := At(t.TempDir())
	assert.False(t, notRepo.IsWorkTree(context.Background()))
}

func TestRemoteURLWithoutRemoteErrors(t *testing.T) {
	r := initRepo(t)
	_, err := r.RemoteURL(context.Background(), "origin")
	assert.Error(t, err)
}

func TestRemoteURLReturnsConfiguredValue(t *testing.T) {
	r := initRepo(t)
	cmd := exec.Command("git", "remote", "add", "origin", "https://github.com/owner/repo.git")
	cmd.Dir = r.Dir
	require.NoError(t, cmd.Run())

	url, err := r.RemoteURL(context.Background(), "origin")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/owner/repo.git", url)
}

func TestHeadSHAAndRevParseAgree(t *testing.T) {
	r := initRepo(t)
	sha, err := r.HeadSHA(context.Background())
	require.NoError(t, err)
	assert.Len(t, sha, 40)

	resolved, err := r.RevParse(context.Background(), "HEAD")
	require.NoError(t, err)
	assert.Equal(t, sha, resolved)
}

func TestCurrentBranchDefaultsToMasterOrMain(t *testing.T) {
	r := initRepo(t)
	branch, err := r.CurrentBranch(context.Background())
	require.NoError(t, err)
	assert.Contains(t, []string{"main", "master"}, branch)
}

func TestRevListCountCountsCommits(t *testing.T) {
	r := initRepo(t)
	n, err := r.RevListCount(context.Background(), "HEAD")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStatusReportsUntrackedFile(t *testing.T) {
	r := initRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(r.Dir, "new.txt"), []byte("x"), 0644))

	lines, err := r.Status(context.Background())
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "new.txt")
}

func TestStatusCleanReturnsNil(t *testing.T) {
	r := initRepo(t)
	lines, err := r.Status(context.Background())
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestLogReturnsParsedEntries(t *testing.T) {
	r := initRepo(t)
	entries, err := r.Log(context.Background(), 10, "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "initial commit", entries[0].Subject)
	assert.Equal(t, "test@example.com", entries[0].AuthorEmail)
}

func TestChangedFilesDetectsModification(t *testing.T) {
	r := initRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(r.Dir, "file.txt"), []byte("changed\n"), 0644))

	changed, err := r.ChangedFiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"file.txt"}, changed)
}

func TestLogFollowTracksRename(t *testing.T) {
	r := initRepo(t)
	cmd := exec.Command("git", "mv", "file.txt", "renamed.txt")
	cmd.Dir = r.Dir
	require.NoError(t, cmd.Run())
	commit := exec.Command("git", "commit", "-q", "-m", "rename")
	commit.Dir = r.Dir
	require.NoError(t, commit.Run())

	paths, err := r.LogFollow(context.Background(), "renamed.txt")
	require.NoError(t, err)
	assert.Contains(t, paths, "renamed.txt")
	assert.Contains(t, paths, "file.txt")
}

func TestParseRemoteURLHandlesHTTPSSSHAndGitProtocol(t *testing.T) {
	cases := []struct {
		url      string
		wantOrg  string
		wantRepo string
	}{
		{"https://github.com/owner/repo.git", "owner", "repo"},
		{"git@github.com:owner/repo.git", "owner", "repo"},
		{"git://github.com/owner/repo.git", "owner", "repo"},
	}
	for _, c := range cases {
		org, repo, err := ParseRemoteURL(c.url)
		require.NoError(t, err, c.url)
		assert.Equal(t, c.wantOrg, org)
		assert.Equal(t, c.wantRepo, repo)
	}
}

func TestParseRemoteURLUnrecognizedFormatErrors(t *testing.T) {
	_, _, err := ParseRemoteURL("not-a-url")
	assert.Error(t, err)
}
