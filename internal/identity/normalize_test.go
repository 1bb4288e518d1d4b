package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeGitHubURLRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"https", "https://github.com/owner/repo", "github.com/owner/repo"},
		{"https with .git", "https://github.com/owner/repo.git", "github.com/owner/repo"},
		{"ssh", "git@github.com:owner/repo.git", "github.com/owner/repo"},
		{"trailing slash", "https://github.com/owner/repo/", "github.com/owner/repo"},
		{"mixed case", "https://GitHub.com/Owner/Repo", "github.com/owner/repo"},
		{"bare host/path", "github.com/owner/repo", "github.com/owner/repo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeGitHubURL(tt.raw))
		})
	}
}

func TestNormalizeGitHubURLConvergesAcrossTransports(t *testing.T) {
	https := NormalizeGitHubURL("https://github.com/owner/repo.git")
	ssh := NormalizeGitHubURL("git@github.com:owner/repo.git")
	assert.Equal(t, https, ssh, "https and ssh remotes for the same repo must normalize identically")
}

func TestRepoFullName(t *testing.T) {
	assert.Equal(t, "owner/repo", RepoFullName("github.com/owner/repo"))
}

func TestProjectKeyUsesColonSeparatedHost(t *testing.T) {
	assert.Equal(t, "github.com:owner/repo", ProjectKey("github.com/owner/repo"))
}

func TestMintUUIDIsDeterministic(t *testing.T) {
	a := MintUUID("github.com:owner/repo")
	b := MintUUID("github.com:owner/repo")
	assert.Equal(t, a, b, "minting the same key twice must produce the same UUID")
}

func TestMintUUIDDiffersByKey(t *testing.T) {
	a := MintUUID("github.com:owner/repo-a")
	b := MintUUID("github.com:owner/repo-b")
	assert.NotEqual(t, a, b)
}

func TestMintUUIDMatchesSpecScenario(t *testing.T) {
	key := ProjectKey(NormalizeGitHubURL("https://github.com/Example/Alpha.git"))
	want := uuid.NewSHA1(NamespaceFederation, []byte("github.com:example/alpha"))
	assert.Equal(t, want, MintUUID(key))
}
