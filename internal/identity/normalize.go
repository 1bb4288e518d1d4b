package identity

import (
	"strings"

	"github.com/google/uuid"
)

// NormalizeGitHubURL canonicalizes a GitHub remote URL so the same
// repository reached via HTTPS, SSH, or a trailing-.git variant always
// normalizes to the same string before it is hashed into a UUID.
func NormalizeGitHubURL(raw string) string {
	u := strings.TrimSpace(raw)
	u = strings.TrimSuffix(u, ".git")
	u = strings.TrimSuffix(u, "/")

	if strings.HasPrefix(u, "git@") {
		// git@github.com:owner/repo -> github.com/owner/repo
		u = strings.TrimPrefix(u, "git@")
		u = strings.Replace(u, ":", "/", 1)
	}

	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	u = strings.TrimPrefix(u, "git://")
	u = strings.ToLower(u)

	return "github.com/" + strings.TrimPrefix(u, "github.com/")
}

// RepoFullName derives the bare "owner/repo" form from a normalized GitHub
// URL, the shape GitHub's API reports as a repository's full name — used
// to match inventory entries against a fetched org repo list.
func RepoFullName(normalizedURL string) string {
	return strings.TrimPrefix(normalizedURL, "github.com/")
}

// ProjectKey derives the project_key ("host:owner/repo", lowercased) from
// a normalized GitHub URL. This is the UUID-minting input, not the
// "owner/repo" form used for GitHub API matching.
func ProjectKey(normalizedURL string) string {
	return strings.Replace(normalizedURL, "/", ":", 1)
}

// MintUUID deterministically derives a UUIDv5 for project_key under
// NamespaceFederation. The same key always mints the same UUID — this is
// the property the Testable Properties section calls UUID determinism.
func MintUUID(key string) uuid.UUID {
	return uuid.NewSHA1(NamespaceFederation, []byte(key))
}
