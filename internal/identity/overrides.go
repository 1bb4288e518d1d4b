package identity

import (
	"encoding/json"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	omnierrors "github.com/Pantheon-LadderWorks/omni-governance/internal/errors"
)

func parseLegacyJSON(data []byte, out *map[string]string) error {
	return json.Unmarshal(data, out)
}

// overrideFile is the on-disk shape of overrides.yaml.
type overrideFile struct {
	Overrides []overrideEntry `yaml:"overrides"`
}

type overrideEntry struct {
	Key     string   `yaml:"key"`
	UUID    string   `yaml:"uuid"`
	Aliases []string `yaml:"aliases"`
}

// LoadOverrides reads overrides.yaml and returns a key->UUID map with each
// entry duplicated under its declared aliases, so a project renamed or
// relocated still resolves to the pinned identifier under its old key too.
func LoadOverrides(path string) (map[string]uuid.UUID, error) {
	result := make(map[string]uuid.UUID)
	if path == "" {
		return result, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return result, nil
	}
	if err != nil {
		return nil, omnierrors.IOError(err, "reading overrides file "+path)
	}

	var f overrideFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, omnierrors.DataError(err, "parsing overrides file "+path)
	}

	for _, entry := range f.Overrides {
		id, err := uuid.Parse(entry.UUID)
		if err != nil {
			return nil, omnierrors.DataErrorf(err, "invalid uuid %q for override key %q", entry.UUID, entry.Key)
		}
		result[entry.Key] = id
		for _, alias := range entry.Aliases {
			result[alias] = id
		}
	}
	return result, nil
}

// exclusionFile is the on-disk shape of EXCLUSION_LIST_V1.yaml.
type exclusionFile struct {
	Exclusions []string `yaml:"exclusions"`
}

// LoadExclusions reads the exclusion list: keys or path substrings that
// should never be treated as projects, regardless of what the filesystem
// scan or CMP database says.
func LoadExclusions(path string) (map[string]bool, error) {
	result := make(map[string]bool)
	if path == "" {
		return result, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return result, nil
	}
	if err != nil {
		return nil, omnierrors.IOError(err, "reading exclusions file "+path)
	}

	var f exclusionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, omnierrors.DataError(err, "parsing exclusions file "+path)
	}
	for _, e := range f.Exclusions {
		result[e] = true
	}
	return result, nil
}

// LoadLegacyRegistry reads a legacy canonical_<entity>_uuids.json mirror,
// the fallback consulted when the live database scan fails or returns
// nothing (resolving the ambiguity between the two CMP-fallback code
// paths the original implementation carried: the live scan is always
// tried first, this is the cold fallback, never the other way around).
func LoadLegacyRegistry(path string) (map[string]uuid.UUID, error) {
	result := make(map[string]uuid.UUID)
	if path == "" {
		return result, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return result, nil
	}
	if err != nil {
		return nil, omnierrors.IOError(err, "reading legacy registry "+path)
	}

	var raw map[string]string
	if err := parseLegacyJSON(data, &raw); err != nil {
		return nil, omnierrors.DataError(err, "parsing legacy registry "+path)
	}
	for key, idStr := range raw {
		id, err := uuid.Parse(idStr)
		if err != nil {
			continue // a malformed legacy entry is skipped, not fatal
		}
		result[key] = id
	}
	return result, nil
}
