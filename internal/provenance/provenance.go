// Package provenance implements the UUID provenance audit: it scans a
// filesystem tree for UUID-shaped strings and classifies each one against
// a canonical registry, a configurable set of path-substring rules, and a
// small built-in denylist of example/placeholder UUIDs that show up in
// fixtures and documentation. Grounded on
// original_source/omni/core/provenance.py's run_provenance_audit, with
// the hardcoded workspace roots and registry-v2 file format replaced by
// an explicit root argument and a canonical-name map the caller supplies.
package provenance

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Category classifies a discovered UUID's relationship to the canonical
// registry and to where it was found.
type Category string

const (
	CategoryCanonical Category = "CANONICAL"   // matches a UUID the canonical registry knows
	CategoryOrphan    Category = "ORPHAN"       // unrecognized, found outside any rule-matched path
	CategoryExternal  Category = "EXTERNAL_LIB" // unrecognized, found under a vendored/third-party path
	CategoryMemory    Category = "MEMORY/CACHE" // unrecognized, found under a rule-matched cache/artifact path
	CategoryTest      Category = "TEST/JUNK"    // a known placeholder/example UUID
	CategoryUnknown   Category = "UNKNOWN"
)

// UUIDPattern matches a standard 8-4-4-4-12 hex UUID, case-insensitively.
var UUIDPattern = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\b`)

// KnownPlaceholderUUIDs are example/test UUIDs that appear throughout
// fixtures, documentation, and RFC examples rather than identifying any
// real entity.
var KnownPlaceholderUUIDs = map[string]bool{
	"00000000-0000-0000-0000-000000000000": true,
	"11111111-1111-1111-1111-111111111111": true,
	"12345678-1234-1234-1234-1234567890ab": true,
	"550e8400-e29b-41d4-a716-446655440000": true,
	"123e4567-e89b-12d3-a456-426614174000": true,
}

var skipDirs = map[string]bool{
	".git": true, "node_modules": true, "dist": true, "build": true,
	"__pycache__": true, ".vscode": true, ".idea": true, "coverage": true,
	"tmp": true, "temp": true,
}

var vendoredDirs = map[string]bool{
	"node_modules": true, "vendor": true, ".venv": true, "venv": true,
}

var skipExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true, ".svg": true, ".webp": true,
	".pyc": true, ".pyo": true, ".so": true, ".dll": true, ".exe": true, ".bin": true,
	".pdf": true, ".zip": true, ".tar": true, ".gz": true, ".7z": true, ".rar": true,
	".db": true, ".sqlite": true, ".sqlite3": true,
}

const maxScanSize = 5 * 1024 * 1024

// Entry is one discovered UUID's provenance record.
type Entry struct {
	UUID          string   `json:"uuid"`
	Category      Category `json:"category"`
	CanonicalName string   `json:"canonical_name,omitempty"`
	Paths         []string `json:"paths"`
}

// Index is the full provenance audit result.
type Index struct {
	Entries      []Entry        `json:"entries"`
	CategoryCounts map[string]int `json:"category_counts"`
	TotalFiles   int            `json:"scanned_files"`
}

// BuildIndex walks root, collects every UUID occurrence, and classifies
// each one. canonical maps a lowercase UUID to the name the canonical
// registry (or reconciled identity index) knows it by; rules is a list of
// path substrings that mark a match as MEMORY/CACHE provenance rather than
// an orphan (e.g. an artifacts or cache directory), matching
// config.Config.Identity.ProvenanceRules.
func BuildIndex(root string, canonical map[string]string, rules []string) (Index, error) {
	occurrences := make(map[string][]string)
	scannedFiles := 0

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if skipExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		info, err := d.Info()
		if err != nil || info.Size() > maxScanSize {
			return nil
		}

		found, err := scanFileUUIDs(path)
		if err != nil {
			return nil
		}
		scannedFiles++
		for u := range found {
			occurrences[u] = append(occurrences[u], path)
		}
		return nil
	})
	if err != nil {
		return Index{}, err
	}

	idx := Index{CategoryCounts: make(map[string]int), TotalFiles: scannedFiles}
	for u, paths := range occurrences {
		entry := Entry{UUID: u, Paths: paths}
		entry.Category, entry.CanonicalName = classify(u, paths, canonical, rules)
		idx.Entries = append(idx.Entries, entry)
		idx.CategoryCounts[string(entry.Category)]++
	}
	sort.Slice(idx.Entries, func(i, j int) bool { return idx.Entries[i].UUID < idx.Entries[j].UUID })
	return idx, nil
}

func classify(u string, paths []string, canonical map[string]string, rules []string) (Category, string) {
	lower := strings.ToLower(u)
	if name, ok := canonical[lower]; ok {
		return CategoryCanonical, name
	}
	if KnownPlaceholderUUIDs[lower] {
		return CategoryTest, ""
	}
	for _, p := range paths {
		for _, dir := range strings.Split(filepath.ToSlash(p), "/") {
			if vendoredDirs[dir] {
				return CategoryExternal, ""
			}
		}
		for _, rule := range rules {
			if strings.Contains(filepath.ToSlash(p), rule) {
				return CategoryMemory, ""
			}
		}
	}
	return CategoryOrphan, ""
}

func scanFileUUIDs(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(bufio.NewReader(f))
	if err != nil {
		return nil, err
	}
	if !isProbablyText(data) {
		return nil, nil
	}

	found := make(map[string]bool)
	for _, m := range UUIDPattern.FindAllString(string(data), -1) {
		found[strings.ToLower(m)] = true
	}
	return found, nil
}

// isProbablyText rejects binary files scanFileUUIDs wasn't already told
// to skip by extension, by checking for a NUL byte in the first 512 bytes.
func isProbablyText(data []byte) bool {
	n := len(data)
	if n > 512 {
		n = 512
	}
	for i := 0; i < n; i++ {
		if data[i] == 0 {
			return false
		}
	}
	return true
}
