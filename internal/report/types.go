// Package report implements the pure report generators: given already
// reconciled/scanned data, produce the debt, gap, and drift reports. None
// of these functions perform I/O or call out to scanners themselves —
// they are deterministic transformations over data the caller already
// collected, which is what makes them straightforward to test.
package report

import "time"

// Event is a single declared or observed lifecycle event (a contract, a
// webhook, a scheduled job — anything the federation's event surface
// tracks statically and/or sees fire at runtime).
type Event struct {
	Name        string    `json:"name"`
	Project     string    `json:"project"`
	DeclaredAt  string    `json:"declared_at,omitempty"` // source location, if statically declared
	LastFiredAt time.Time `json:"last_fired_at,omitempty"`
	Declared    bool      `json:"declared"`
	Observed    bool      `json:"observed"`
}

// DebtEntry is one line of the event debt report: a declared event that
// has never been observed firing, or has not fired within the staleness
// window. Undeclared events never produce a debt entry.
type DebtEntry struct {
	Event  string `json:"event"`
	Project string `json:"project"`
	Reason string `json:"reason"`
}

// DebtReport summarizes event debt across the scanned events.
type DebtReport struct {
	Entries   []DebtEntry `json:"entries"`
	TotalDebt int         `json:"total_debt"`
}

// GapReport is the static-vs-dynamic comparison: events declared in source
// but never observed at runtime (Latent — dead weight, candidates for
// removal) and events observed firing but with no static declaration
// anywhere (Emergent — undocumented behavior, candidates for codifying).
type GapReport struct {
	Latent   []Event `json:"latent"`
	Emergent []Event `json:"emergent"`
}

// DriftEntry is one registry/reality disagreement.
type DriftEntry struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// DriftReport reports registry entries with no corresponding filesystem/
// Git reality ("ghosts") and filesystem/Git realities with no
// corresponding registry entry ("rogues"). BuildRegistryDriftReport also
// lists frozen identity conflicts under Ghosts.
type DriftReport struct {
	Ghosts []DriftEntry `json:"ghosts"`
	Rogues []DriftEntry `json:"rogues"`
}
