package report

import "time"

// StaleAfter is the default window after which a declared-but-unobserved
// event counts as debt rather than simply quiet.
const StaleAfter = 90 * 24 * time.Hour

// BuildDebtReport computes event debt: declared events that have gone
// quiet longer than staleAfter, and declared events that have never fired
// at all (LastFiredAt zero value).
func BuildDebtReport(events []Event, now time.Time, staleAfter time.Duration) DebtReport {
	if staleAfter <= 0 {
		staleAfter = StaleAfter
	}

	var entries []DebtEntry
	for _, e := range events {
		if !e.Declared {
			continue
		}
		switch {
		case e.LastFiredAt.IsZero():
			entries = append(entries, DebtEntry{
				Event:   e.Name,
				Project: e.Project,
				Reason:  "declared but never observed firing",
			})
		case now.Sub(e.LastFiredAt) > staleAfter:
			entries = append(entries, DebtEntry{
				Event:   e.Name,
				Project: e.Project,
				Reason:  "declared but has not fired in over " + staleAfter.String(),
			})
		}
	}

	return DebtReport{Entries: entries, TotalDebt: len(entries)}
}
