package report

// BuildGapReport splits events into latent (declared, never observed) and
// emergent (observed, never declared). An event both declared and
// observed is neither — it is the converged, healthy case and does not
// appear in either list.
func BuildGapReport(events []Event) GapReport {
	var report GapReport
	for _, e := range events {
		switch {
		case e.Declared && !e.Observed:
			report.Latent = append(report.Latent, e)
		case !e.Declared && e.Observed:
			report.Emergent = append(report.Emergent, e)
		}
	}
	return report
}
