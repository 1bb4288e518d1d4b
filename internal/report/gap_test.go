package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildGapReportMatchesSpecExample(t *testing.T) {
	// Static registry defines {alpha, beta, gamma}; runtime log contains
	// {beta, delta}. Expected: latent = [alpha, gamma], emergent = [delta].
	events := []Event{
		{Name: "alpha", Declared: true, Observed: false},
		{Name: "beta", Declared: true, Observed: true},
		{Name: "gamma", Declared: true, Observed: false},
		{Name: "delta", Declared: false, Observed: true},
	}

	gap := BuildGapReport(events)

	var latentNames, emergentNames []string
	for _, e := range gap.Latent {
		latentNames = append(latentNames, e.Name)
	}
	for _, e := range gap.Emergent {
		emergentNames = append(emergentNames, e.Name)
	}

	assert.ElementsMatch(t, []string{"alpha", "gamma"}, latentNames)
	assert.ElementsMatch(t, []string{"delta"}, emergentNames)
}

func TestBuildGapReportConvergedEventAppearsInNeither(t *testing.T) {
	events := []Event{{Name: "healthy", Declared: true, Observed: true}}

	gap := BuildGapReport(events)

	assert.Empty(t, gap.Latent)
	assert.Empty(t, gap.Emergent)
}
