package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildDebtReportNeverFired(t *testing.T) {
	events := []Event{{Name: "order.created", Project: "checkout", Declared: true}}
	now := time.Now()

	debt := BuildDebtReport(events, now, 90*24*time.Hour)

	assert.Equal(t, 1, debt.TotalDebt)
	assert.Equal(t, "order.created", debt.Entries[0].Event)
	assert.Contains(t, debt.Entries[0].Reason, "never observed")
}

func TestBuildDebtReportStaleFiring(t *testing.T) {
	now := time.Now()
	events := []Event{{
		Name:        "order.created",
		Project:     "checkout",
		Declared:    true,
		LastFiredAt: now.Add(-100 * 24 * time.Hour),
	}}

	debt := BuildDebtReport(events, now, 90*24*time.Hour)

	assert.Equal(t, 1, debt.TotalDebt)
	assert.Contains(t, debt.Entries[0].Reason, "has not fired")
}

func TestBuildDebtReportRecentFiringIsNotDebt(t *testing.T) {
	now := time.Now()
	events := []Event{{
		Name:        "order.created",
		Project:     "checkout",
		Declared:    true,
		LastFiredAt: now.Add(-1 * time.Hour),
	}}

	debt := BuildDebtReport(events, now, 90*24*time.Hour)
	assert.Equal(t, 0, debt.TotalDebt)
}

func TestBuildDebtReportIgnoresUndeclaredEvents(t *testing.T) {
	events := []Event{{Name: "mystery.event", Project: "checkout", Declared: false, Observed: true}}

	debt := BuildDebtReport(events, time.Now(), 90*24*time.Hour)
	assert.Equal(t, 0, debt.TotalDebt)
}

func TestBuildDebtReportZeroStaleAfterUsesDefault(t *testing.T) {
	now := time.Now()
	events := []Event{{
		Name:        "order.created",
		Declared:    true,
		LastFiredAt: now.Add(-StaleAfter).Add(-time.Hour),
	}}

	debt := BuildDebtReport(events, now, 0)
	assert.Equal(t, 1, debt.TotalDebt)
}
