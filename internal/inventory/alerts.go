package inventory

import (
	"time"

	"github.com/cleared-dev/shopbooks/internal/model"
)

// Alert freshness labels.
const (
	StatusUpdated    = "UPDATED"
	StatusNotUpdated = "NOT UPDATED"
)

// Alert is one row of the restock alert table.
type Alert struct {
	model.Snapshot
	Updated bool
}

// Status renders the freshness flag.
func (a Alert) Status() string {
	if a.Updated {
		return StatusUpdated
	}
	return StatusNotUpdated
}

// Alerts returns the stock check of the last processed day. Rows are
// flagged updated only when that day is on or after asOf.
func Alerts(res Result, asOf time.Time) []Alert {
	if res.LastDay.IsZero() {
		return nil
	}
	updated := !res.LastDay.Before(model.Day(asOf))
	var alerts []Alert
	for _, s := range res.Snapshots {
		if s.Date.Equal(res.LastDay) {
			alerts = append(alerts, Alert{Snapshot: s, Updated: updated})
		}
	}
	return alerts
}
