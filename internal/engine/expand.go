package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
)

// Expand projects recurring templates into concrete dated occurrences up to
// asOf. Non-recurring transactions pass through unchanged; the template itself
// is the occurrence at offset zero and is not duplicated. Virtual occurrences
// are full copies with a synthetic identifier, the advanced date, and no
// recurrence, so they can never be re-expanded or mistaken for stored rows.
//
// A template with an invalid repetition type, or an until bound before its own
// date, degrades to the single offset-zero occurrence and is reported as an
// anomaly rather than failing the whole expansion.
func Expand(txns []core.Transaction, asOf core.Date) ([]core.Transaction, []core.Anomaly) {
	out := make([]core.Transaction, 0, len(txns))
	var anomalies []core.Anomaly

	for _, t := range txns {
		out = append(out, t)
		if t.Recurrence == nil {
			continue
		}

		r := *t.Recurrence
		if !r.Every.Valid() {
			anomalies = append(anomalies, core.Anomaly{
				Reason:        core.AnomalyInvalidRecurrence,
				TransactionID: t.ID,
				Detail:        fmt.Sprintf("unsupported repetition type %q", r.Every),
			})
			continue
		}
		if !r.Until.IsEmpty() && r.Until.Before(t.Date.Time) {
			anomalies = append(anomalies, core.Anomaly{
				Reason:        core.AnomalyInvalidRecurrence,
				TransactionID: t.ID,
				Detail:        "until precedes the template date",
			})
			continue
		}

		horizon := asOf
		if !r.Until.IsEmpty() && r.Until.Before(asOf.Time) {
			horizon = r.Until
		}

		for n := 1; ; n++ {
			occDate := advance(t.Date, r.Every, n)
			if occDate.After(horizon.Time) {
				break
			}
			occ := t
			occ.ID = occurrenceID(t.ID, n)
			occ.Date = occDate
			occ.Recurrence = nil
			out = append(out, occ)
		}
	}

	return out, anomalies
}

// advance returns the template date moved forward by n intervals. Monthly and
// yearly advancement keeps the template's day of month, clamped to the last
// day of shorter months (Jan 31 -> Feb 29 -> Mar 31).
func advance(start core.Date, every core.RepetitionType, n int) core.Date {
	switch every {
	case core.Daily:
		return core.Date{Time: start.AddDate(0, 0, n)}
	case core.Weekly:
		return core.Date{Time: start.AddDate(0, 0, 7*n)}
	case core.Monthly:
		first := time.Date(start.Year(), time.Month(start.Month()+n), 1, 0, 0, 0, 0, time.UTC)
		day := start.Day()
		if last := daysIn(first.Year(), first.Month()); day > last {
			day = last
		}
		return core.NewDate(first.Year(), int(first.Month()), day)
	case core.Yearly:
		day := start.Day()
		if last := daysIn(start.Year()+n, time.Month(start.Month())); day > last {
			day = last
		}
		return core.NewDate(start.Year()+n, start.Month(), day)
	default:
		return start
	}
}

// occurrenceID derives a stable identifier for the nth virtual occurrence of
// a template. Version-5 UUIDs keep expansion deterministic: the same template
// expanded twice yields identical occurrences.
func occurrenceID(templateID string, n int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s/%d", templateID, n))).String()
}
