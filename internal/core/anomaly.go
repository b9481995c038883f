package core

import "fmt"

const (
	AnomalyMalformedTransaction AnomalyReason = "malformed_transaction"
	AnomalyInvalidRecurrence    AnomalyReason = "invalid_recurrence"
	AnomalyUnknownCategory      AnomalyReason = "unknown_category"
)

type AnomalyReason string

// Anomaly is a structured warning about a record that could not be fully
// processed. Anomalies never abort a computation: the engine skips or degrades
// the offending record and keeps going.
type Anomaly struct {
	Reason        AnomalyReason
	TransactionID string
	Detail        string
}

func (a Anomaly) String() string {
	if a.TransactionID == "" {
		return fmt.Sprintf("%s: %s", a.Reason, a.Detail)
	}
	return fmt.Sprintf("%s [%s]: %s", a.Reason, a.TransactionID, a.Detail)
}
