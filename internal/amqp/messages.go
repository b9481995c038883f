package amqp

import (
	"encoding/json"
	"time"
)

// LimitAlertMessage notifies downstream consumers (notification senders,
// dashboards) that an owner's category spending exceeded its monthly cap.
// Amounts are cents; Period is the month key (2006-01) the violation
// belongs to.
type LimitAlertMessage struct {
	Owner        string    `json:"owner"`
	Category     string    `json:"category"`
	Period       string    `json:"period"`
	LimitCents   int64     `json:"limit_cents"`
	TotalCents   int64     `json:"total_cents"`
	OverageCents int64     `json:"overage_cents"`
	Timestamp    time.Time `json:"timestamp"`
}

// ToJSON converts the message to JSON bytes
func (m *LimitAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LimitAlertMessageFromJSON creates a message from JSON bytes
func LimitAlertMessageFromJSON(data []byte) (*LimitAlertMessage, error) {
	var msg LimitAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
