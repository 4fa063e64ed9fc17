package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	TransactionRecorded EventType = "transaction.recorded"
	BillScheduled       EventType = "bill.scheduled"
)

// LedgerEvent is a lightweight notification. It carries only identifiers;
// consumers read the full record from the SQLite snapshot.
type LedgerEvent struct {
	MessageID     string    `json:"message_id"`
	Type          EventType `json:"type"`
	TransactionID int64     `json:"transaction_id,omitempty"`
	BillID        string    `json:"bill_id,omitempty"`
	Version       uint64    `json:"ledger_version"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionRecorded(id int64, version uint64) *LedgerEvent {
	return &LedgerEvent{
		MessageID:     uuid.NewString(),
		Type:          TransactionRecorded,
		TransactionID: id,
		Version:       version,
		Timestamp:     time.Now().UTC(),
	}
}

func NewBillScheduled(id string) *LedgerEvent {
	return &LedgerEvent{
		MessageID: uuid.NewString(),
		Type:      BillScheduled,
		BillID:    id,
		Timestamp: time.Now().UTC(),
	}
}

func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON decodes and checks an event body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Type {
	case TransactionRecorded:
		if msg.TransactionID <= 0 {
			return nil, fmt.Errorf("%s event without transaction id", msg.Type)
		}
	case BillScheduled:
		if msg.BillID == "" {
			return nil, fmt.Errorf("%s event without bill id", msg.Type)
		}
	default:
		return nil, fmt.Errorf("unknown event type %q", msg.Type)
	}
	return &msg, nil
}
