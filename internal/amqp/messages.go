package amqp

import (
	"encoding/json"
	"time"

	"budgetplanner/internal/store"
)

// TransactionEventMessage announces one store change. It carries only the
// id and revision; consumers reload the persisted state for the details.
type TransactionEventMessage struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id,omitempty"`
	Revision  uint64    `json:"revision"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionEventMessage builds the message for a store event.
func NewTransactionEventMessage(ev store.Event) *TransactionEventMessage {
	return &TransactionEventMessage{
		Kind:      ev.Kind.String(),
		ID:        ev.Transaction.ID,
		Revision:  ev.Revision,
		Timestamp: time.Now(),
	}
}

func (m *TransactionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionEventMessageFromJSON(data []byte) (*TransactionEventMessage, error) {
	var msg TransactionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
