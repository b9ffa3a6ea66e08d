// Package storage holds the persisted-state backends behind store.Persister.
//
// Every backend stores the whole collection as one named JSON document,
// {"state":{"transactions":[...]},"version":0}, so a state written by one
// backend can be copied verbatim into another.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"budgetplanner/internal/core"
	"budgetplanner/internal/log"
)

// DefaultStateName is the key the persisted document is stored under.
const DefaultStateName = "budget-planner"

const stateVersion = 0

// ErrCorruptState is returned when a persisted document cannot be decoded.
var ErrCorruptState = errors.New("corrupt persisted state")

type persistedState struct {
	State struct {
		Transactions []json.RawMessage `json:"transactions"`
	} `json:"state"`
	Version int `json:"version"`
}

// Encode renders the collection as a persisted document.
func Encode(txs []core.Transaction) ([]byte, error) {
	if txs == nil {
		txs = []core.Transaction{}
	}
	var doc struct {
		State struct {
			Transactions []core.Transaction `json:"transactions"`
		} `json:"state"`
		Version int `json:"version"`
	}
	doc.State.Transactions = txs
	doc.Version = stateVersion
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return b, nil
}

// SkippedRecord describes a persisted record Decode left out.
type SkippedRecord struct {
	Index int
	ID    string
	Err   error
}

// Decode parses a persisted document. A bare JSON array of transactions is
// accepted too. Empty input decodes to an empty collection.
//
// Records are decoded one at a time: a record that does not decode or
// carries a negative amount is left out and reported in skipped, and the
// others are kept. Only a document that is not valid JSON is an error.
func Decode(b []byte) (txs []core.Transaction, skipped []SkippedRecord, err error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, nil, nil
	}

	var records []json.RawMessage
	if b[0] == '[' {
		if err := json.Unmarshal(b, &records); err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrCorruptState, err)
		}
	} else {
		var doc persistedState
		if err := json.Unmarshal(b, &doc); err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrCorruptState, err)
		}
		records = doc.State.Transactions
	}

	txs = make([]core.Transaction, 0, len(records))
	for i, raw := range records {
		var t core.Transaction
		err := json.Unmarshal(raw, &t)
		if err == nil {
			err = t.Amount.Validate()
		}
		if err != nil {
			skipped = append(skipped, SkippedRecord{Index: i, ID: recordID(raw), Err: err})
			continue
		}
		txs = append(txs, t)
	}
	return txs, skipped, nil
}

// recordID extracts the id of a record that failed to decode, if it has one.
func recordID(raw json.RawMessage) string {
	var rec struct {
		ID string `json:"id"`
	}
	if json.Unmarshal(raw, &rec) != nil {
		return ""
	}
	return rec.ID
}

// decodeLogged is Decode for the backends: skipped records are logged.
func decodeLogged(ctx context.Context, b []byte, logger *log.Logger) ([]core.Transaction, error) {
	txs, skipped, err := Decode(b)
	for _, sk := range skipped {
		logger.WarnContext(ctx, "Dropping persisted transaction that does not decode",
			log.FieldOperation, log.OpLoad,
			log.FieldTransactionID, sk.ID,
			"index", sk.Index,
			log.FieldError, sk.Err)
	}
	return txs, err
}
