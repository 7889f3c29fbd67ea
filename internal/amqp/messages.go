package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// LedgerChangeMessage announces that one persisted ledger collection changed.
// It carries no payload; consumers reload the collection from the blob store.
type LedgerChangeMessage struct {
	Key       string    `json:"key"`
	Version   uint64    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerChangeMessage creates a change message stamped with the current time
func NewLedgerChangeMessage(key string, version uint64) *LedgerChangeMessage {
	return &LedgerChangeMessage{
		Key:       key,
		Version:   version,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangeMessageFromJSON decodes a message and rejects ones without a key.
func LedgerChangeMessageFromJSON(data []byte) (*LedgerChangeMessage, error) {
	var msg LedgerChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Key == "" {
		return nil, fmt.Errorf("ledger change message without key")
	}
	return &msg, nil
}
