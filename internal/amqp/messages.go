package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// LedgerChangedMessage announces that a committed command changed some
// persisted keys. Consumers re-read the keys from the primary store; the
// message carries no ledger data.
type LedgerChangedMessage struct {
	Operation string    `json:"operation"`
	Keys      []string  `json:"keys"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerChangedMessage creates a message stamped with the current time
func NewLedgerChangedMessage(operation string, keys []string, version int64) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Operation: operation,
		Keys:      append([]string(nil), keys...),
		Version:   version,
		Timestamp: time.Now(),
	}
}

func (m *LedgerChangedMessage) Validate() error {
	if m.Operation == "" {
		return errors.New("missing operation")
	}
	if len(m.Keys) == 0 {
		return errors.New("missing keys")
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON decodes and validates a message.
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
