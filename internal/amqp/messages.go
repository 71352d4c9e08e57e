package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gofinances/internal/core"
)

// TransactionRegisteredMessage announces a transaction that was appended to a
// user's log. It carries the full record so consumers never read the store.
type TransactionRegisteredMessage struct {
	UserID      string           `json:"user_id"`
	Transaction core.Transaction `json:"transaction"`
	Timestamp   time.Time        `json:"timestamp"`
}

func NewTransactionRegisteredMessage(userID string, tx core.Transaction) *TransactionRegisteredMessage {
	return &TransactionRegisteredMessage{
		UserID:      userID,
		Transaction: tx,
		Timestamp:   time.Now(),
	}
}

func (m *TransactionRegisteredMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionRegisteredMessageFromJSON decodes and validates a message body.
func TransactionRegisteredMessageFromJSON(data []byte) (*TransactionRegisteredMessage, error) {
	var msg TransactionRegisteredMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.UserID == "" {
		return nil, errors.New("message without user_id")
	}
	if err := msg.Transaction.Validate(); err != nil {
		return nil, fmt.Errorf("message transaction: %w", err)
	}
	return &msg, nil
}
