// Package ledger stores a user's transaction log as one JSON array under a
// user-scoped key.
//
// Append is a read-modify-write of the whole array. It is not atomic: two
// concurrent writers for the same user can overwrite each other's
// transaction. Only one writer per user is expected.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gofinances/internal/core"
	"gofinances/internal/kv"
)

// DefaultNamespace prefixes every storage key.
const DefaultNamespace = "@gofinances"

type Log struct {
	store     kv.Store
	namespace string
}

func New(store kv.Store, namespace string) *Log {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Log{store: store, namespace: namespace}
}

// Key returns the storage key of userID's log.
func (l *Log) Key(userID string) string {
	return fmt.Sprintf("%s:transactions_user:%s", l.namespace, userID)
}

// Load returns the user's transactions in append order. An absent key is an
// empty log. Provider and decoding failures are *core.StorageReadError.
func (l *Log) Load(ctx context.Context, userID string) ([]core.Transaction, error) {
	if userID == "" {
		return nil, errors.New("empty user id")
	}
	key := l.Key(userID)
	raw, ok, err := l.store.Get(ctx, key)
	if err != nil {
		return nil, &core.StorageReadError{Key: key, Err: err}
	}
	if !ok || raw == "" {
		return []core.Transaction{}, nil
	}
	var txs []core.Transaction
	if err := json.Unmarshal([]byte(raw), &txs); err != nil {
		return nil, &core.StorageReadError{Key: key, Err: fmt.Errorf("decode: %w", err)}
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return txs, nil
}

// Append adds tx at the end of the user's log and writes the whole log back.
func (l *Log) Append(ctx context.Context, userID string, tx core.Transaction) error {
	txs, err := l.Load(ctx, userID)
	if err != nil {
		return err
	}
	txs = append(txs, tx)

	key := l.Key(userID)
	raw, err := json.Marshal(txs)
	if err != nil {
		return &core.StorageWriteError{Key: key, Err: fmt.Errorf("encode: %w", err)}
	}
	if err := l.store.Set(ctx, key, string(raw)); err != nil {
		return &core.StorageWriteError{Key: key, Err: err}
	}
	return nil
}
