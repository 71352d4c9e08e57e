// Package kv defines the key-value storage provider the transaction log is
// persisted in.
package kv

import "context"

// Store is a durable string key-value store. Get reports an absent key with
// ok == false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}
