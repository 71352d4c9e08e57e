package core

import "fmt"

// ValidationError reports a rejected transaction submission. It is meant to
// be shown to the user and never reaches storage.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// StorageReadError means the stored log could not be read or decoded.
type StorageReadError struct {
	Key string
	Err error
}

func (e *StorageReadError) Error() string {
	return fmt.Sprintf("read transaction log %q: %v", e.Key, e.Err)
}

func (e *StorageReadError) Unwrap() error { return e.Err }

// StorageWriteError means the key-value provider rejected a write.
type StorageWriteError struct {
	Key string
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("write transaction log %q: %v", e.Key, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }
