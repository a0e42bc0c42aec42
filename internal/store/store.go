package store

import (
	"context"
	"errors"
)

// Keys under which the task store persists its state.
const (
	KeyTasks      = "tasks"
	KeyCategories = "categories"
	KeySettings   = "settings"
)

// ErrPersistence marks a failed read or write against the backing storage.
var ErrPersistence = errors.New("persistence failure")

// Store defines the key-value persistence the task store is built on. Values
// are JSON documents; a missing key is reported as found == false, not as an error.
type Store interface {
	GetItem(ctx context.Context, key string, dst any) (found bool, err error)
	SetItem(ctx context.Context, key string, value any) error

	// Lifecycle
	Close() error
}
