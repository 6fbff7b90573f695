package repositories

import (
	"context"
	"errors"
)

var (
	ErrStateNotFound = errors.New("state not found")
	ErrStateCorrupt  = errors.New("stored state is corrupt")
)

// Entry is a single blob write. A nil Value deletes the key.
type Entry struct {
	Key   string
	Value []byte
}

// KVStore holds whole JSON blobs by key. Put applies all entries in one
// step: either every entry is written or none is.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, entries ...Entry) error
	Delete(ctx context.Context, keys ...string) error
}
