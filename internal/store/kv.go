package store

import "context"

// Record collection keys.
const (
	KeyBankFiles         = "bankFiles"
	KeyCollectionEntries = "collectionEntries"
)

// ChangeEvent carries the new raw payload of a key. Payload is nil when the
// key was removed.
type ChangeEvent struct {
	Key     string
	Payload []byte
}

// KV is the external key-value store holding the raw record collections.
// Get returns a nil payload and no error when the key is absent. Watch blocks,
// calling fn for every change to one of keys until ctx is done.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, payload []byte) error
	Watch(ctx context.Context, keys []string, fn func(ChangeEvent)) error
}
