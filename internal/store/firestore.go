package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/recovery-dashboard/internal/errs"
	"github.com/GregMSThompson/recovery-dashboard/pkg/logger"
)

const defaultRecordCollection = "record_store"

// kvDocument is one stored key. The payload is kept as the raw JSON text the
// dashboard writes.
type kvDocument struct {
	Payload   string    `firestore:"payload"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

type firestoreKV struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreKV(client *firestore.Client, collection string) *firestoreKV {
	if collection == "" {
		collection = defaultRecordCollection
	}
	return &firestoreKV{client: client, collection: collection}
}

func (s *firestoreKV) doc(key string) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(key)
}

func (s *firestoreKV) Get(ctx context.Context, key string) ([]byte, error) {
	snap, err := s.doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, errs.NewDatabaseError("read", "failed to get "+key, err)
	}
	var d kvDocument
	if err := snap.DataTo(&d); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse "+key, err)
	}
	return []byte(d.Payload), nil
}

func (s *firestoreKV) Set(ctx context.Context, key string, payload []byte) error {
	_, err := s.doc(key).Set(ctx, kvDocument{Payload: string(payload), UpdatedAt: time.Now()})
	if err != nil {
		return errs.NewDatabaseError("update", "failed to set "+key, err)
	}
	return nil
}

// Watch listens to the snapshot stream of each key's document.
func (s *firestoreKV) Watch(ctx context.Context, keys []string, fn func(ChangeEvent)) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, key := range keys {
		g.Go(func() error {
			return s.watchKey(ctx, key, fn)
		})
	}
	return g.Wait()
}

func (s *firestoreKV) watchKey(ctx context.Context, key string, fn func(ChangeEvent)) error {
	log := logger.FromContext(ctx)
	it := s.doc(key).Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err != nil {
			if ctx.Err() != nil || status.Code(err) == codes.Canceled {
				return nil
			}
			return errs.NewDatabaseError("watch", "snapshot stream failed for "+key, err)
		}
		if !snap.Exists() {
			fn(ChangeEvent{Key: key})
			continue
		}
		var d kvDocument
		if err := snap.DataTo(&d); err != nil {
			log.Warn("failed to decode record snapshot", "key", key, "error", err)
			continue
		}
		fn(ChangeEvent{Key: key, Payload: []byte(d.Payload)})
	}
}
