package bootstrap

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/GregMSThompson/recovery-dashboard/internal/config"
	"github.com/GregMSThompson/recovery-dashboard/internal/store"
	"github.com/GregMSThompson/recovery-dashboard/pkg/logger"
)

func InitFirestore(ctx context.Context, projectID string) (*firestore.Client, error) {
	return firestore.NewClient(ctx, projectID)
}

// initKV opens the record store selected by STOREBACKEND.
func (bs *Bootstrap) initKV(ctx context.Context, cfg *config.Config) (store.KV, error) {
	log := logger.FromContext(ctx)

	switch cfg.StoreBackend {
	case config.BackendFirestore:
		client, err := InitFirestore(ctx, cfg.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("init firestore: %w", err)
		}
		bs.Firestore = client
		bs.onClose(client.Close)
		log.Info("using firestore record store", "collection", cfg.FirestoreCollection)
		return store.NewFirestoreKV(client, cfg.FirestoreCollection), nil

	case config.BackendSQLite:
		kv, err := store.NewSQLiteKV(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
		bs.onClose(kv.Close)
		log.Info("using sqlite record store", "path", cfg.SQLitePath)
		return kv, nil

	default:
		log.Warn("using in-memory record store; data is lost on restart")
		return store.NewMemoryKV(), nil
	}
}
