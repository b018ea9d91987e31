package bootstrap

import (
	"context"
	"log/slog"

	"cloud.google.com/go/firestore"
	"firebase.google.com/go/v4/auth"

	sheetsclient "github.com/GregMSThompson/recovery-dashboard/internal/client/sheets"
	"github.com/GregMSThompson/recovery-dashboard/internal/config"
	"github.com/GregMSThompson/recovery-dashboard/internal/store"
	"github.com/GregMSThompson/recovery-dashboard/pkg/logger"
)

type Bootstrap struct {
	Log       *slog.Logger
	Firestore *firestore.Client
	Firebase  *auth.Client
	KV        store.KV
	Sheets    *sheetsclient.Adapter

	closers []func() error
}

func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.NewCloudRunHandler)
	ctx := logger.ToContext(applicationCtx, bs.Log)

	if err = cfg.Validate(); err != nil {
		return bs, err
	}

	bs.KV, err = bs.initKV(ctx, cfg)
	if err != nil {
		return bs, err
	}

	if !cfg.AuthDisabled {
		bs.Firebase, err = InitFirebase(ctx, cfg.ProjectID)
		if err != nil {
			return bs, err
		}
	} else {
		bs.Log.Warn("authentication disabled")
	}

	if cfg.SheetsEnabled() {
		bs.Sheets, err = bs.initSheets(ctx, cfg)
		if err != nil {
			return bs, err
		}
	}

	bs.Log.Info("bootstrap complete",
		"store", cfg.StoreBackend,
		"auth", !cfg.AuthDisabled,
		"sheets", bs.Sheets != nil)
	return bs, nil
}

// Close releases clients in reverse order of creation.
func (bs *Bootstrap) Close() {
	for i := len(bs.closers) - 1; i >= 0; i-- {
		if err := bs.closers[i](); err != nil && bs.Log != nil {
			bs.Log.Warn("close failed", "error", err)
		}
	}
	bs.closers = nil
}

func (bs *Bootstrap) onClose(fn func() error) {
	bs.closers = append(bs.closers, fn)
}
