package bootstrap

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"

	sheetsclient "github.com/GregMSThompson/recovery-dashboard/internal/client/sheets"
	"github.com/GregMSThompson/recovery-dashboard/internal/config"
	"github.com/GregMSThompson/recovery-dashboard/internal/store"
)

// initSheets builds the Sheets adapter. Service account credentials come from
// Secret Manager when SHEETSCREDENTIALSSECRET is set, otherwise from
// application default credentials.
func (bs *Bootstrap) initSheets(ctx context.Context, cfg *config.Config) (*sheetsclient.Adapter, error) {
	var creds []byte
	if cfg.SheetsCredentialsSecret != "" {
		client, err := secretmanager.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("init secret manager: %w", err)
		}
		bs.onClose(client.Close)

		creds, err = store.NewSecretsStore(client, cfg.ProjectID).GetSecret(ctx, cfg.SheetsCredentialsSecret)
		if err != nil {
			return nil, err
		}
	}
	return sheetsclient.NewAdapter(ctx, cfg.SpreadsheetID, creds)
}
