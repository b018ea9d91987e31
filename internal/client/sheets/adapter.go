package sheetsclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/GregMSThompson/recovery-dashboard/internal/errs"
)

// pixels per character used to size columns
const charPixels = 8

type Adapter struct {
	svc           *gsheet.Service
	spreadsheetID string
}

// NewAdapter creates a Sheets client. Without credentials JSON it falls back to
// application default credentials.
func NewAdapter(ctx context.Context, spreadsheetID string, credentialsJSON []byte) (*Adapter, error) {
	opts := []goption.ClientOption{goption.WithScopes(gsheet.SpreadsheetsScope)}
	if len(credentialsJSON) > 0 {
		opts = append(opts, goption.WithCredentialsJSON(credentialsJSON))
	}
	return newAdapter(ctx, spreadsheetID, opts...)
}

func newAdapter(ctx context.Context, spreadsheetID string, opts ...goption.ClientOption) (*Adapter, error) {
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Adapter{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// WriteTable replaces the contents of sheetName with the header and rows,
// creating the sheet when it does not exist, and sizes each column. It returns
// a link to the sheet.
func (a *Adapter) WriteTable(ctx context.Context, sheetName string, header []string, rows [][]string, widths []int) (string, error) {
	sheetID, err := a.ensureSheet(ctx, sheetName)
	if err != nil {
		return "", err
	}

	rng := fmt.Sprintf("'%s'", sheetName)
	if _, err := a.svc.Spreadsheets.Values.Clear(a.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return "", wrap("failed to clear sheet "+sheetName, err)
	}

	values := make([][]any, 0, len(rows)+1)
	values = append(values, toRow(header))
	for _, r := range rows {
		values = append(values, toRow(r))
	}
	vr := &gsheet.ValueRange{Values: values}
	_, err = a.svc.Spreadsheets.Values.Update(a.spreadsheetID, rng+"!A1", vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", wrap("failed to write sheet "+sheetName, err)
	}

	if len(widths) > 0 {
		reqs := make([]*gsheet.Request, 0, len(widths))
		for i, w := range widths {
			reqs = append(reqs, &gsheet.Request{
				UpdateDimensionProperties: &gsheet.UpdateDimensionPropertiesRequest{
					Range: &gsheet.DimensionRange{
						SheetId:    sheetID,
						Dimension:  "COLUMNS",
						StartIndex: int64(i),
						EndIndex:   int64(i + 1),
					},
					Properties: &gsheet.DimensionProperties{PixelSize: int64(w * charPixels)},
					Fields:     "pixelSize",
				},
			})
		}
		_, err := a.svc.Spreadsheets.BatchUpdate(a.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{Requests: reqs}).Context(ctx).Do()
		if err != nil {
			return "", wrap("failed to size columns of "+sheetName, err)
		}
	}

	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit#gid=%d", a.spreadsheetID, sheetID), nil
}

func (a *Adapter) ensureSheet(ctx context.Context, sheetName string) (int64, error) {
	ss, err := a.svc.Spreadsheets.Get(a.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, wrap("failed to read spreadsheet", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == sheetName {
			return s.Properties.SheetId, nil
		}
	}

	resp, err := a.svc.Spreadsheets.BatchUpdate(a.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: sheetName}},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return 0, wrap("failed to add sheet "+sheetName, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return 0, errs.NewExternalServiceError("sheets", "add sheet returned no properties", false, nil)
	}
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

func toRow(cells []string) []any {
	row := make([]any, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}

func wrap(message string, err error) error {
	transient := false
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		transient = gerr.Code == http.StatusTooManyRequests || gerr.Code >= http.StatusInternalServerError
	}
	return errs.NewExternalServiceError("sheets", message, transient, err)
}
