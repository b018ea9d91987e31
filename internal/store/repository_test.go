package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/recovery-dashboard/internal/models"
	"github.com/GregMSThompson/recovery-dashboard/pkg/helpers"
)

type failingKV struct{}

func (failingKV) Get(context.Context, string) ([]byte, error) { return nil, errors.New("boom") }
func (failingKV) Set(context.Context, string, []byte) error { return errors.New("boom") }
func (failingKV) Watch(context.Context, []string, func(ChangeEvent)) error {
	return errors.New("boom")
}

func TestLoadAbsentAndMalformed(t *testing.T) {
	ctx := helpers.TestCtx()
	kv := NewMemoryKV()
	repo := NewRecordRepository(kv)

	if got := repo.LoadFiles(ctx); got == nil || len(got) != 0 {
		t.Fatalf("absent files: got %v", got)
	}

	for _, payload := range []string{"{not json", `{"fileNumber":"F1"}`, `"text"`, "   "} {
		_ = kv.Set(ctx, KeyBankFiles, []byte(payload))
		_ = kv.Set(ctx, KeyCollectionEntries, []byte(payload))
		if got := repo.LoadFiles(ctx); len(got) != 0 {
			t.Fatalf("payload %q: expected no files, got %v", payload, got)
		}
		if got := repo.LoadCollections(ctx); len(got) != 0 {
			t.Fatalf("payload %q: expected no collections, got %v", payload, got)
		}
	}

	broken := NewRecordRepository(failingKV{})
	if got := broken.LoadCollections(ctx); got == nil || len(got) != 0 {
		t.Fatalf("store failure: got %v", got)
	}
}

func TestLoadFilesDefaults(t *testing.T) {
	ctx := helpers.TestCtx()
	kv := NewMemoryKV()
	payload := `[
		{"clientId":" C-1 ","fileNumber":"F1","bankName":"HBL","productType":"Credit Card",
		 "outstanding":1500.75,"allegationDate":"2024-01-05","expiryDate":"2024-07-01",
		 "agentName":"Zara","lastAction":"called"},
		{"fileNumber":"F2","outstanding":"2,000","expiryDate":"2024-02-30"},
		{"fileNumber":"F3","outstanding":-5,"expiryDate":"2024-03-01T10:00:00Z","assignmentStatus":"Assigned"},
		{"fileNumber":"F4","outstanding":"abc","allegationDate":"soon"}
	]`
	_ = kv.Set(ctx, KeyBankFiles, []byte(payload))

	files := NewRecordRepository(kv).LoadFiles(ctx)
	if len(files) != 4 {
		t.Fatalf("expected 4 files, got %d", len(files))
	}

	f1 := files[0]
	if f1.ClientID != "C-1" || !f1.Outstanding.Equal(decimal.RequireFromString("1500.75")) {
		t.Fatalf("f1 mismatch: %+v", f1)
	}
	if f1.ExpiryDate == nil || *f1.ExpiryDate != (civil.Date{Year: 2024, Month: time.July, Day: 1}) {
		t.Fatalf("f1 expiry: %v", f1.ExpiryDate)
	}
	if f1.AssignmentStatus != models.AssignmentAssigned {
		t.Fatalf("f1 assignment: %s", f1.AssignmentStatus)
	}

	f2 := files[1]
	if !f2.Outstanding.Equal(decimal.NewFromInt(2000)) || f2.ExpiryDate != nil {
		t.Fatalf("f2 mismatch: %+v", f2)
	}
	if f2.AssignmentStatus != models.AssignmentUnassigned {
		t.Fatalf("f2 without agent should be unassigned, got %s", f2.AssignmentStatus)
	}

	f3 := files[2]
	if !f3.Outstanding.IsZero() || f3.ExpiryDate == nil || f3.ExpiryDate.Day != 1 || f3.AssignmentStatus != models.AssignmentAssigned {
		t.Fatalf("f3 mismatch: %+v", f3)
	}

	f4 := files[3]
	if !f4.Outstanding.IsZero() || f4.AllegationDate != nil {
		t.Fatalf("f4 mismatch: %+v", f4)
	}
}

func TestLoadCollectionsDefaults(t *testing.T) {
	ctx := helpers.TestCtx()
	kv := NewMemoryKV()
	payload := `[
		{"id":"c1","agentName":"Zara","amountCollected":"250.50","collectionDate":"2024-01-31T23:00","status":"Approved"},
		{"id":"c2","amountCollected":100,"collectionDate":"not a date","status":"weird"},
		{"id":"c3","amountCollected":null,"status":"rejected"}
	]`
	_ = kv.Set(ctx, KeyCollectionEntries, []byte(payload))

	cols := NewRecordRepository(kv).LoadCollections(ctx)
	if len(cols) != 3 {
		t.Fatalf("expected 3 collections, got %d", len(cols))
	}
	want := time.Date(2024, time.January, 31, 23, 0, 0, 0, time.UTC)
	if cols[0].Status != models.ApprovalApproved || cols[0].CollectedAt == nil || !cols[0].CollectedAt.Equal(want) {
		t.Fatalf("c1 mismatch: %+v", cols[0])
	}
	if cols[1].Status != models.ApprovalPending || cols[1].CollectedAt != nil {
		t.Fatalf("c2 mismatch: %+v", cols[1])
	}
	if cols[2].Status != models.ApprovalRejected || !cols[2].Amount.IsZero() {
		t.Fatalf("c3 mismatch: %+v", cols[2])
	}
}

func TestSaveThenLoad(t *testing.T) {
	ctx := helpers.TestCtx()
	repo := NewRecordRepository(NewMemoryKV())
	expiry := civil.Date{Year: 2025, Month: time.March, Day: 9}
	at := time.Date(2024, time.May, 2, 14, 30, 0, 0, time.UTC)

	files := []models.BankFileRecord{{
		ClientID: "C-1", FileNumber: "F1", BankName: "UBL", ProductType: "Auto Loan",
		Outstanding: decimal.RequireFromString("123456789.01"), ExpiryDate: &expiry,
		AgentName: "Ali", AssignmentStatus: models.AssignmentAssigned,
	}}
	cols := []models.CollectionRecord{{
		ID: "c1", AgentName: "Ali", FileNumber: "F1", Amount: decimal.NewFromInt(5000),
		CollectedAt: &at, Status: models.ApprovalApproved,
	}}

	if err := repo.SaveFiles(ctx, files); err != nil {
		t.Fatalf("SaveFiles error: %v", err)
	}
	if err := repo.SaveCollections(ctx, cols); err != nil {
		t.Fatalf("SaveCollections error: %v", err)
	}

	gotFiles := repo.LoadFiles(ctx)
	if len(gotFiles) != 1 || !gotFiles[0].Outstanding.Equal(files[0].Outstanding) || *gotFiles[0].ExpiryDate != expiry {
		t.Fatalf("files round trip: %+v", gotFiles)
	}
	gotCols := repo.LoadCollections(ctx)
	if len(gotCols) != 1 || !gotCols[0].CollectedAt.Equal(at) || !gotCols[0].Amount.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("collections round trip: %+v", gotCols)
	}
}

func (s *memoryKV) watcherCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.watchers)
}

func TestSubscribeReceivesParsedChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(helpers.TestCtx())
	defer cancel()

	kv := NewMemoryKV()
	repo := NewRecordRepository(kv)

	filesCh := make(chan []models.BankFileRecord, 4)
	colsCh := make(chan []models.CollectionRecord, 4)
	unsubscribe := repo.Subscribe(RecordListener{
		OnFiles:       func(_ context.Context, f []models.BankFileRecord) { filesCh <- f },
		OnCollections: func(_ context.Context, c []models.CollectionRecord) { colsCh <- c },
	})

	done := make(chan error, 1)
	go func() { done <- repo.Watch(ctx) }()
	for i := 0; i < 200 && kv.watcherCount() == 0; i++ {
		time.Sleep(5 * time.Millisecond)
	}

	_ = kv.Set(ctx, "unrelated", []byte(`[]`))
	_ = kv.Set(ctx, KeyBankFiles, []byte(`[{"fileNumber":"F9"}]`))
	_ = kv.Set(ctx, KeyCollectionEntries, []byte(`broken`))

	select {
	case got := <-filesCh:
		if len(got) != 1 || got[0].FileNumber != "F9" {
			t.Fatalf("unexpected files: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no files notification")
	}
	select {
	case got := <-colsCh:
		if len(got) != 0 {
			t.Fatalf("malformed payload should give empty collections, got %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no collections notification")
	}

	unsubscribe()
	_ = kv.Set(ctx, KeyBankFiles, []byte(`[]`))
	select {
	case got := <-filesCh:
		t.Fatalf("notified after unsubscribe: %+v", got)
	default:
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watch returned error: %v", err)
	}
}
