package store

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/recovery-dashboard/internal/models"
	"github.com/GregMSThompson/recovery-dashboard/pkg/helpers"
	"github.com/GregMSThompson/recovery-dashboard/pkg/logger"
)

// storedBankFile is the loose shape written by the dashboard. Amounts and dates
// are decoded field by field so one bad value does not drop the collection.
type storedBankFile struct {
	ClientID         string          `json:"clientId"`
	ClientName       string          `json:"clientName"`
	FileNumber       string          `json:"fileNumber"`
	AccountNumber    string          `json:"accountNumber"`
	BankName         string          `json:"bankName"`
	ProductType      string          `json:"productType"`
	Outstanding      json.RawMessage `json:"outstanding"`
	AllegationDate   string          `json:"allegationDate"`
	ExpiryDate       string          `json:"expiryDate"`
	AgentName        string          `json:"agentName"`
	AssignmentStatus string          `json:"assignmentStatus"`
	LastAction       string          `json:"lastAction"`
}

type storedCollection struct {
	ID          string          `json:"id"`
	AgentName   string          `json:"agentName"`
	FileNumber  string          `json:"fileNumber"`
	ClientName  string          `json:"clientName"`
	BankName    string          `json:"bankName"`
	ProductType string          `json:"productType"`
	Amount      json.RawMessage `json:"amountCollected"`
	Date        string          `json:"collectionDate"`
	Status      string          `json:"status"`
}

// RecordListener receives freshly parsed collections after a store change.
// Either callback may be nil.
type RecordListener struct {
	OnFiles       func(ctx context.Context, files []models.BankFileRecord)
	OnCollections func(ctx context.Context, collections []models.CollectionRecord)
}

type recordRepository struct {
	kv KV

	mu        sync.RWMutex
	listeners map[int]RecordListener
	nextID    int
}

func NewRecordRepository(kv KV) *recordRepository {
	return &recordRepository{kv: kv, listeners: make(map[int]RecordListener)}
}

// LoadFiles never fails: a missing or malformed collection reads as empty.
func (r *recordRepository) LoadFiles(ctx context.Context) []models.BankFileRecord {
	payload, ok := r.read(ctx, KeyBankFiles)
	if !ok {
		return []models.BankFileRecord{}
	}
	return parseFiles(ctx, payload)
}

// LoadCollections never fails: a missing or malformed collection reads as
// empty.
func (r *recordRepository) LoadCollections(ctx context.Context) []models.CollectionRecord {
	payload, ok := r.read(ctx, KeyCollectionEntries)
	if !ok {
		return []models.CollectionRecord{}
	}
	return parseCollections(ctx, payload)
}

func (r *recordRepository) SaveFiles(ctx context.Context, files []models.BankFileRecord) error {
	return r.write(ctx, KeyBankFiles, files)
}

func (r *recordRepository) SaveCollections(ctx context.Context, collections []models.CollectionRecord) error {
	return r.write(ctx, KeyCollectionEntries, collections)
}

// Subscribe registers l for change notifications delivered by Watch.
func (r *recordRepository) Subscribe(l RecordListener) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = l
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

// Watch forwards store changes of the two record keys to subscribers until
// ctx is done.
func (r *recordRepository) Watch(ctx context.Context) error {
	return r.kv.Watch(ctx, []string{KeyBankFiles, KeyCollectionEntries}, func(ev ChangeEvent) {
		r.dispatch(ctx, ev)
	})
}

func (r *recordRepository) dispatch(ctx context.Context, ev ChangeEvent) {
	r.mu.RLock()
	listeners := make([]RecordListener, 0, len(r.listeners))
	for _, l := range r.listeners {
		listeners = append(listeners, l)
	}
	r.mu.RUnlock()

	switch ev.Key {
	case KeyBankFiles:
		files := parseFiles(ctx, ev.Payload)
		for _, l := range listeners {
			if l.OnFiles != nil {
				l.OnFiles(ctx, files)
			}
		}
	case KeyCollectionEntries:
		collections := parseCollections(ctx, ev.Payload)
		for _, l := range listeners {
			if l.OnCollections != nil {
				l.OnCollections(ctx, collections)
			}
		}
	default:
		logger.FromContext(ctx).Debug("ignoring change to unknown key", "key", ev.Key)
	}
}

func (r *recordRepository) read(ctx context.Context, key string) ([]byte, bool) {
	payload, err := r.kv.Get(ctx, key)
	if err != nil {
		logger.FromContext(ctx).Error("failed to read records", "key", key, "error", err)
		return nil, false
	}
	return payload, len(bytes.TrimSpace(payload)) > 0
}

func (r *recordRepository) write(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.kv.Set(ctx, key, payload)
}

// --- Parsing and defaulting ---

func parseFiles(ctx context.Context, payload []byte) []models.BankFileRecord {
	files := []models.BankFileRecord{}
	if len(bytes.TrimSpace(payload)) == 0 {
		return files
	}
	var raw []storedBankFile
	if err := json.Unmarshal(payload, &raw); err != nil {
		logger.FromContext(ctx).Error("failed to parse stored records", "key", KeyBankFiles, "error", err)
		return files
	}
	for _, s := range raw {
		files = append(files, models.BankFileRecord{
			ClientID:         strings.TrimSpace(s.ClientID),
			ClientName:       strings.TrimSpace(s.ClientName),
			FileNumber:       strings.TrimSpace(s.FileNumber),
			AccountNumber:    strings.TrimSpace(s.AccountNumber),
			BankName:         strings.TrimSpace(s.BankName),
			ProductType:      strings.TrimSpace(s.ProductType),
			Outstanding:      parseAmount(s.Outstanding),
			AllegationDate:   parseDate(s.AllegationDate),
			ExpiryDate:       parseDate(s.ExpiryDate),
			AgentName:        strings.TrimSpace(s.AgentName),
			AssignmentStatus: assignmentStatus(s.AssignmentStatus, s.AgentName),
			LastAction:       s.LastAction,
		})
	}
	return files
}

func parseCollections(ctx context.Context, payload []byte) []models.CollectionRecord {
	collections := []models.CollectionRecord{}
	if len(bytes.TrimSpace(payload)) == 0 {
		return collections
	}
	var raw []storedCollection
	if err := json.Unmarshal(payload, &raw); err != nil {
		logger.FromContext(ctx).Error("failed to parse stored records", "key", KeyCollectionEntries, "error", err)
		return collections
	}
	for _, s := range raw {
		collections = append(collections, models.CollectionRecord{
			ID:          strings.TrimSpace(s.ID),
			AgentName:   strings.TrimSpace(s.AgentName),
			FileNumber:  strings.TrimSpace(s.FileNumber),
			ClientName:  strings.TrimSpace(s.ClientName),
			BankName:    strings.TrimSpace(s.BankName),
			ProductType: strings.TrimSpace(s.ProductType),
			Amount:      parseAmount(s.Amount),
			CollectedAt: parseInstant(s.Date),
			Status:      approvalStatus(s.Status),
		})
	}
	return collections
}

// parseAmount accepts a JSON number or numeric string. Anything else, and
// negative values, read as zero.
func parseAmount(raw json.RawMessage) decimal.Decimal {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return decimal.Zero
	}
	if unquoted, err := unquote(text); err == nil {
		text = unquoted
	}
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	d, err := decimal.NewFromString(text)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func unquote(text string) (string, error) {
	var s string
	err := json.Unmarshal([]byte(text), &s)
	return s, err
}

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// parseDate reads a calendar date. Unparseable input reads as absent.
func parseDate(s string) *civil.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if d, err := civil.ParseDate(s); err == nil && d.IsValid() {
		return &d
	}
	if t := parseInstant(s); t != nil {
		return helpers.Ptr(civil.DateOf(*t))
	}
	return nil
}

// parseInstant reads a timestamp; values without a zone are taken as UTC.
func parseInstant(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func approvalStatus(s string) models.ApprovalStatus {
	switch models.ApprovalStatus(strings.ToLower(strings.TrimSpace(s))) {
	case models.ApprovalApproved:
		return models.ApprovalApproved
	case models.ApprovalRejected:
		return models.ApprovalRejected
	default:
		return models.ApprovalPending
	}
}

func assignmentStatus(s, agent string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case models.AssignmentUnassigned:
		return models.AssignmentUnassigned
	case models.AssignmentAssigned:
		return models.AssignmentAssigned
	}
	if strings.TrimSpace(agent) == "" {
		return models.AssignmentUnassigned
	}
	return models.AssignmentAssigned
}
