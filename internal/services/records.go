package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/GregMSThompson/recovery-dashboard/internal/errs"
	"github.com/GregMSThompson/recovery-dashboard/internal/models"
	"github.com/GregMSThompson/recovery-dashboard/pkg/logger"
)

// recordWriter is the write side of the record repository.
type recordWriter interface {
	SaveFiles(ctx context.Context, files []models.BankFileRecord) error
	SaveCollections(ctx context.Context, collections []models.CollectionRecord) error
}

type recordService struct {
	store recordWriter
}

func NewRecordService(store recordWriter) *recordService {
	return &recordService{store: store}
}

// ImportFiles replaces the stored bank files. Last write wins.
func (s *recordService) ImportFiles(ctx context.Context, files []models.BankFileRecord) (int, error) {
	for i := range files {
		f := &files[i]
		if f.FileNumber == "" {
			return 0, errs.NewValidationError(fmt.Sprintf("file %d: fileNumber is required", i))
		}
		if f.Outstanding.IsNegative() {
			return 0, errs.NewValidationError(fmt.Sprintf("file %s: outstanding must not be negative", f.FileNumber))
		}
		if f.ExpiryDate != nil && !f.ExpiryDate.IsValid() {
			return 0, errs.NewValidationError(fmt.Sprintf("file %s: invalid expiry date", f.FileNumber))
		}
		if f.AssignmentStatus == "" {
			f.AssignmentStatus = models.AssignmentAssigned
			if f.AgentName == "" {
				f.AssignmentStatus = models.AssignmentUnassigned
			}
		}
	}

	if err := s.store.SaveFiles(ctx, files); err != nil {
		return 0, err
	}
	logger.FromContext(ctx).Info("bank files imported", "count", len(files))
	return len(files), nil
}

// ImportCollections replaces the stored collection entries. Entries without an
// id get a fresh one; unknown approval statuses become pending.
func (s *recordService) ImportCollections(ctx context.Context, collections []models.CollectionRecord) (int, error) {
	for i := range collections {
		c := &collections[i]
		if c.Amount.IsNegative() {
			return 0, errs.NewValidationError(fmt.Sprintf("collection %d: amount must not be negative", i))
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		switch c.Status {
		case models.ApprovalApproved, models.ApprovalPending, models.ApprovalRejected:
		default:
			c.Status = models.ApprovalPending
		}
	}

	if err := s.store.SaveCollections(ctx, collections); err != nil {
		return 0, err
	}
	logger.FromContext(ctx).Info("collections imported", "count", len(collections))
	return len(collections), nil
}
