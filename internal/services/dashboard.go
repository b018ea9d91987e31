package services

import (
	"context"
	"time"

	"github.com/GregMSThompson/recovery-dashboard/internal/dto"
	"github.com/GregMSThompson/recovery-dashboard/internal/models"
	"github.com/GregMSThompson/recovery-dashboard/pkg/logger"
)

// recordReader is the read side of the record repository.
type recordReader interface {
	LoadFiles(ctx context.Context) []models.BankFileRecord
	LoadCollections(ctx context.Context) []models.CollectionRecord
}

type dashboardService struct {
	records  recordReader
	targets  Targets
	clockNow func() time.Time
}

func NewDashboardService(records recordReader, targets Targets) *dashboardService {
	return &dashboardService{records: records, targets: targets, clockNow: time.Now}
}

// defaultCriteria is the unfiltered current-month view.
func defaultCriteria() dto.FilterCriteria {
	return dto.FilterCriteria{
		Bank:     dto.FilterAll,
		FileType: dto.FilterAll,
		Period:   dto.PeriodThisMonth,
	}
}

// GetDashboard loads both record sets and runs the full pipeline: filter,
// period simulation, aggregation.
func (s *dashboardService) GetDashboard(ctx context.Context, c dto.FilterCriteria) (*dto.DashboardResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	files := s.records.LoadFiles(ctx)
	collections := s.records.LoadCollections(ctx)
	return s.compute(ctx, files, collections, c), nil
}

func (s *dashboardService) compute(ctx context.Context, files []models.BankFileRecord, collections []models.CollectionRecord, c dto.FilterCriteria) *dto.DashboardResult {
	now := s.clockNow()
	c = defaultCriteria().Merge(c)

	files, collections, sim := s.prepare(files, collections, c, now)
	result := Aggregate(files, collections, now, s.targets)

	logger.FromContext(ctx).Debug("dashboard computed",
		"files", len(files),
		"collections", len(collections),
		"period", c.Period,
		"customRange", c.HasDateRange())

	return &dto.DashboardResult{
		Criteria:    c,
		Simulation:  sim,
		Result:      result,
		GeneratedAt: now,
	}
}

// prepare applies the filter predicates and then the period simulation.
func (s *dashboardService) prepare(files []models.BankFileRecord, collections []models.CollectionRecord, c dto.FilterCriteria, now time.Time) ([]models.BankFileRecord, []models.CollectionRecord, *dto.PeriodSimulation) {
	files = ApplyFilters(files, c)
	collections = ApplyFilters(collections, c)
	return SimulatePeriod(files, collections, c, now)
}
