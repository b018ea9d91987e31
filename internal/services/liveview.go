package services

import (
	"context"
	"sync"

	"github.com/GregMSThompson/recovery-dashboard/internal/dto"
	"github.com/GregMSThompson/recovery-dashboard/internal/models"
	"github.com/GregMSThompson/recovery-dashboard/internal/store"
)

// recordSubscriber delivers freshly parsed record sets on store changes.
type recordSubscriber interface {
	Subscribe(l store.RecordListener) (unsubscribe func())
}

// LiveView keeps a dashboard current. Each change replaces one record set and
// reruns the whole pipeline over the latest pair.
type LiveView struct {
	dashboard *dashboardService
	criteria  dto.FilterCriteria
	onUpdate  func(ctx context.Context, res *dto.DashboardResult)

	mu          sync.Mutex
	files       []models.BankFileRecord
	collections []models.CollectionRecord
	latest      *dto.DashboardResult
}

func NewLiveView(dashboard *dashboardService, criteria dto.FilterCriteria, onUpdate func(ctx context.Context, res *dto.DashboardResult)) *LiveView {
	return &LiveView{dashboard: dashboard, criteria: criteria, onUpdate: onUpdate}
}

// Start loads the current records, publishes a first result and subscribes to
// further changes. Call the returned function to stop listening.
func (v *LiveView) Start(ctx context.Context, sub recordSubscriber) (stop func()) {
	v.mu.Lock()
	v.files = v.dashboard.records.LoadFiles(ctx)
	v.collections = v.dashboard.records.LoadCollections(ctx)
	v.mu.Unlock()
	v.refresh(ctx)

	return sub.Subscribe(store.RecordListener{
		OnFiles: func(ctx context.Context, files []models.BankFileRecord) {
			v.mu.Lock()
			v.files = files
			v.mu.Unlock()
			v.refresh(ctx)
		},
		OnCollections: func(ctx context.Context, collections []models.CollectionRecord) {
			v.mu.Lock()
			v.collections = collections
			v.mu.Unlock()
			v.refresh(ctx)
		},
	})
}

// Latest returns the most recent result, nil before Start.
func (v *LiveView) Latest() *dto.DashboardResult {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.latest
}

func (v *LiveView) refresh(ctx context.Context) {
	v.mu.Lock()
	res := v.dashboard.compute(ctx, v.files, v.collections, v.criteria)
	v.latest = res
	v.mu.Unlock()

	if v.onUpdate != nil {
		v.onUpdate(ctx, res)
	}
}
