package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/GregMSThompson/recovery-dashboard/internal/bootstrap"
	"github.com/GregMSThompson/recovery-dashboard/internal/config"
	"github.com/GregMSThompson/recovery-dashboard/internal/dto"
	"github.com/GregMSThompson/recovery-dashboard/internal/export"
	"github.com/GregMSThompson/recovery-dashboard/internal/scheduler"
	"github.com/GregMSThompson/recovery-dashboard/internal/services"
	"github.com/GregMSThompson/recovery-dashboard/internal/store"
	"github.com/GregMSThompson/recovery-dashboard/pkg/logger"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

// The worker keeps a live dashboard over store changes and runs scheduled
// report exports.
func main() {
	_ = godotenv.Load()

	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.ToContext(ctx, bs.Log)

	// stores
	repo := store.NewRecordRepository(bs.KV)

	// services
	targets := services.Targets{Monthly: cfg.MonthlyTarget, PerAgent: cfg.AgentTarget}
	dserv := services.NewDashboardService(repo, targets)
	rserv := services.NewReportService(repo, targets, cfg.SystemName)
	formats := []string{dto.FormatXLSX}
	if bs.Sheets != nil {
		rserv.WithSheets(bs.Sheets)
		formats = append(formats, dto.FormatSheets)
	}

	// live view
	view := services.NewLiveView(dserv, dto.FilterCriteria{}, func(ctx context.Context, res *dto.DashboardResult) {
		k := res.Result.KPIs
		logger.FromContext(ctx).Info("dashboard refreshed",
			"total_accounts", k.TotalAccounts,
			"total_outstanding", k.TotalOutstanding.String(),
			"total_overdue", k.TotalOverdue.String(),
			"total_collected", k.TotalCollected.String(),
			"expired_files", k.ExpiredFiles,
			"achievement", res.Result.Achievement.String())
	})
	unsubscribe := view.Start(ctx, repo)
	defer unsubscribe()

	go func() {
		if err := repo.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			bs.Log.Error("record watch stopped", "error", err)
		}
	}()

	// scheduled exports
	if cfg.ExportSchedule != "" {
		sched := scheduler.NewExportScheduler(bs.Log, rserv, export.NewFileSink(cfg.ExportDir), formats)
		exitOnError("schedule exports failed", sched.Schedule(cfg.ExportSchedule), bs.Log)
		sched.Start()
		defer sched.Stop()
	}

	// health endpoint for the platform
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if view.Latest() == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			bs.Log.Error("health server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	bs.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
