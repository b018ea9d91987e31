package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/GregMSThompson/recovery-dashboard/internal/bootstrap"
	"github.com/GregMSThompson/recovery-dashboard/internal/config"
	"github.com/GregMSThompson/recovery-dashboard/internal/handlers"
	"github.com/GregMSThompson/recovery-dashboard/internal/response"
	"github.com/GregMSThompson/recovery-dashboard/internal/router"
	"github.com/GregMSThompson/recovery-dashboard/internal/services"
	"github.com/GregMSThompson/recovery-dashboard/internal/store"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// stores
	repo := store.NewRecordRepository(bs.KV)

	// services
	targets := services.Targets{Monthly: cfg.MonthlyTarget, PerAgent: cfg.AgentTarget}
	dserv := services.NewDashboardService(repo, targets)
	eserv := services.NewExpiryService(repo)
	rserv := services.NewReportService(repo, targets, cfg.SystemName)
	if bs.Sheets != nil {
		rserv.WithSheets(bs.Sheets)
	}
	recserv := services.NewRecordService(repo)

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.Firebase = bs.Firebase
	deps.DashboardSvc = dserv
	deps.ExpirySvc = eserv
	deps.ReportSvc = rserv
	deps.RecordSvc = recserv

	// router
	r := router.NewRouter(deps)
	bs.Log.Info("listening", "port", cfg.Port)
	err = http.ListenAndServe(":"+cfg.Port, r)
	exitOnError("server start failed", err, bs.Log)
}
