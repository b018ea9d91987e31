package handlers

import (
	"log/slog"

	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/recovery-dashboard/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	Firebase        *auth.Client
	DashboardSvc    dashboardService
	ExpirySvc       expiryService
	ReportSvc       reportService
	RecordSvc       recordService
}
