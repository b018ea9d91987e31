package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/GregMSThompson/recovery-dashboard/internal/dto"
	"github.com/GregMSThompson/recovery-dashboard/pkg/logger"
)

// DefaultKinds are the reports produced by a scheduled run.
var DefaultKinds = []string{
	dto.ReportCollections,
	dto.ReportAgentPerformance,
	dto.ReportBankDistribution,
	dto.ReportExpiry,
	dto.ReportPortfolio,
}

type exporter interface {
	Export(ctx context.Context, kind string, c dto.FilterCriteria, format string) (*dto.ExportedFile, error)
}

type fileSaver interface {
	Save(ctx context.Context, file dto.ExportedFile) (string, error)
}

// ExportScheduler exports every configured report kind in every configured
// format on a cron schedule. Files with data go to the sink; published
// exports (sheets) only log their location.
type ExportScheduler struct {
	log      *slog.Logger
	cron     *cron.Cron
	exporter exporter
	sink     fileSaver
	kinds    []string
	formats  []string
	timeout  time.Duration
}

func NewExportScheduler(log *slog.Logger, exporter exporter, sink fileSaver, formats []string) *ExportScheduler {
	return &ExportScheduler{
		log:      log,
		cron:     cron.New(cron.WithLocation(time.UTC)),
		exporter: exporter,
		sink:     sink,
		kinds:    DefaultKinds,
		formats:  formats,
		timeout:  5 * time.Minute,
	}
}

// Schedule registers the export run for a standard five-field cron spec.
func (s *ExportScheduler) Schedule(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(logger.ToContext(context.Background(), s.log), s.timeout)
		defer cancel()
		if err := s.RunOnce(ctx); err != nil {
			s.log.Error("scheduled export failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}
	s.log.Info("export scheduled", "spec", spec, "kinds", len(s.kinds), "formats", s.formats)
	return nil
}

func (s *ExportScheduler) Start() { s.cron.Start() }

// Stop waits for a running export to finish.
func (s *ExportScheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce exports every kind and format with default criteria. It keeps going
// past failures and returns them joined.
func (s *ExportScheduler) RunOnce(ctx context.Context) error {
	log := logger.FromContext(ctx)
	start := time.Now()

	var failures []error
	exported := 0
	for _, kind := range s.kinds {
		for _, format := range s.formats {
			if err := ctx.Err(); err != nil {
				return errors.Join(append(failures, err)...)
			}
			file, err := s.exporter.Export(ctx, kind, dto.FilterCriteria{}, format)
			if err != nil {
				failures = append(failures, fmt.Errorf("%s/%s: %w", kind, format, err))
				continue
			}
			if file.Location != "" {
				log.Info("report published", "kind", kind, "format", format, "location", file.Location)
				exported++
				continue
			}
			if _, err := s.sink.Save(ctx, *file); err != nil {
				failures = append(failures, fmt.Errorf("%s/%s: %w", kind, format, err))
				continue
			}
			exported++
		}
	}

	log.Info("export run finished",
		"exported", exported,
		"failed", len(failures),
		"duration_ms", time.Since(start).Milliseconds())
	return errors.Join(failures...)
}
