package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/stockbook/stockbook/jobs"
)

// ExportJob renders period workbooks requested over the queue.
type ExportJob struct {
	service *Service
	dir     string
	logger  *slog.Logger
}

// NewExportJob constructs a job handler writing into dir.
func NewExportJob(service *Service, dir string, logger *slog.Logger) *ExportJob {
	return &ExportJob{service: service, dir: dir, logger: logger}
}

// Handle fulfils the asynq.HandlerFunc contract.
func (j *ExportJob) Handle(ctx context.Context, task *asynq.Task) error {
	var payload jobs.PeriodExportPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if strings.TrimSpace(payload.PeriodLabel) == "" {
		return asynq.SkipRetry
	}

	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(j.dir, exportFileName(payload.PeriodLabel, time.Now().UTC()))
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := j.service.WriteWorkbook(ctx, file, payload.PeriodLabel, payload.Locations, payload.Items); err != nil {
		if j.logger != nil {
			j.logger.Error("period export", slog.String("period", payload.PeriodLabel), slog.Any("error", err))
		}
		_ = os.Remove(path)
		return err
	}
	if j.logger != nil {
		j.logger.Info("period export written",
			slog.String("period", payload.PeriodLabel),
			slog.String("path", path),
			slog.String("requested_by", payload.RequestedBy))
	}
	return nil
}

func exportFileName(label string, now time.Time) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, label)
	return fmt.Sprintf("report_%s_%s.xlsx", safe, now.Format("20060102T150405"))
}
