package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPeriodExport renders a period-close workbook to disk.
	TaskPeriodExport = "report:period_export"
)

// PeriodExportPayload selects what the exported workbook covers.
type PeriodExportPayload struct {
	PeriodLabel string   `json:"period_label"`
	Locations   []string `json:"locations,omitempty"`
	Items       []string `json:"items,omitempty"`
	RequestedBy string   `json:"requested_by"`
}

// NewPeriodExportTask constructs an Asynq task for a workbook export.
func NewPeriodExportTask(payload PeriodExportPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPeriodExport, body, asynq.Queue(QueueDefault)), nil
}
