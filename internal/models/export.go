package models

import "time"

// ExportFormat enumerates supported audit export renderings.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportJobStatus tracks the lifecycle of an audit export job.
type ExportJobStatus string

const (
	ExportJobQueued     ExportJobStatus = "queued"
	ExportJobProcessing ExportJobStatus = "processing"
	ExportJobCompleted  ExportJobStatus = "completed"
	ExportJobFailed     ExportJobStatus = "failed"
)

// ExportJob records an asynchronous audit export request.
type ExportJob struct {
	ID          string          `db:"id" json:"id"`
	PlanID      string          `db:"plan_id" json:"plan_id"`
	RequestedBy string          `db:"requested_by" json:"requested_by"`
	Format      ExportFormat    `db:"format" json:"format"`
	View        ViewFilter      `db:"view" json:"view"`
	Status      ExportJobStatus `db:"status" json:"status"`
	FilePath    string          `db:"file_path" json:"-"`
	Error       string          `db:"error" json:"error,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}
