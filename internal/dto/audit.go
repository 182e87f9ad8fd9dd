package dto

import (
	"time"

	"github.com/transferpath/degree-audit-api/internal/engine"
	"github.com/transferpath/degree-audit-api/internal/models"
)

// AuditReport is the violation-centric view of a progress report.
type AuditReport struct {
	PlanID              string            `json:"plan_id"`
	RequirementSetID    string            `json:"requirement_set_id"`
	View                models.ViewFilter `json:"view"`
	Percent             float64           `json:"percent"`
	CompletedCredits    float64           `json:"completed_credits"`
	TotalCredits        float64           `json:"total_credits"`
	Violations          []AuditViolation  `json:"violations"`
	Warnings            []engine.Warning  `json:"warnings,omitempty"`
	KeywordTableVersion string            `json:"keyword_table_version"`
	GeneratedAt         time.Time         `json:"generated_at"`
}

// AuditViolation is one failing constraint with its location.
type AuditViolation struct {
	Category    string                `json:"category"`
	GroupID     string                `json:"group_id"`
	GroupName   string                `json:"group_name"`
	Type        models.ConstraintType `json:"type"`
	Reason      string                `json:"reason"`
	ConfigError bool                  `json:"config_error,omitempty"`
}

// ExportRequest captures POST /plans/:id/audit/export payload.
type ExportRequest struct {
	Format models.ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
	View   models.ViewFilter   `json:"view" validate:"omitempty,oneof=all planned in_progress completed"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID     string                 `json:"id"`
	Status models.ExportJobStatus `json:"status"`
	Format models.ExportFormat    `json:"format"`
}

// ExportStatusResponse exposes job state plus the signed download URL
// once the job completes.
type ExportStatusResponse struct {
	ID          string                 `json:"id"`
	Status      models.ExportJobStatus `json:"status"`
	Format      models.ExportFormat    `json:"format"`
	DownloadURL string                 `json:"download_url,omitempty"`
	ExpiresAt   *time.Time             `json:"expires_at,omitempty"`
	Error       string                 `json:"error,omitempty"`
}
