package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/transferpath/degree-audit-api/internal/dto"
	"github.com/transferpath/degree-audit-api/internal/engine"
	"github.com/transferpath/degree-audit-api/internal/models"
	appErrors "github.com/transferpath/degree-audit-api/pkg/errors"
	"github.com/transferpath/degree-audit-api/pkg/export"
	"github.com/transferpath/degree-audit-api/pkg/jobs"
	"github.com/transferpath/degree-audit-api/pkg/storage"
)

type progressComputer interface {
	Compute(ctx context.Context, planID string, view models.ViewFilter) (*engine.Report, bool, error)
}

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	SetStatus(ctx context.Context, id string, status models.ExportJobStatus, filePath, errMsg string) error
	ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// AuditConfig tunes export behaviour.
type AuditConfig struct {
	Enabled   bool
	APIPrefix string
	ResultTTL time.Duration
}

// AuditService derives violation reports from progress computations and
// runs the asynchronous export pipeline.
type AuditService struct {
	progress progressComputer
	exports  exportJobStore
	storage  fileStorage
	csv      csvRenderer
	pdf      pdfRenderer
	signer   *storage.SignedURLSigner
	queue    jobEnqueuer
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      AuditConfig
	now      func() time.Time
}

// NewAuditService constructs an AuditService.
func NewAuditService(progress progressComputer, exports exportJobStore, store fileStorage, signer *storage.SignedURLSigner, queue jobEnqueuer, metrics *MetricsService, logger *zap.Logger, cfg AuditConfig) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &AuditService{
		progress: progress,
		exports:  exports,
		storage:  store,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		signer:   signer,
		queue:    queue,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Audit computes the violation report for one plan and view. The second
// return value indicates whether the underlying report came from cache.
func (s *AuditService) Audit(ctx context.Context, planID string, view models.ViewFilter) (*dto.AuditReport, bool, error) {
	report, cached, err := s.progress.Compute(ctx, planID, view)
	if err != nil {
		return nil, false, err
	}
	return s.buildAudit(report), cached, nil
}

func (s *AuditService) buildAudit(report *engine.Report) *dto.AuditReport {
	audit := &dto.AuditReport{
		PlanID:              report.PlanID,
		RequirementSetID:    report.RequirementSetID,
		View:                report.View,
		Percent:             report.Percent,
		CompletedCredits:    report.CompletedCredits,
		TotalCredits:        report.TotalCredits,
		Warnings:            report.Warnings,
		KeywordTableVersion: report.KeywordTableVersion,
		GeneratedAt:         s.now().UTC(),
	}
	for _, category := range report.Categories {
		for _, group := range category.Groups {
			for _, result := range group.Constraints {
				if result.Passed {
					continue
				}
				audit.Violations = append(audit.Violations, dto.AuditViolation{
					Category:    category.Name,
					GroupID:     group.GroupID,
					GroupName:   group.Name,
					Type:        result.Type,
					Reason:      result.Reason,
					ConfigError: result.ConfigError,
				})
			}
		}
	}
	return audit
}

// RequestExport enqueues an asynchronous audit export job.
func (s *AuditService) RequestExport(ctx context.Context, planID, requestedBy string, req dto.ExportRequest) (*models.ExportJob, error) {
	if !s.cfg.Enabled {
		return nil, appErrors.ErrExportsDisabled
	}
	view := req.View
	if view == "" {
		view = models.ViewAll
	}
	if !view.Valid() {
		return nil, appErrors.Clone(appErrors.ErrInvalidView, fmt.Sprintf("unknown view %q", view))
	}
	if req.Format != models.ExportFormatCSV && req.Format != models.ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", req.Format))
	}

	// fail fast on plans that cannot produce a report at all
	if _, _, err := s.progress.Compute(ctx, planID, view); err != nil {
		return nil, err
	}

	job := &models.ExportJob{
		PlanID:      planID,
		RequestedBy: requestedBy,
		Format:      req.Format,
		View:        view,
	}
	if err := s.exports.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "audit_export", Payload: job.ID}); err != nil {
		s.logger.Error("export enqueue failed", zap.String("job_id", job.ID), zap.Error(err))
		_ = s.exports.SetStatus(ctx, job.ID, models.ExportJobFailed, "", "enqueue failed")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	return job, nil
}

// ProcessJob is the queue handler: it renders and stores one export.
func (s *AuditService) ProcessJob(ctx context.Context, queued jobs.Job) error {
	jobID, _ := queued.Payload.(string)
	if jobID == "" {
		jobID = queued.ID
	}
	job, err := s.exports.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load export job %s: %w", jobID, err)
	}
	if job.Status == models.ExportJobCompleted {
		return nil
	}
	if err := s.exports.SetStatus(ctx, job.ID, models.ExportJobProcessing, "", ""); err != nil {
		return err
	}

	relPath, err := s.generate(ctx, job)
	if err != nil {
		s.logger.Error("export generation failed", zap.String("job_id", job.ID), zap.Error(err))
		if s.metrics != nil {
			s.metrics.RecordExport(string(job.Format), "failed")
		}
		_ = s.exports.SetStatus(ctx, job.ID, models.ExportJobFailed, "", err.Error())
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordExport(string(job.Format), "completed")
	}
	return s.exports.SetStatus(ctx, job.ID, models.ExportJobCompleted, relPath, "")
}

func (s *AuditService) generate(ctx context.Context, job *models.ExportJob) (string, error) {
	report, _, err := s.progress.Compute(ctx, job.PlanID, job.View)
	if err != nil {
		return "", err
	}
	audit := s.buildAudit(report)
	dataset := buildAuditDataset(report, audit)

	var payload []byte
	switch job.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, fmt.Sprintf("Degree Audit %s", job.PlanID))
	default:
		err = fmt.Errorf("unsupported format %s", job.Format)
	}
	if err != nil {
		return "", err
	}

	filename := s.buildFilename(job)
	return s.storage.Save(filename, payload)
}

// Status reports job state, including a signed download URL once done.
func (s *AuditService) Status(ctx context.Context, jobID string) (*dto.ExportStatusResponse, error) {
	job, err := s.exports.GetByID(ctx, jobID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	resp := &dto.ExportStatusResponse{
		ID:     job.ID,
		Status: job.Status,
		Format: job.Format,
		Error:  job.Error,
	}
	if job.Status == models.ExportJobCompleted && job.FilePath != "" {
		token, expiresAt, err := s.signer.Generate(job.ID, job.FilePath)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
		}
		prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
		if prefix == "" {
			prefix = "/api/v1"
		}
		resp.DownloadURL = fmt.Sprintf("%s/exports/%s", prefix, token)
		resp.ExpiresAt = &expiresAt
	}
	return resp, nil
}

// Open validates a signed token and returns the stored file with its job
// metadata.
func (s *AuditService) Open(ctx context.Context, token string) (*models.ExportJob, *os.File, error) {
	jobID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.exports.GetByID(ctx, jobID)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	if job.Status != models.ExportJobCompleted {
		return nil, nil, appErrors.ErrExportNotReady
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "export file not found")
	}
	return job, file, nil
}

// RecoverQueued re-enqueues jobs left queued across a restart.
func (s *AuditService) RecoverQueued(ctx context.Context) error {
	queued, err := s.exports.ListQueued(ctx, 0)
	if err != nil {
		return err
	}
	for _, job := range queued {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "audit_export", Payload: job.ID}); err != nil {
			s.logger.Warn("export recovery enqueue failed", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
	return nil
}

// Cleanup removes stored files older than ttl (defaults to ResultTTL).
func (s *AuditService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *AuditService) buildFilename(job *models.ExportJob) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("audits/%s_%s_%s.%s", sanitizeFilename(job.PlanID), job.View, timestamp, job.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func buildAuditDataset(report *engine.Report, audit *dto.AuditReport) export.Dataset {
	headers := []string{"Category", "Group", "Status", "Completed Credits", "Required Credits", "Detail"}
	rows := make([]map[string]string, 0, len(report.Categories)+len(audit.Violations))

	for _, category := range report.Categories {
		rows = append(rows, map[string]string{
			"Category":          category.Name,
			"Group":             "",
			"Status":            string(category.Status),
			"Completed Credits": fmt.Sprintf("%.1f", category.CompletedCredits),
			"Required Credits":  fmt.Sprintf("%.1f", category.TotalCredits),
			"Detail":            fmt.Sprintf("%.1f%%", category.Percent),
		})
		for _, group := range category.Groups {
			rows = append(rows, map[string]string{
				"Category":          category.Name,
				"Group":             group.Name,
				"Status":            string(group.Status),
				"Completed Credits": fmt.Sprintf("%.1f", group.CompletedCredits),
				"Required Credits":  fmt.Sprintf("%.1f", group.RequiredCredits),
				"Detail":            "",
			})
		}
	}
	for _, violation := range audit.Violations {
		rows = append(rows, map[string]string{
			"Category":          violation.Category,
			"Group":             violation.GroupName,
			"Status":            "violation",
			"Completed Credits": "",
			"Required Credits":  "",
			"Detail":            violation.Reason,
		})
	}

	notes := []string{
		fmt.Sprintf("Overall completion: %.1f%% (%.1f of %.1f credits)", report.Percent, report.CompletedCredits, report.TotalCredits),
		fmt.Sprintf("View: %s", report.View),
	}
	if len(report.Warnings) > 0 {
		notes = append(notes, fmt.Sprintf("Warnings: %d", len(report.Warnings)))
	}

	return export.Dataset{Headers: headers, Rows: rows, Notes: notes}
}
