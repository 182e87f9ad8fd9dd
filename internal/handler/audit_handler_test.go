package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transferpath/degree-audit-api/internal/dto"
	"github.com/transferpath/degree-audit-api/internal/middleware"
	"github.com/transferpath/degree-audit-api/internal/models"
	appErrors "github.com/transferpath/degree-audit-api/pkg/errors"
)

type fakeAuditSrv struct {
	audit       *dto.AuditReport
	auditErr    error
	job         *models.ExportJob
	exportErr   error
	status      *dto.ExportStatusResponse
	statusErr   error
	openJob     *models.ExportJob
	openFile    *os.File
	openErr     error
	requestedBy string
}

func (f *fakeAuditSrv) Audit(context.Context, string, models.ViewFilter) (*dto.AuditReport, bool, error) {
	return f.audit, false, f.auditErr
}

func (f *fakeAuditSrv) RequestExport(_ context.Context, planID, requestedBy string, req dto.ExportRequest) (*models.ExportJob, error) {
	f.requestedBy = requestedBy
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	return f.job, nil
}

func (f *fakeAuditSrv) Status(context.Context, string) (*dto.ExportStatusResponse, error) {
	return f.status, f.statusErr
}

func (f *fakeAuditSrv) Open(context.Context, string) (*models.ExportJob, *os.File, error) {
	return f.openJob, f.openFile, f.openErr
}

func TestAuditHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuditHandler(&fakeAuditSrv{
		audit: &dto.AuditReport{
			PlanID:  "plan-1",
			Percent: 50,
			Violations: []dto.AuditViolation{
				{Category: "Core", GroupID: "grp-lab", Type: models.ConstraintCourses, Reason: "1 of 2 required courses"},
			},
		},
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/plans/plan-1/audit", nil)
	c.Params = gin.Params{{Key: "id", Value: "plan-1"}}

	handler.Get(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, "plan-1", envelope.Data["plan_id"])
	violations := envelope.Data["violations"].([]interface{})
	assert.Len(t, violations, 1)
}

func TestAuditHandlerExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeAuditSrv{
		job: &models.ExportJob{ID: "job-1", Status: models.ExportJobQueued, Format: models.ExportFormatCSV},
	}
	handler := NewAuditHandler(srv)

	body := strings.NewReader(`{"format":"csv","view":"completed"}`)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/plans/plan-1/audit/export", body)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "plan-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "advisor-1", Role: models.RoleAdvisor})

	handler.Export(c)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "advisor-1", srv.requestedBy)

	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, "job-1", envelope.Data["id"])
	assert.Equal(t, "queued", envelope.Data["status"])
}

func TestAuditHandlerExportDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuditHandler(&fakeAuditSrv{exportErr: appErrors.ErrExportsDisabled})

	body := strings.NewReader(`{"format":"csv"}`)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/plans/plan-1/audit/export", body)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "plan-1"}}

	handler.Export(c)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAuditHandlerStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuditHandler(&fakeAuditSrv{
		status: &dto.ExportStatusResponse{
			ID:          "job-1",
			Status:      models.ExportJobCompleted,
			Format:      models.ExportFormatCSV,
			DownloadURL: "/api/v1/exports/tok",
		},
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/export-jobs/job-1", nil)
	c.Params = gin.Params{{Key: "jobId", Value: "job-1"}}

	handler.Status(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, "completed", envelope.Data["status"])
	assert.Equal(t, "/api/v1/exports/tok", envelope.Data["download_url"])
}

func TestAuditHandlerDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	path := filepath.Join(dir, "plan-1_all.csv")
	require.NoError(t, os.WriteFile(path, []byte("Category,Group\nCore,\n"), 0o644))
	file, err := os.Open(path)
	require.NoError(t, err)

	handler := NewAuditHandler(&fakeAuditSrv{
		openJob:  &models.ExportJob{ID: "job-1", Format: models.ExportFormatCSV},
		openFile: file,
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/exports/tok", nil)
	c.Params = gin.Params{{Key: "token", Value: "tok"}}

	handler.Download(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "plan-1_all.csv")
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Category,Group")
}

func TestAuditHandlerDownloadInvalidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuditHandler(&fakeAuditSrv{openErr: appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/exports/bad", nil)
	c.Params = gin.Params{{Key: "token", Value: "bad"}}

	handler.Download(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
