package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/transferpath/degree-audit-api/internal/engine"
	"github.com/transferpath/degree-audit-api/internal/models"
	"github.com/transferpath/degree-audit-api/internal/repository"
	appErrors "github.com/transferpath/degree-audit-api/pkg/errors"
)

type planRepository interface {
	FindByID(ctx context.Context, id string) (*models.Plan, error)
}

type requirementSetLoader interface {
	GetCurrentSet(ctx context.Context, programID string) (*models.RequirementSet, error)
}

type catalogLoader interface {
	FindByRefs(ctx context.Context, refs []models.CourseRef) (map[string]models.Course, error)
}

type equivalencyLoader interface {
	ListTouching(ctx context.Context, refs []models.CourseRef) ([]models.Equivalency, error)
}

// ProgressServiceConfig tunes computation and caching.
type ProgressServiceConfig struct {
	CacheTTL             time.Duration
	DefaultCourseCredits float64
}

// ProgressService assembles computation snapshots and runs the engine,
// serving reports cache-aside per (plan, view).
type ProgressService struct {
	plans         planRepository
	programs      requirementSetLoader
	catalog       catalogLoader
	equivalencies equivalencyLoader
	cache         *CacheService
	metrics       *MetricsService
	logger        *zap.Logger
	cfg           ProgressServiceConfig
}

// NewProgressService constructs a ProgressService.
func NewProgressService(plans planRepository, programs requirementSetLoader, catalog catalogLoader, equivalencies equivalencyLoader, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg ProgressServiceConfig) *ProgressService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &ProgressService{
		plans:         plans,
		programs:      programs,
		catalog:       catalog,
		equivalencies: equivalencies,
		cache:         cache,
		metrics:       metrics,
		logger:        logger,
		cfg:           cfg,
	}
}

func progressCacheKey(planID string, view models.ViewFilter) string {
	return fmt.Sprintf("progress:%s:%s", planID, view)
}

// Compute returns the progress report for one plan and view. The second
// return value indicates cache utilisation.
func (s *ProgressService) Compute(ctx context.Context, planID string, view models.ViewFilter) (*engine.Report, bool, error) {
	if view == "" {
		view = models.ViewAll
	}
	if !view.Valid() {
		return nil, false, appErrors.Clone(appErrors.ErrInvalidView, fmt.Sprintf("unknown view %q", view))
	}

	cacheKey := progressCacheKey(planID, view)
	if s.cache != nil {
		var cached engine.Report
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	snap, err := s.buildSnapshot(ctx, planID)
	if err != nil {
		return nil, false, err
	}

	start := time.Now()
	report, err := engine.ComputeProgress(snap, view)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "progress computation failed")
	}
	if s.metrics != nil {
		s.metrics.ObserveComputation(string(view), time.Since(start))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, report, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("progress cache write failed", zap.String("plan_id", planID), zap.Error(err))
		}
	}
	return report, false, nil
}

// Invalidate drops every cached view of a plan's report. Plan mutations
// must call this before readers observe stale tallies.
func (s *ProgressService) Invalidate(ctx context.Context, planID string) {
	if s.cache == nil {
		return
	}
	for _, pattern := range []string{
		fmt.Sprintf("progress:%s:*", planID),
		fmt.Sprintf("audit:%s:*", planID),
	} {
		if err := s.cache.Invalidate(ctx, pattern); err != nil {
			s.logger.Warn("progress cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
		}
	}
}

// buildSnapshot loads the plan, its program's current requirement set,
// the catalog rows and equivalency edges the engine needs.
func (s *ProgressService) buildSnapshot(ctx context.Context, planID string) (*engine.Snapshot, error) {
	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "plan not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}

	set, err := s.programs.GetCurrentSet(ctx, plan.TargetProgramID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNoCurrentSet, fmt.Sprintf("program %s has no current requirement set", plan.TargetProgramID))
		}
		if errors.Is(err, repository.ErrDuplicateCurrentSet) {
			return nil, appErrors.Clone(appErrors.ErrInvalidRequirement, fmt.Sprintf("program %s has more than one current requirement set", plan.TargetProgramID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load requirement set")
	}

	courseRefs := make([]models.CourseRef, 0, len(plan.Courses))
	seen := make(map[string]struct{}, len(plan.Courses))
	for _, pc := range plan.Courses {
		ref := models.CourseRef{Code: pc.CourseCode, Institution: pc.Institution}
		if _, ok := seen[ref.Key()]; ok {
			continue
		}
		seen[ref.Key()] = struct{}{}
		courseRefs = append(courseRefs, ref)
	}

	catalog, err := s.catalog.FindByRefs(ctx, courseRefs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load catalog")
	}

	// resolver edges can touch either plan courses or group options
	edgeRefs := courseRefs
	for _, req := range set.Requirements {
		for _, group := range req.Groups {
			for _, opt := range group.Options {
				ref := models.CourseRef{Code: opt.CourseCode, Institution: opt.Institution}
				if _, ok := seen[ref.Key()]; ok {
					continue
				}
				seen[ref.Key()] = struct{}{}
				edgeRefs = append(edgeRefs, ref)
			}
		}
	}
	equivalencies, err := s.equivalencies.ListTouching(ctx, edgeRefs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load equivalencies")
	}

	snap, err := engine.NewSnapshot(*set, *plan, catalog, equivalencies)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidRequirement.Code, appErrors.ErrInvalidRequirement.Status, err.Error())
	}
	snap.CourseCreditDefault = s.cfg.DefaultCourseCredits
	return snap, nil
}
