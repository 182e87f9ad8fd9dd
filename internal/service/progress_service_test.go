package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/transferpath/degree-audit-api/internal/models"
	appErrors "github.com/transferpath/degree-audit-api/pkg/errors"
)

type planStub struct {
	plan *models.Plan
	err  error
}

func (s planStub) FindByID(ctx context.Context, id string) (*models.Plan, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.plan, nil
}

type programStub struct {
	set *models.RequirementSet
	err error
}

func (s programStub) GetCurrentSet(ctx context.Context, programID string) (*models.RequirementSet, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.set, nil
}

type catalogStub struct {
	courses map[string]models.Course
}

func (s catalogStub) FindByRefs(ctx context.Context, refs []models.CourseRef) (map[string]models.Course, error) {
	return s.courses, nil
}

type equivalencyStub struct {
	edges []models.Equivalency
}

func (s equivalencyStub) ListTouching(ctx context.Context, refs []models.CourseRef) ([]models.Equivalency, error) {
	return s.edges, nil
}

// memoryCache is an in-process CacheRepository for tests.
type memoryCache struct {
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

func simpleSetFixture() *models.RequirementSet {
	return &models.RequirementSet{
		ID:        "set-1",
		ProgramID: "prog-1",
		IsCurrent: true,
		Requirements: []models.Requirement{
			{ID: "req-1", Name: "Electives", Type: models.RequirementSimple, CreditGoal: 15},
		},
	}
}

func planFixture() *models.Plan {
	return &models.Plan{
		ID:              "plan-1",
		StudentID:       "student-1",
		TargetProgramID: "prog-1",
		Courses: []models.PlanCourse{
			{ID: "pc-1", PlanID: "plan-1", CourseCode: "ARTS 1301", Institution: "Community College", Status: models.CourseStatusCompleted, Credits: 3, RequirementCategory: "Electives"},
			{ID: "pc-2", PlanID: "plan-1", CourseCode: "MUSI 1306", Institution: "Community College", Status: models.CourseStatusCompleted, Credits: 3, RequirementCategory: "Electives"},
		},
	}
}

func newProgressServiceForTest(t *testing.T, plans planStub, programs programStub, cacheRepo CacheRepository) *ProgressService {
	t.Helper()
	var cache *CacheService
	if cacheRepo != nil {
		cache = NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	}
	cfg := ProgressServiceConfig{CacheTTL: time.Minute, DefaultCourseCredits: 3}
	return NewProgressService(plans, programs, catalogStub{}, equivalencyStub{}, cache, nil, zap.NewNop(), cfg)
}

func TestProgressServiceComputesSimplePool(t *testing.T) {
	svc := newProgressServiceForTest(t, planStub{plan: planFixture()}, programStub{set: simpleSetFixture()}, nil)

	report, cached, err := svc.Compute(context.Background(), "plan-1", models.ViewAll)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "plan-1", report.PlanID)
	assert.Equal(t, "set-1", report.RequirementSetID)
	assert.InDelta(t, 6.0, report.CompletedCredits, 0.01)
	assert.InDelta(t, 15.0, report.TotalCredits, 0.01)
	assert.InDelta(t, 40.0, report.Percent, 0.01)
}

func TestProgressServiceCacheRoundTrip(t *testing.T) {
	cacheRepo := newMemoryCache()
	svc := newProgressServiceForTest(t, planStub{plan: planFixture()}, programStub{set: simpleSetFixture()}, cacheRepo)

	first, cached, err := svc.Compute(context.Background(), "plan-1", models.ViewAll)
	require.NoError(t, err)
	assert.False(t, cached)

	second, cached, err := svc.Compute(context.Background(), "plan-1", models.ViewAll)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, first.Percent, second.Percent)
	assert.Equal(t, first.CompletedCredits, second.CompletedCredits)

	svc.Invalidate(context.Background(), "plan-1")
	_, cached, err = svc.Compute(context.Background(), "plan-1", models.ViewAll)
	require.NoError(t, err)
	assert.False(t, cached)
}

func TestProgressServiceViewsCachedSeparately(t *testing.T) {
	cacheRepo := newMemoryCache()
	svc := newProgressServiceForTest(t, planStub{plan: planFixture()}, programStub{set: simpleSetFixture()}, cacheRepo)

	_, _, err := svc.Compute(context.Background(), "plan-1", models.ViewAll)
	require.NoError(t, err)

	_, cached, err := svc.Compute(context.Background(), "plan-1", models.ViewPlanned)
	require.NoError(t, err)
	assert.False(t, cached)

	assert.Contains(t, cacheRepo.entries, "progress:plan-1:all")
	assert.Contains(t, cacheRepo.entries, "progress:plan-1:planned")
}

func TestProgressServiceRejectsUnknownView(t *testing.T) {
	svc := newProgressServiceForTest(t, planStub{plan: planFixture()}, programStub{set: simpleSetFixture()}, nil)

	_, _, err := svc.Compute(context.Background(), "plan-1", models.ViewFilter("bogus"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidView.Code, appErrors.FromError(err).Code)
}

func TestProgressServicePlanNotFound(t *testing.T) {
	svc := newProgressServiceForTest(t, planStub{err: sql.ErrNoRows}, programStub{set: simpleSetFixture()}, nil)

	_, _, err := svc.Compute(context.Background(), "missing", models.ViewAll)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestProgressServiceNoCurrentSet(t *testing.T) {
	svc := newProgressServiceForTest(t, planStub{plan: planFixture()}, programStub{err: sql.ErrNoRows}, nil)

	_, _, err := svc.Compute(context.Background(), "plan-1", models.ViewAll)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoCurrentSet.Code, appErrors.FromError(err).Code)
}

func TestProgressServiceInvalidRequirementModel(t *testing.T) {
	set := simpleSetFixture()
	set.Requirements[0].Type = models.RequirementGrouped // grouped with no groups
	svc := newProgressServiceForTest(t, planStub{plan: planFixture()}, programStub{set: set}, nil)

	_, _, err := svc.Compute(context.Background(), "plan-1", models.ViewAll)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidRequirement.Code, appErrors.FromError(err).Code)
}
