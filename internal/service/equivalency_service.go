package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/transferpath/degree-audit-api/internal/models"
	appErrors "github.com/transferpath/degree-audit-api/pkg/errors"
)

type equivalencyStore interface {
	ListTouching(ctx context.Context, refs []models.CourseRef) ([]models.Equivalency, error)
	ListByInstitutions(ctx context.Context, a, b string) ([]models.Equivalency, error)
	Create(ctx context.Context, eq *models.Equivalency) error
	Delete(ctx context.Context, id string) error
}

// CreateEquivalencyRequest holds payload for registering a transfer
// relation.
type CreateEquivalencyRequest struct {
	SourceCode        string                 `json:"source_code" validate:"required"`
	SourceInstitution string                 `json:"source_institution" validate:"required"`
	TargetCode        string                 `json:"target_code" validate:"required"`
	TargetInstitution string                 `json:"target_institution" validate:"required"`
	Type              models.EquivalencyType `json:"type" validate:"required,oneof=direct partial conditional"`
	Notes             string                 `json:"notes"`
}

// EquivalencyService manages the transfer relation table. Relation
// changes affect every cached report, so admins are expected to rely
// on cache TTL rather than targeted invalidation here.
type EquivalencyService struct {
	repo      equivalencyStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEquivalencyService constructs an EquivalencyService.
func NewEquivalencyService(repo equivalencyStore, validate *validator.Validate, logger *zap.Logger) *EquivalencyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EquivalencyService{repo: repo, validator: validate, logger: logger}
}

// ListByInstitutions returns relations linking two institutions in
// either direction.
func (s *EquivalencyService) ListByInstitutions(ctx context.Context, a, b string) ([]models.Equivalency, error) {
	if a == "" || b == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "both institutions are required")
	}
	rows, err := s.repo.ListByInstitutions(ctx, a, b)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list equivalencies")
	}
	return rows, nil
}

// Resolve returns every relation touching one course, in either role.
func (s *EquivalencyService) Resolve(ctx context.Context, code, institution string) ([]models.Equivalency, error) {
	if code == "" || institution == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "code and institution are required")
	}
	rows, err := s.repo.ListTouching(ctx, []models.CourseRef{{Code: code, Institution: institution}})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve equivalencies")
	}
	return rows, nil
}

// Create registers a new relation.
func (s *EquivalencyService) Create(ctx context.Context, req CreateEquivalencyRequest) (*models.Equivalency, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid equivalency payload")
	}
	if req.SourceCode == req.TargetCode && req.SourceInstitution == req.TargetInstitution {
		return nil, appErrors.Clone(appErrors.ErrValidation, "source and target must differ")
	}
	eq := &models.Equivalency{
		SourceCode:        req.SourceCode,
		SourceInstitution: req.SourceInstitution,
		TargetCode:        req.TargetCode,
		TargetInstitution: req.TargetInstitution,
		Type:              req.Type,
		Notes:             req.Notes,
	}
	if err := s.repo.Create(ctx, eq); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create equivalency")
	}
	return eq, nil
}

// Delete removes a relation by id.
func (s *EquivalencyService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return appErrors.Clone(appErrors.ErrValidation, "id is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete equivalency")
	}
	return nil
}
