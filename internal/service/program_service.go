package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/transferpath/degree-audit-api/internal/models"
	"github.com/transferpath/degree-audit-api/internal/repository"
	appErrors "github.com/transferpath/degree-audit-api/pkg/errors"
)

type programStore interface {
	FindByID(ctx context.Context, id string) (*models.Program, error)
	GetCurrentSet(ctx context.Context, programID string) (*models.RequirementSet, error)
	GetSetByID(ctx context.Context, setID string) (*models.RequirementSet, error)
	GetSetByTerm(ctx context.Context, programID, semester string, year int) (*models.RequirementSet, error)
	ListSets(ctx context.Context, programID string) ([]models.RequirementSet, error)
}

// ProgramService exposes read access to programs and their requirement
// sets.
type ProgramService struct {
	repo   programStore
	logger *zap.Logger
}

// NewProgramService constructs a ProgramService.
func NewProgramService(repo programStore, logger *zap.Logger) *ProgramService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgramService{repo: repo, logger: logger}
}

// Get returns a program by id.
func (s *ProgramService) Get(ctx context.Context, id string) (*models.Program, error) {
	program, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	return program, nil
}

// GetCurrentSet returns the requirement set currently in force for a
// program, fully loaded with requirements, groups, options and
// constraints.
func (s *ProgramService) GetCurrentSet(ctx context.Context, programID string) (*models.RequirementSet, error) {
	set, err := s.repo.GetCurrentSet(ctx, programID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNoCurrentSet, fmt.Sprintf("program %s has no current requirement set", programID))
		}
		if errors.Is(err, repository.ErrDuplicateCurrentSet) {
			return nil, appErrors.Clone(appErrors.ErrInvalidRequirement, fmt.Sprintf("program %s has more than one current requirement set", programID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load requirement set")
	}
	return set, nil
}

// GetSet returns one requirement set by id regardless of currency.
func (s *ProgramService) GetSet(ctx context.Context, setID string) (*models.RequirementSet, error) {
	set, err := s.repo.GetSetByID(ctx, setID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "requirement set not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load requirement set")
	}
	return set, nil
}

// GetSetByTerm returns the requirement set of a program for one semester
// and year.
func (s *ProgramService) GetSetByTerm(ctx context.Context, programID, semester string, year int) (*models.RequirementSet, error) {
	if semester == "" || year <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester and year are required")
	}
	set, err := s.repo.GetSetByTerm(ctx, programID, semester, year)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("program %s has no requirement set for %s %d", programID, semester, year))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load requirement set")
	}
	return set, nil
}

// ListSets returns every requirement set version of a program, newest
// first.
func (s *ProgramService) ListSets(ctx context.Context, programID string) ([]models.RequirementSet, error) {
	if _, err := s.Get(ctx, programID); err != nil {
		return nil, err
	}
	sets, err := s.repo.ListSets(ctx, programID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requirement sets")
	}
	return sets, nil
}
