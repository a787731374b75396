package service

import (
	"context"
	"errors"
	courterrors "padelhub/internal/courts/errors"
	"padelhub/internal/courts/repository"
	"padelhub/internal/courts/validator"
	"padelhub/pkg/config"
	apperrors "padelhub/pkg/errors"
	"padelhub/pkg/model"
	"padelhub/pkg/sanitizer"
	"padelhub/pkg/validation"
	"sync"
)

type CourtService interface {
	Create(ctx context.Context, court *model.Court) error
	GetByID(ctx context.Context, id string) (*model.Court, error)
	GetAll(ctx context.Context, limit int, offset int64, activeOnly bool) ([]*model.Court, int64, error)
	Update(ctx context.Context, id string, updates *model.CourtUpdate) (*model.Court, error)
}

type courtService struct {
	repo      repository.CourtRepository
	validator *validator.CourtValidator
	cfg       *config.Config
}

func NewCourtService(
	repo repository.CourtRepository,
	validator *validator.CourtValidator,
	cfg *config.Config,
) CourtService {
	return &courtService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *courtService) Create(ctx context.Context, court *model.Court) error {
	s.sanitize(court)

	if err := s.validator.Validate(court); err != nil {
		s.cfg.Log.Warn("Court validation failed",
			"name", court.Name,
			"error", err,
		)
		return validationError("Court validation failed", err)
	}

	exists, err := s.repo.ExistsByName(ctx, court.Name, "")
	if err != nil {
		s.cfg.Log.Error("Failed to check court name", "name", court.Name, "error", err)
		return apperrors.Internal("Failed to check for existing courts", err)
	}
	if exists {
		return apperrors.Conflict("Court with the same name already exists")
	}

	if err := s.repo.Create(ctx, court); err != nil {
		if errors.Is(err, courterrors.ErrDuplicateName) {
			return apperrors.Conflict("Court with the same name already exists")
		}
		s.cfg.Log.Error("Failed to create court",
			"name", court.Name,
			"error", err,
		)
		return apperrors.Internal("Failed to create court", err)
	}

	s.cfg.Log.Info("Court created successfully",
		"id", court.ID,
		"name", court.Name,
		"hourly_rate_cents", court.HourlyRateCents,
	)
	return nil
}

func (s *courtService) GetByID(ctx context.Context, id string) (*model.Court, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Court ID cannot be empty")
	}

	court, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, courterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Court", id)
		}
		if errors.Is(err, courterrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid court ID format")
		}
		s.cfg.Log.Error("Failed to get court by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve court", err)
	}

	return court, nil
}

func (s *courtService) GetAll(ctx context.Context, limit int, offset int64, activeOnly bool) ([]*model.Court, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var courts []*model.Court
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(sharedCtx, activeOnly)
		if err != nil {
			s.cfg.Log.Error("Failed to count courts", "error", err)
			errCount = apperrors.Internal("Failed to count courts", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		courts, err = s.repo.FindAll(sharedCtx, limit, offset, activeOnly)
		if err != nil {
			s.cfg.Log.Error("Failed to get all courts",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve courts", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return courts, count, nil
}

func (s *courtService) Update(ctx context.Context, id string, updates *model.CourtUpdate) (*model.Court, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := s.merge(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Court validation failed",
			"id", id,
			"name", merged.Name,
			"error", err,
		)
		return nil, validationError("Court validation failed", err)
	}

	if merged.Name != existing.Name {
		exists, err := s.repo.ExistsByName(ctx, merged.Name, id)
		if err != nil {
			return nil, apperrors.Internal("Failed to check for existing courts", err)
		}
		if exists {
			return nil, apperrors.Conflict("Another court with the same name already exists")
		}
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		switch {
		case errors.Is(err, courterrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Court", id)
		case errors.Is(err, courterrors.ErrDuplicateName):
			return nil, apperrors.Conflict("Another court with the same name already exists")
		}
		s.cfg.Log.Error("Failed to update court",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to update court", err)
	}

	s.cfg.Log.Info("Court updated successfully", "id", id, "name", merged.Name)
	return merged, nil
}

func (s *courtService) sanitize(court *model.Court) {
	court.Name = sanitizer.NormalizeName(court.Name)
	court.Description = sanitizer.NormalizeNotes(court.Description)
	court.Amenities = sanitizer.NormalizeAmenities(court.Amenities)
}

func (s *courtService) merge(existing *model.Court, updates *model.CourtUpdate) *model.Court {
	merged := *existing
	if updates == nil {
		return &merged
	}

	if name := sanitizer.NormalizeName(updates.Name); name != "" {
		merged.Name = name
	}
	if updates.Description != nil {
		merged.Description = sanitizer.NormalizeNotes(*updates.Description)
	}
	if updates.HourlyRateCents != nil {
		merged.HourlyRateCents = *updates.HourlyRateCents
	}
	if updates.IsActive != nil {
		merged.IsActive = *updates.IsActive
	}
	if updates.Amenities != nil {
		merged.Amenities = sanitizer.NormalizeAmenities(*updates.Amenities)
	}
	return &merged
}

func validationError(message string, err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{
		"error": err.Error(),
	})
}
