package service

import (
	"context"
	"errors"
	courterrors "padelhub/internal/courts/errors"
	scheduleerrors "padelhub/internal/rateschedules/errors"
	"padelhub/internal/rateschedules/repository"
	"padelhub/internal/rateschedules/validator"
	"padelhub/pkg/config"
	apperrors "padelhub/pkg/errors"
	"padelhub/pkg/model"
	"padelhub/pkg/sanitizer"
	"padelhub/pkg/timeslot"
	"padelhub/pkg/validation"
	"slices"
)

type RateScheduleService interface {
	Create(ctx context.Context, sc *model.RateSchedule) error
	GetByID(ctx context.Context, id string) (*model.RateSchedule, error)
	ListByCourt(ctx context.Context, courtID string, activeOnly bool) ([]*model.RateSchedule, error)
	Update(ctx context.Context, id string, updates *model.RateScheduleUpdate) (*model.RateSchedule, error)
	Delete(ctx context.Context, id string) error
}

type CourtFinder interface {
	FindByID(ctx context.Context, id string) (*model.Court, error)
}

type rateScheduleService struct {
	repo      repository.RateScheduleRepository
	courts    CourtFinder
	validator *validator.RateScheduleValidator
	cfg       *config.Config
}

func NewRateScheduleService(
	repo repository.RateScheduleRepository,
	courts CourtFinder,
	validator *validator.RateScheduleValidator,
	cfg *config.Config,
) RateScheduleService {
	return &rateScheduleService{
		repo:      repo,
		courts:    courts,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *rateScheduleService) Create(ctx context.Context, sc *model.RateSchedule) error {
	s.sanitize(sc)

	if err := s.validator.Validate(sc); err != nil {
		s.cfg.Log.Warn("Rate schedule validation failed",
			"name", sc.Name,
			"court_id", sc.CourtID,
			"error", err,
		)
		return validationError(err)
	}

	if err := s.ensureCourt(ctx, sc.CourtID); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, sc); err != nil {
		s.cfg.Log.Error("Failed to create rate schedule",
			"name", sc.Name,
			"court_id", sc.CourtID,
			"error", err,
		)
		return apperrors.Internal("Failed to create rate schedule", err)
	}

	s.warnOnOverlap(ctx, sc)
	s.cfg.Log.Info("Rate schedule created successfully",
		"id", sc.ID,
		"court_id", sc.CourtID,
		"window", sc.StartTime+"-"+sc.EndTime,
		"days", timeslot.FormatWeekdays(sc.DaysOfWeek),
		"rate_cents", sc.RateCents,
	)
	return nil
}

func (s *rateScheduleService) GetByID(ctx context.Context, id string) (*model.RateSchedule, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Rate schedule ID cannot be empty")
	}

	sc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, scheduleerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Rate schedule", id)
		}
		if errors.Is(err, scheduleerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid rate schedule ID format")
		}
		s.cfg.Log.Error("Failed to get rate schedule by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve rate schedule", err)
	}
	return sc, nil
}

func (s *rateScheduleService) ListByCourt(ctx context.Context, courtID string, activeOnly bool) ([]*model.RateSchedule, error) {
	if courtID == "" {
		return nil, apperrors.InvalidInput("Court ID cannot be empty")
	}

	schedules, err := s.repo.FindByCourt(ctx, courtID, activeOnly)
	if err != nil {
		s.cfg.Log.Error("Failed to list rate schedules",
			"court_id", courtID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve rate schedules", err)
	}

	s.cfg.Log.Debug("Rate schedules listed",
		"court_id", courtID,
		"active_only", activeOnly,
		"results_count", len(schedules),
	)
	return schedules, nil
}

func (s *rateScheduleService) Update(ctx context.Context, id string, updates *model.RateScheduleUpdate) (*model.RateSchedule, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := s.merge(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Rate schedule validation failed",
			"id", id,
			"court_id", merged.CourtID,
			"error", err,
		)
		return nil, validationError(err)
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, scheduleerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Rate schedule", id)
		}
		s.cfg.Log.Error("Failed to update rate schedule",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to update rate schedule", err)
	}

	s.warnOnOverlap(ctx, merged)
	s.cfg.Log.Info("Rate schedule updated successfully", "id", id, "name", merged.Name)
	return merged, nil
}

func (s *rateScheduleService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Rate schedule ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, scheduleerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Rate schedule", id)
		}
		if errors.Is(err, scheduleerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid rate schedule ID format")
		}
		s.cfg.Log.Error("Failed to delete rate schedule",
			"id", id,
			"error", err,
		)
		return apperrors.Internal("Failed to delete rate schedule", err)
	}

	s.cfg.Log.Info("Rate schedule deleted successfully", "id", id)
	return nil
}

func (s *rateScheduleService) ensureCourt(ctx context.Context, courtID string) error {
	if _, err := s.courts.FindByID(ctx, courtID); err != nil {
		if errors.Is(err, courterrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Court", courtID)
		}
		if errors.Is(err, courterrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid court ID format")
		}
		return apperrors.Internal("Failed to check court existence", err)
	}
	return nil
}

// warnOnOverlap logs schedules sharing a weekday and time with sc. Overlaps
// are allowed; the highest rate wins at pricing time.
func (s *rateScheduleService) warnOnOverlap(ctx context.Context, sc *model.RateSchedule) {
	if !sc.IsActive {
		return
	}
	others, err := s.repo.FindByCourt(ctx, sc.CourtID, true)
	if err != nil {
		return
	}

	start, _ := timeslot.Parse(sc.StartTime)
	end, _ := timeslot.Parse(sc.EndTime)
	for _, other := range others {
		if other.ID == sc.ID {
			continue
		}
		oStart, errStart := timeslot.Parse(other.StartTime)
		oEnd, errEnd := timeslot.Parse(other.EndTime)
		if errStart != nil || errEnd != nil || !timeslot.Overlaps(start, end, oStart, oEnd) {
			continue
		}
		if slices.ContainsFunc(sc.DaysOfWeek, func(d int) bool { return timeslot.ContainsWeekday(other.DaysOfWeek, d) }) {
			s.cfg.Log.Warn("Rate schedule overlaps another active schedule",
				"id", sc.ID,
				"other_id", other.ID,
				"court_id", sc.CourtID,
				"rate_cents", sc.RateCents,
				"other_rate_cents", other.RateCents,
			)
		}
	}
}

func (s *rateScheduleService) sanitize(sc *model.RateSchedule) {
	sc.Name = sanitizer.NormalizeName(sc.Name)
	sc.StartTime = normalizeTime(sc.StartTime)
	sc.EndTime = normalizeTime(sc.EndTime)
	sc.DaysOfWeek = sortedDays(sc.DaysOfWeek)
}

func (s *rateScheduleService) merge(existing *model.RateSchedule, updates *model.RateScheduleUpdate) *model.RateSchedule {
	merged := *existing
	if updates == nil {
		return &merged
	}

	if name := sanitizer.NormalizeName(updates.Name); name != "" {
		merged.Name = name
	}
	if updates.StartTime != "" {
		merged.StartTime = normalizeTime(updates.StartTime)
	}
	if updates.EndTime != "" {
		merged.EndTime = normalizeTime(updates.EndTime)
	}
	if updates.RateCents != nil {
		merged.RateCents = *updates.RateCents
	}
	if updates.DaysOfWeek != nil {
		merged.DaysOfWeek = sortedDays(updates.DaysOfWeek)
	}
	if updates.IsActive != nil {
		merged.IsActive = *updates.IsActive
	}
	return &merged
}

// normalizeTime rewrites "9:00:00" style input as "09:00" and leaves
// unparsable values for the validator to report.
func normalizeTime(s string) string {
	if n, err := timeslot.Normalize(s); err == nil {
		return n
	}
	return s
}

func sortedDays(days []int) []int {
	out := slices.Clone(days)
	slices.Sort(out)
	return out
}

func validationError(err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Rate schedule validation failed", verrs.Details())
	}
	return apperrors.Validation("Rate schedule validation failed", map[string]any{
		"error": err.Error(),
	})
}
