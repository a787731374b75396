package service

import (
	"context"
	"fmt"
	courterrors "padelhub/internal/courts/errors"
	scheduleerrors "padelhub/internal/rateschedules/errors"
	"padelhub/internal/rateschedules/validator"
	"padelhub/pkg/config"
	apperrors "padelhub/pkg/errors"
	"padelhub/pkg/logger"
	"padelhub/pkg/model"
	"testing"
	"time"
)

const testCourtID = "507f1f77bcf86cd799439011"

type mockRateScheduleRepository struct {
	createFunc      func(ctx context.Context, sc *model.RateSchedule) error
	findByIDFunc    func(ctx context.Context, id string) (*model.RateSchedule, error)
	findByCourtFunc func(ctx context.Context, courtID string, activeOnly bool) ([]*model.RateSchedule, error)
	updateFunc      func(ctx context.Context, id string, sc *model.RateSchedule) error
	deleteFunc      func(ctx context.Context, id string) error
}

func (m *mockRateScheduleRepository) Create(ctx context.Context, sc *model.RateSchedule) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, sc)
	}
	return nil
}

func (m *mockRateScheduleRepository) FindByID(ctx context.Context, id string) (*model.RateSchedule, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, scheduleerrors.ErrNotFound
}

func (m *mockRateScheduleRepository) FindByCourt(ctx context.Context, courtID string, activeOnly bool) ([]*model.RateSchedule, error) {
	if m.findByCourtFunc != nil {
		return m.findByCourtFunc(ctx, courtID, activeOnly)
	}
	return []*model.RateSchedule{}, nil
}

func (m *mockRateScheduleRepository) Update(ctx context.Context, id string, sc *model.RateSchedule) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, sc)
	}
	return nil
}

func (m *mockRateScheduleRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockCourtFinder struct {
	err error
}

func (m *mockCourtFinder) FindByID(ctx context.Context, id string) (*model.Court, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &model.Court{ID: id, Name: "Court 1", IsActive: true}, nil
}

func newTestService(repo *mockRateScheduleRepository, courts *mockCourtFinder) RateScheduleService {
	log := logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	cfg := &config.Config{Log: log, ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second}
	return NewRateScheduleService(repo, courts, validator.NewRateScheduleValidator(log), cfg)
}

func TestCreate_NormalizesInput(t *testing.T) {
	var stored *model.RateSchedule
	svc := newTestService(&mockRateScheduleRepository{
		createFunc: func(ctx context.Context, sc *model.RateSchedule) error {
			stored = sc
			return nil
		},
	}, &mockCourtFinder{})

	sc := &model.RateSchedule{
		CourtID:    testCourtID,
		Name:       "  Weekend   mornings ",
		StartTime:  "08:00:00",
		EndTime:    "12:00",
		RateCents:  5000,
		DaysOfWeek: []int{7, 6},
		IsActive:   true,
	}
	if err := svc.Create(context.Background(), sc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stored.Name != "Weekend mornings" {
		t.Errorf("expected normalized name, got %q", stored.Name)
	}
	if stored.StartTime != "08:00" {
		t.Errorf("expected start 08:00, got %q", stored.StartTime)
	}
	if stored.DaysOfWeek[0] != 6 || stored.DaysOfWeek[1] != 7 {
		t.Errorf("expected sorted weekdays, got %v", stored.DaysOfWeek)
	}
}

func TestCreate_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		sc       model.RateSchedule
		courtErr error
		wantCode string
	}{
		{
			name:     "inverted window",
			sc:       model.RateSchedule{CourtID: testCourtID, Name: "Bad", StartTime: "10:00", EndTime: "09:00", DaysOfWeek: []int{1}},
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "unknown court",
			sc:       model.RateSchedule{CourtID: testCourtID, Name: "Peak", StartTime: "18:00", EndTime: "22:00", DaysOfWeek: []int{1}},
			courtErr: fmt.Errorf("%w: %s", courterrors.ErrNotFound, testCourtID),
			wantCode: apperrors.CodeNotFound,
		},
		{
			name:     "court lookup failure",
			sc:       model.RateSchedule{CourtID: testCourtID, Name: "Peak", StartTime: "18:00", EndTime: "22:00", DaysOfWeek: []int{1}},
			courtErr: fmt.Errorf("socket closed"),
			wantCode: apperrors.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created := false
			svc := newTestService(&mockRateScheduleRepository{
				createFunc: func(ctx context.Context, sc *model.RateSchedule) error {
					created = true
					return nil
				},
			}, &mockCourtFinder{err: tt.courtErr})

			sc := tt.sc
			err := svc.Create(context.Background(), &sc)
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Fatalf("expected %s, got %v", tt.wantCode, err)
			}
			if created {
				t.Error("rejected schedule must not be stored")
			}
		})
	}
}

func TestUpdate_KeepsIdentity(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	existing := &model.RateSchedule{
		ID:         "665f1c2e8b3e4a0012345678",
		CourtID:    testCourtID,
		Name:       "Peak",
		StartTime:  "18:00",
		EndTime:    "22:00",
		RateCents:  7000,
		DaysOfWeek: []int{1, 2, 3, 4, 5},
		IsActive:   true,
		CreatedAt:  created,
	}

	var saved *model.RateSchedule
	svc := newTestService(&mockRateScheduleRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.RateSchedule, error) {
			copied := *existing
			return &copied, nil
		},
		updateFunc: func(ctx context.Context, id string, sc *model.RateSchedule) error {
			saved = sc
			return nil
		},
	}, &mockCourtFinder{})

	rate := int64(9000)
	_, err := svc.Update(context.Background(), existing.ID, &model.RateScheduleUpdate{
		RateCents: &rate,
		EndTime:   "23:00",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.RateCents != 9000 || saved.EndTime != "23:00" {
		t.Errorf("update not applied: %+v", saved)
	}
	if saved.ID != existing.ID || saved.CourtID != testCourtID || !saved.CreatedAt.Equal(created) {
		t.Errorf("identity fields changed: %+v", saved)
	}
}

func TestUpdate_InvalidMergedWindow(t *testing.T) {
	svc := newTestService(&mockRateScheduleRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.RateSchedule, error) {
			return &model.RateSchedule{
				ID: id, CourtID: testCourtID, Name: "Peak",
				StartTime: "18:00", EndTime: "22:00", DaysOfWeek: []int{1}, IsActive: true,
			}, nil
		},
	}, &mockCourtFinder{})

	_, err := svc.Update(context.Background(), "665f1c2e8b3e4a0012345678", &model.RateScheduleUpdate{StartTime: "23:00"})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDelete_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		repoErr  error
		wantCode string
	}{
		{name: "not found", repoErr: scheduleerrors.ErrNotFound, wantCode: apperrors.CodeNotFound},
		{name: "invalid id", repoErr: fmt.Errorf("%w: x", scheduleerrors.ErrInvalidID), wantCode: apperrors.CodeInvalidInput},
		{name: "store failure", repoErr: fmt.Errorf("timeout"), wantCode: apperrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(&mockRateScheduleRepository{
				deleteFunc: func(ctx context.Context, id string) error { return tt.repoErr },
			}, &mockCourtFinder{})

			if err := svc.Delete(context.Background(), "x"); !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}
