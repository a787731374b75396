package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	apperrors "padelhub/pkg/errors"
	"padelhub/pkg/logger"
	"padelhub/pkg/model"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
)

const testCourtID = "665f1c2e8b3e4a0012345678"

type mockRateScheduleService struct {
	createFunc      func(ctx context.Context, sc *model.RateSchedule) error
	getByIDFunc     func(ctx context.Context, id string) (*model.RateSchedule, error)
	listByCourtFunc func(ctx context.Context, courtID string, activeOnly bool) ([]*model.RateSchedule, error)
	updateFunc      func(ctx context.Context, id string, updates *model.RateScheduleUpdate) (*model.RateSchedule, error)
	deleteFunc      func(ctx context.Context, id string) error
}

func (m *mockRateScheduleService) Create(ctx context.Context, sc *model.RateSchedule) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, sc)
	}
	return nil
}

func (m *mockRateScheduleService) GetByID(ctx context.Context, id string) (*model.RateSchedule, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &model.RateSchedule{ID: id}, nil
}

func (m *mockRateScheduleService) ListByCourt(ctx context.Context, courtID string, activeOnly bool) ([]*model.RateSchedule, error) {
	if m.listByCourtFunc != nil {
		return m.listByCourtFunc(ctx, courtID, activeOnly)
	}
	return []*model.RateSchedule{}, nil
}

func (m *mockRateScheduleService) Update(ctx context.Context, id string, updates *model.RateScheduleUpdate) (*model.RateSchedule, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, updates)
	}
	return &model.RateSchedule{ID: id}, nil
}

func (m *mockRateScheduleService) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func newTestLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
}

func TestCreate_DefaultsToActive(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantActive bool
	}{
		{
			name:       "missing is_active",
			body:       `{"court_id":"` + testCourtID + `","name":"Peak","start_time":"18:00","end_time":"22:00","rate_cents":6000,"days_of_week":[2]}`,
			wantActive: true,
		},
		{
			name:       "explicit false is kept",
			body:       `{"court_id":"` + testCourtID + `","name":"Peak","start_time":"18:00","end_time":"22:00","rate_cents":6000,"days_of_week":[2],"is_active":false}`,
			wantActive: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var received model.RateSchedule
			h := NewRateScheduleHandler(&mockRateScheduleService{
				createFunc: func(ctx context.Context, sc *model.RateSchedule) error {
					received = *sc
					sc.ID = "665f1c2e8b3e4a0012345679"
					return nil
				},
			}, newTestLogger())

			req := httptest.NewRequest(http.MethodPost, "/api/v1/rate-schedules", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			h.Create(w, req, httprouter.Params{})

			if w.Code != http.StatusCreated {
				t.Fatalf("expected status 201, got %d", w.Code)
			}
			if received.IsActive != tt.wantActive {
				t.Errorf("expected is_active %v, got %v", tt.wantActive, received.IsActive)
			}
			if received.RateCents != 6000 || received.StartTime != "18:00" {
				t.Errorf("unexpected schedule passed to service %+v", received)
			}
		})
	}
}

func TestCreate_IgnoresClientID(t *testing.T) {
	var received model.RateSchedule
	h := NewRateScheduleHandler(&mockRateScheduleService{
		createFunc: func(ctx context.Context, sc *model.RateSchedule) error {
			received = *sc
			return nil
		},
	}, newTestLogger())

	body := `{"id":"665f1c2e8b3e4a00ffffffff","court_id":"` + testCourtID + `","name":"Peak","start_time":"18:00","end_time":"22:00","days_of_week":[1]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rate-schedules", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Create(w, req, httprouter.Params{})

	if received.ID != "" {
		t.Errorf("expected client id to be dropped, got %q", received.ID)
	}
}

func TestCreate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
	}{
		{name: "invalid body", body: "{", wantCode: http.StatusBadRequest},
		{
			name:     "validation failure",
			body:     `{"court_id":"` + testCourtID + `"}`,
			err:      apperrors.Validation("Rate schedule validation failed", nil),
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name:     "unknown court",
			body:     `{"court_id":"` + testCourtID + `"}`,
			err:      apperrors.NotFoundWithID("Court", testCourtID),
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewRateScheduleHandler(&mockRateScheduleService{
				createFunc: func(ctx context.Context, sc *model.RateSchedule) error {
					return tt.err
				},
			}, newTestLogger())

			req := httptest.NewRequest(http.MethodPost, "/api/v1/rate-schedules", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			h.Create(w, req, httprouter.Params{})

			if w.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, w.Code)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	var gotCourt string
	var gotActive bool
	h := NewRateScheduleHandler(&mockRateScheduleService{
		listByCourtFunc: func(ctx context.Context, courtID string, activeOnly bool) ([]*model.RateSchedule, error) {
			gotCourt, gotActive = courtID, activeOnly
			return []*model.RateSchedule{{ID: "s1", CourtID: courtID, Name: "Peak"}}, nil
		},
	}, newTestLogger())

	tests := []struct {
		name       string
		query      string
		wantCode   int
		wantActive bool
	}{
		{name: "all schedules", query: "?court_id=" + testCourtID, wantCode: http.StatusOK},
		{name: "active only", query: "?court_id=" + testCourtID + "&active=true", wantCode: http.StatusOK, wantActive: true},
		{name: "missing court", query: "", wantCode: http.StatusBadRequest},
		{name: "invalid active flag", query: "?court_id=" + testCourtID + "&active=maybe", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotCourt, gotActive = "", false

			req := httptest.NewRequest(http.MethodGet, "/api/v1/rate-schedules/search"+tt.query, nil)
			w := httptest.NewRecorder()

			h.Search(w, req, httprouter.Params{})

			if w.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, w.Code)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			if gotCourt != testCourtID || gotActive != tt.wantActive {
				t.Errorf("service got court=%q active=%v", gotCourt, gotActive)
			}

			var response struct {
				Data []model.RateSchedule `json:"data"`
			}
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(response.Data) != 1 || response.Data[0].Name != "Peak" {
				t.Errorf("unexpected response %+v", response)
			}
		})
	}
}

func TestRoutes(t *testing.T) {
	var deleted, updated string
	h := NewRateScheduleHandler(&mockRateScheduleService{
		getByIDFunc: func(ctx context.Context, id string) (*model.RateSchedule, error) {
			return nil, apperrors.NotFoundWithID("Rate schedule", id)
		},
		updateFunc: func(ctx context.Context, id string, updates *model.RateScheduleUpdate) (*model.RateSchedule, error) {
			updated = id
			return &model.RateSchedule{ID: id, Name: updates.Name}, nil
		},
		deleteFunc: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}, newTestLogger())

	router := httprouter.New()
	h.RegisterRoutes(router)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
	}{
		{name: "get missing", method: http.MethodGet, path: "/api/v1/rate-schedules/id/s1", wantCode: http.StatusNotFound},
		{name: "patch", method: http.MethodPatch, path: "/api/v1/rate-schedules/id/s2", body: `{"name":"Late"}`, wantCode: http.StatusOK},
		{name: "patch invalid body", method: http.MethodPatch, path: "/api/v1/rate-schedules/id/s2", body: "{", wantCode: http.StatusBadRequest},
		{name: "delete", method: http.MethodDelete, path: "/api/v1/rate-schedules/id/s3", wantCode: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, w.Code)
			}
		})
	}

	if updated != "s2" || deleted != "s3" {
		t.Errorf("expected ids from the path, got update=%q delete=%q", updated, deleted)
	}
}
