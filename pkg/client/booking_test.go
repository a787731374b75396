package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"padelhub/pkg/model"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	userID string
	body   map[string]any
}

func newTestServer(t *testing.T, status int, reply any) (*BookingClient, *recordedRequest) {
	t.Helper()

	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.userID = r.Header.Get(headerUserID)
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&rec.body); err != nil {
				t.Errorf("server could not decode body: %v", err)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if reply != nil {
			_ = json.NewEncoder(w).Encode(reply)
		}
	}))
	t.Cleanup(srv.Close)

	return NewBookingClient(srv.URL), rec
}

func TestCreate(t *testing.T) {
	reply := map[string]any{
		"data": []map[string]any{
			{"id": "b1", "start_time": "18:00", "end_time": "19:00", "status": "pending", "total_amount_cents": 6000},
			{"id": "b2", "start_time": "19:00", "end_time": "20:00", "status": "pending", "total_amount_cents": 6000},
		},
	}
	c, rec := newTestServer(t, http.StatusCreated, reply)

	bookings, err := c.Create(context.Background(), "player-1", model.BookingRequest{
		CourtID:     "665f1c2e8b3e4a0012345678",
		BookingDate: "2025-06-10",
		Slots:       []string{"18:00", "19:00"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.method != http.MethodPost || rec.path != "/api/v1/bookings" {
		t.Errorf("unexpected request %s %s", rec.method, rec.path)
	}
	if rec.userID != "player-1" {
		t.Errorf("expected caller header player-1, got %q", rec.userID)
	}
	if _, ok := rec.body["user_id"]; ok {
		t.Error("user id must travel in the header only")
	}
	if len(bookings) != 2 || bookings[1].StartTime != "19:00" || bookings[0].TotalAmountCents != 6000 {
		t.Errorf("unexpected bookings %+v", bookings)
	}
}

func TestErrorReplies(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		reply      any
		wantCode   string
		wantMsg    string
		wantDetail string
	}{
		{
			name:   "error envelope",
			status: http.StatusConflict,
			reply: map[string]any{
				"error":   "Requested slots are no longer available",
				"code":    "SLOT_UNAVAILABLE",
				"details": map[string]any{"slots": []string{"18:00"}},
			},
			wantCode:   "SLOT_UNAVAILABLE",
			wantMsg:    "Requested slots are no longer available",
			wantDetail: "slots",
		},
		{
			name:    "empty body",
			status:  http.StatusServiceUnavailable,
			wantMsg: http.StatusText(http.StatusServiceUnavailable),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestServer(t, tt.status, tt.reply)

			_, err := c.GetByID(context.Background(), "b1")

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, apiErr.StatusCode)
			}
			if apiErr.Code != tt.wantCode {
				t.Errorf("expected code %q, got %q", tt.wantCode, apiErr.Code)
			}
			if apiErr.Message != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, apiErr.Message)
			}
			if tt.wantDetail != "" {
				if _, ok := apiErr.Details[tt.wantDetail]; !ok {
					t.Errorf("expected detail %q in %v", tt.wantDetail, apiErr.Details)
				}
			}
		})
	}
}

func TestRequestShapes(t *testing.T) {
	tests := []struct {
		name      string
		call      func(c *BookingClient) error
		wantPath  string
		wantQuery string
		wantUser  string
		wantBody  map[string]any
	}{
		{
			name: "quote joins slots",
			call: func(c *BookingClient) error {
				_, err := c.Quote(context.Background(), "court1", "2025-06-10", []string{"18:00", "19:00"})
				return err
			},
			wantPath:  "/api/v1/courts/id/court1/quote",
			wantQuery: "date=2025-06-10&slots=18%3A00%2C19%3A00",
		},
		{
			name: "availability",
			call: func(c *BookingClient) error {
				_, err := c.Availability(context.Background(), "court1", "2025-06-10")
				return err
			},
			wantPath:  "/api/v1/courts/id/court1/availability",
			wantQuery: "date=2025-06-10",
		},
		{
			name: "search",
			call: func(c *BookingClient) error {
				_, err := c.Search(context.Background(), "court1", "2025-06-10")
				return err
			},
			wantPath:  "/api/v1/bookings/search",
			wantQuery: "court_id=court1&date=2025-06-10",
		},
		{
			name: "cancel with reason",
			call: func(c *BookingClient) error {
				_, err := c.Cancel(context.Background(), "player-1", "b1", "rain")
				return err
			},
			wantPath: "/api/v1/bookings/id/b1/cancel",
			wantUser: "player-1",
			wantBody: map[string]any{"reason": "rain"},
		},
		{
			name: "cancel without reason sends no body",
			call: func(c *BookingClient) error {
				_, err := c.Cancel(context.Background(), "player-1", "b1", "")
				return err
			},
			wantPath: "/api/v1/bookings/id/b1/cancel",
			wantUser: "player-1",
		},
		{
			name: "status update",
			call: func(c *BookingClient) error {
				_, err := c.UpdateStatus(context.Background(), "b1", "confirmed")
				return err
			},
			wantPath: "/api/v1/bookings/id/b1/status",
			wantBody: map[string]any{"status": "confirmed"},
		},
		{
			name: "list by user paginates",
			call: func(c *BookingClient) error {
				_, err := c.ListByUser(context.Background(), "player-1", 5, 10)
				return err
			},
			wantPath:  "/api/v1/bookings/user/player-1",
			wantQuery: "limit=5&offset=10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestServer(t, http.StatusOK, map[string]any{"data": nil})

			if err := tt.call(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.path != tt.wantPath {
				t.Errorf("expected path %s, got %s", tt.wantPath, rec.path)
			}
			if rec.query != tt.wantQuery {
				t.Errorf("expected query %q, got %q", tt.wantQuery, rec.query)
			}
			if rec.userID != tt.wantUser {
				t.Errorf("expected caller %q, got %q", tt.wantUser, rec.userID)
			}
			for k, v := range tt.wantBody {
				if rec.body[k] != v {
					t.Errorf("expected body %s=%v, got %v", k, v, rec.body[k])
				}
			}
			if tt.wantBody == nil && rec.body != nil {
				t.Errorf("expected no body, got %v", rec.body)
			}
		})
	}
}

func TestListByUser_DecodesPage(t *testing.T) {
	reply := map[string]any{
		"data":        []map[string]any{{"id": "b1"}, {"id": "b2"}},
		"total_count": 7,
		"limit":       2,
		"offset":      4,
	}
	c, _ := newTestServer(t, http.StatusOK, reply)

	page, err := c.ListByUser(context.Background(), "player-1", 2, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Data) != 2 || page.TotalCount != 7 || page.Limit != 2 || page.Offset != 4 {
		t.Errorf("unexpected page %+v", page)
	}
}

func TestWaitForHealthy(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		c, rec := newTestServer(t, http.StatusOK, map[string]string{"status": "ready"})
		if err := c.HTTP().WaitForHealthy(context.Background(), time.Second); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.path != "/ready" {
			t.Errorf("expected a /ready check, got %s", rec.path)
		}
	})

	t.Run("never ready", func(t *testing.T) {
		c, _ := newTestServer(t, http.StatusServiceUnavailable, nil)
		if err := c.HTTP().WaitForHealthy(context.Background(), 700*time.Millisecond); err == nil {
			t.Fatal("expected timeout error")
		}
	})
}
