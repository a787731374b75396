package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"padelhub/pkg/model"
	"strings"
)

const headerUserID = "X-User-ID"

type envelope[T any] struct {
	Data T `json:"data"`
}

type Page[T any] struct {
	Data       []T   `json:"data"`
	TotalCount int64 `json:"total_count"`
	Limit      int   `json:"limit"`
	Offset     int64 `json:"offset"`
}

// BookingClient calls the booking, court and settings endpoints as one
// caller.
type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseURL string) *BookingClient {
	return &BookingClient{httpClient: NewHttpClient(baseURL)}
}

func (c *BookingClient) HTTP() *HttpClient {
	return c.httpClient
}

func asUser(userID string) map[string]string {
	return map[string]string{headerUserID: userID}
}

func (c *BookingClient) CreateCourt(ctx context.Context, court model.Court) (*model.Court, error) {
	var out envelope[model.Court]
	if err := c.httpClient.call(ctx, http.MethodPost, "/api/v1/courts", court, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *BookingClient) CreateRateSchedule(ctx context.Context, sc model.RateSchedule) (*model.RateSchedule, error) {
	var out envelope[model.RateSchedule]
	if err := c.httpClient.call(ctx, http.MethodPost, "/api/v1/rate-schedules", sc, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// UpdateSettings sends a partial settings document, e.g.
// {"max_slots_per_booking": 3}.
func (c *BookingClient) UpdateSettings(ctx context.Context, patch map[string]any) error {
	return c.httpClient.call(ctx, http.MethodPatch, "/api/v1/settings", patch, nil, nil)
}

func (c *BookingClient) Create(ctx context.Context, userID string, req model.BookingRequest) ([]*model.Booking, error) {
	var out envelope[[]*model.Booking]
	if err := c.httpClient.call(ctx, http.MethodPost, "/api/v1/bookings", req, asUser(userID), &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *BookingClient) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	var out envelope[model.Booking]
	if err := c.httpClient.call(ctx, http.MethodGet, "/api/v1/bookings/id/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *BookingClient) Search(ctx context.Context, courtID, date string) ([]*model.Booking, error) {
	q := url.Values{}
	q.Set("court_id", courtID)
	q.Set("date", date)

	var out envelope[[]*model.Booking]
	if err := c.httpClient.call(ctx, http.MethodGet, "/api/v1/bookings/search?"+q.Encode(), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *BookingClient) ListByUser(ctx context.Context, userID string, limit int, offset int64) (*Page[*model.Booking], error) {
	path := fmt.Sprintf("/api/v1/bookings/user/%s?limit=%d&offset=%d", url.PathEscape(userID), limit, offset)

	var out Page[*model.Booking]
	if err := c.httpClient.call(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *BookingClient) Cancel(ctx context.Context, userID, id, reason string) (*model.Booking, error) {
	var body any
	if reason != "" {
		body = model.BookingCancel{Reason: reason}
	}

	var out envelope[model.Booking]
	path := "/api/v1/bookings/id/" + url.PathEscape(id) + "/cancel"
	if err := c.httpClient.call(ctx, http.MethodPost, path, body, asUser(userID), &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *BookingClient) UpdateStatus(ctx context.Context, id, status string) (*model.Booking, error) {
	var out envelope[model.Booking]
	path := "/api/v1/bookings/id/" + url.PathEscape(id) + "/status"
	if err := c.httpClient.call(ctx, http.MethodPatch, path, model.BookingStatusUpdate{Status: status}, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *BookingClient) Availability(ctx context.Context, courtID, date string) (*model.Availability, error) {
	var out envelope[model.Availability]
	path := "/api/v1/courts/id/" + url.PathEscape(courtID) + "/availability?date=" + url.QueryEscape(date)
	if err := c.httpClient.call(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *BookingClient) Quote(ctx context.Context, courtID, date string, slots []string) (*model.Quote, error) {
	q := url.Values{}
	q.Set("date", date)
	q.Set("slots", strings.Join(slots, ","))

	var out envelope[model.Quote]
	path := "/api/v1/courts/id/" + url.PathEscape(courtID) + "/quote?" + q.Encode()
	if err := c.httpClient.call(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}
