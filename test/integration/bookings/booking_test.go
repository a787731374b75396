//go:build integration

package bookings

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"padelhub/pkg/client"
	apperrors "padelhub/pkg/errors"
	"padelhub/pkg/model"
	"padelhub/test/integration/testutil"
)

const (
	playerOne = "player-one"
	playerTwo = "player-two"
)

func venueLocation(t *testing.T) *time.Location {
	t.Helper()
	name := os.Getenv("VENUE_TIME_ZONE")
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("bad VENUE_TIME_ZONE %q: %v", name, err)
	}
	return loc
}

func resetSettings(t *testing.T, api *client.BookingClient) {
	t.Helper()
	err := api.UpdateSettings(context.Background(), map[string]any{
		"max_slots_per_booking": 2,
		"booking_advance_days":  30,
		"cancellation_hours":    24,
		"operating_hours":       map[string]string{"start": "06:00", "end": "23:00"},
		"slot_duration":         60,
		"auto_confirm_bookings": false,
		"maintenance_mode":      false,
		"email_notifications":   false,
	})
	if err != nil {
		t.Fatalf("failed to reset settings: %v", err)
	}
}

func requireCode(t *testing.T, err error, status int, code string) *client.APIError {
	t.Helper()
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected API error %s, got %v", code, err)
	}
	if apiErr.StatusCode != status || apiErr.Code != code {
		t.Fatalf("expected %d %s, got %v", status, code, apiErr)
	}
	return apiErr
}

func TestBookingFlow(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, api := env.Setup(t)
	defer env.Cleanup(t, mongo)
	resetSettings(t, api)
	defer resetSettings(t, api)

	ctx := context.Background()
	loc := venueLocation(t)
	date := testutil.DaysAhead(loc, 3)

	court, err := api.CreateCourt(ctx, testutil.NewCourtBuilder().Build())
	if err != nil {
		t.Fatalf("failed to create court: %v", err)
	}
	if _, err := api.CreateRateSchedule(ctx, testutil.NewRateScheduleBuilder(court.ID).Build()); err != nil {
		t.Fatalf("failed to create rate schedule: %v", err)
	}

	t.Run("quote prices each slot", func(t *testing.T) {
		quote, err := api.Quote(ctx, court.ID, date, []string{"17:00", "18:00"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if quote.TotalCents != 10000 {
			t.Errorf("expected 4000+6000, got %d", quote.TotalCents)
		}
		if quote.Slots[1].ScheduleName != "Peak" {
			t.Errorf("expected peak rule on 18:00, got %+v", quote.Slots[1])
		}
	})

	var booked []*model.Booking

	t.Run("create books consecutive slots", func(t *testing.T) {
		booked, err = api.Create(ctx, playerOne, model.BookingRequest{
			CourtID:     court.ID,
			BookingDate: date,
			Slots:       []string{"18:00", "19:00"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(booked) != 2 {
			t.Fatalf("expected 2 bookings, got %d", len(booked))
		}
		for _, b := range booked {
			if b.Status != model.BookingStatusPending || b.UserID != playerOne || b.TotalAmountCents != 6000 {
				t.Errorf("unexpected booking %+v", b)
			}
		}
	})

	t.Run("availability marks booked slots", func(t *testing.T) {
		avail, err := api.Availability(ctx, court.ID, date)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(avail.Slots) != 17 {
			t.Fatalf("expected 17 slots between 06:00 and 23:00, got %d", len(avail.Slots))
		}
		for _, s := range avail.Slots {
			taken := s.StartTime == "18:00" || s.StartTime == "19:00"
			if s.Available == taken {
				t.Errorf("slot %s available=%v", s.StartTime, s.Available)
			}
		}
	})

	t.Run("overlapping request is rejected whole", func(t *testing.T) {
		_, err := api.Create(ctx, playerTwo, model.BookingRequest{
			CourtID:     court.ID,
			BookingDate: date,
			Slots:       []string{"19:00", "20:00"},
		})
		apiErr := requireCode(t, err, http.StatusConflict, apperrors.CodeSlotUnavailable)
		if _, ok := apiErr.Details["slots"]; !ok {
			t.Errorf("expected conflicting slots in details, got %v", apiErr.Details)
		}

		n := mongo.CountDocuments(t, testutil.BookingsCollection, bson.M{"court_id": court.ID, "start_time": "20:00"})
		if n != 0 {
			t.Errorf("expected no partial booking at 20:00, found %d", n)
		}
	})

	t.Run("too many slots", func(t *testing.T) {
		_, err := api.Create(ctx, playerTwo, model.BookingRequest{
			CourtID:     court.ID,
			BookingDate: date,
			Slots:       []string{"08:00", "09:00", "10:00"},
		})
		requireCode(t, err, http.StatusUnprocessableEntity, apperrors.CodeValidation)
	})

	t.Run("beyond the advance window", func(t *testing.T) {
		_, err := api.Create(ctx, playerTwo, model.BookingRequest{
			CourtID:     court.ID,
			BookingDate: testutil.DaysAhead(loc, 45),
			Slots:       []string{"08:00"},
		})
		requireCode(t, err, http.StatusUnprocessableEntity, apperrors.CodeValidation)
	})

	t.Run("only the owner can cancel", func(t *testing.T) {
		_, err := api.Cancel(ctx, playerTwo, booked[0].ID, "")
		requireCode(t, err, http.StatusForbidden, apperrors.CodeForbidden)
	})

	t.Run("cancel frees the slot", func(t *testing.T) {
		cancelled, err := api.Cancel(ctx, playerOne, booked[1].ID, "rain")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cancelled.Status != model.BookingStatusCancelled {
			t.Errorf("expected cancelled, got %s", cancelled.Status)
		}

		rebooked, err := api.Create(ctx, playerTwo, model.BookingRequest{
			CourtID:     court.ID,
			BookingDate: date,
			Slots:       []string{"19:00"},
		})
		if err != nil {
			t.Fatalf("expected the cancelled slot to be bookable: %v", err)
		}
		if rebooked[0].UserID != playerTwo {
			t.Errorf("unexpected owner %s", rebooked[0].UserID)
		}
	})

	t.Run("status transitions", func(t *testing.T) {
		confirmed, err := api.UpdateStatus(ctx, booked[0].ID, model.BookingStatusConfirmed)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if confirmed.Status != model.BookingStatusConfirmed {
			t.Errorf("expected confirmed, got %s", confirmed.Status)
		}

		_, err = api.UpdateStatus(ctx, booked[1].ID, model.BookingStatusConfirmed)
		requireCode(t, err, http.StatusConflict, apperrors.CodeConflict)
	})

	t.Run("list by user", func(t *testing.T) {
		page, err := api.ListByUser(ctx, playerOne, 10, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.TotalCount != 2 || len(page.Data) != 2 {
			t.Errorf("expected 2 bookings for %s, got %d/%d", playerOne, len(page.Data), page.TotalCount)
		}
	})

	t.Run("maintenance mode blocks new bookings", func(t *testing.T) {
		if err := api.UpdateSettings(ctx, map[string]any{"maintenance_mode": true}); err != nil {
			t.Fatalf("failed to enable maintenance: %v", err)
		}
		defer func() {
			if err := api.UpdateSettings(ctx, map[string]any{"maintenance_mode": false}); err != nil {
				t.Errorf("failed to disable maintenance: %v", err)
			}
		}()

		_, err := api.Create(ctx, playerTwo, model.BookingRequest{
			CourtID:     court.ID,
			BookingDate: date,
			Slots:       []string{"08:00"},
		})
		requireCode(t, err, http.StatusServiceUnavailable, apperrors.CodeMaintenance)
	})
}

func TestConcurrentBookingsForOneSlot(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, api := env.Setup(t)
	defer env.Cleanup(t, mongo)
	resetSettings(t, api)

	ctx := context.Background()
	date := testutil.DaysAhead(venueLocation(t), 5)

	court, err := api.CreateCourt(ctx, testutil.NewCourtBuilder().Build())
	if err != nil {
		t.Fatalf("failed to create court: %v", err)
	}

	const attempts = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := api.Create(ctx, "racer-"+string(rune('a'+i)), model.BookingRequest{
				CourtID:     court.ID,
				BookingDate: date,
				Slots:       []string{"20:00"},
			})

			mu.Lock()
			defer mu.Unlock()
			var apiErr *client.APIError
			switch {
			case err == nil:
				succeeded++
			case errors.As(err, &apiErr) && apiErr.Code == apperrors.CodeSlotUnavailable:
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if succeeded != 1 || conflicts != attempts-1 {
		t.Errorf("expected 1 success and %d conflicts, got %d and %d", attempts-1, succeeded, conflicts)
	}

	n := mongo.CountDocuments(t, testutil.BookingsCollection, bson.M{"court_id": court.ID, "start_time": "20:00"})
	if n != 1 {
		t.Errorf("expected exactly one stored booking, got %d", n)
	}
}
