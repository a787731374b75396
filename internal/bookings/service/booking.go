package service

import (
	"context"
	"errors"
	"fmt"
	"padelhub/internal/availability"
	bookingserrors "padelhub/internal/bookings/errors"
	"padelhub/internal/bookings/repository"
	"padelhub/internal/bookings/validator"
	"padelhub/internal/notifications"
	"padelhub/internal/pricing"
	"padelhub/internal/settings"
	"padelhub/pkg/config"
	apperrors "padelhub/pkg/errors"
	"padelhub/pkg/model"
	"padelhub/pkg/sanitizer"
	"padelhub/pkg/timeslot"
	"padelhub/pkg/validation"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

const DefaultCancelReason = "Cancelled by user"

type BookingService interface {
	Create(ctx context.Context, req *model.BookingRequest, st settings.Settings) ([]*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListByCourtAndDate(ctx context.Context, courtID, bookingDate string) ([]*model.Booking, error)
	ListByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error)
	Availability(ctx context.Context, courtID, bookingDate string, st settings.Settings) (*model.Availability, error)
	Quote(ctx context.Context, courtID, bookingDate string, slots []string, st settings.Settings) (*model.Quote, error)
	Cancel(ctx context.Context, id, userID string, req *model.BookingCancel, st settings.Settings) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id string, req *model.BookingStatusUpdate, st settings.Settings) (*model.Booking, error)
}

// PriceLoader loads a court with its active rate schedules.
type PriceLoader interface {
	Load(ctx context.Context, courtID string) (*pricing.Snapshot, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	prices    PriceLoader
	validator *validator.BookingValidator
	notifier  notifications.Notifier
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	prices PriceLoader,
	validator *validator.BookingValidator,
	notifier notifications.Notifier,
	cfg *config.Config,
) BookingService {
	if notifier == nil {
		notifier = notifications.NoopNotifier{}
	}
	return &bookingService{
		repo:      repo,
		prices:    prices,
		validator: validator,
		notifier:  notifier,
		cfg:       cfg,
		now:       cfg.Now,
	}
}

// Create books every requested slot or none of them.
func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest, st settings.Settings) ([]*model.Booking, error) {
	if req == nil {
		return nil, apperrors.InvalidInput("Booking request cannot be empty")
	}
	s.sanitize(req)

	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed",
			"court_id", req.CourtID,
			"user_id", req.UserID,
			"error", err,
		)
		return nil, validationError(err)
	}

	date, err := timeslot.ParseDate(req.BookingDate)
	if err != nil {
		return nil, apperrors.Validation("Booking validation failed", validation.Single("booking_date", err.Error()).Details())
	}
	slots, err := parseSlots(req.Slots, st)
	if err != nil {
		s.cfg.Log.Warn("Booking slots rejected", "court_id", req.CourtID, "slots", req.Slots, "error", err)
		return nil, err
	}

	if len(slots) == 0 {
		return nil, apperrors.Validation("Please select at least one time slot", map[string]any{
			"slots": "at least one slot is required",
		})
	}
	if len(slots) > st.MaxSlotsPerBooking {
		s.cfg.Log.Warn("Booking exceeds slot limit",
			"court_id", req.CourtID,
			"user_id", req.UserID,
			"requested", len(slots),
			"max_slots_per_booking", st.MaxSlotsPerBooking,
		)
		return nil, apperrors.Validation(
			fmt.Sprintf("You can book at most %d slots at a time", st.MaxSlotsPerBooking),
			map[string]any{
				"max_slots_per_booking": st.MaxSlotsPerBooking,
				"requested":             len(slots),
			},
		)
	}

	if st.MaintenanceMode {
		s.cfg.Log.Info("Booking rejected during maintenance", "court_id", req.CourtID, "user_id", req.UserID)
		return nil, apperrors.Maintenance()
	}

	snap, err := s.prices.Load(ctx, req.CourtID)
	if err != nil {
		if errors.Is(err, pricing.ErrCourtNotFound) {
			s.cfg.Log.Warn("Booking for unknown court", "court_id", req.CourtID, "error", err)
			return nil, apperrors.PricingFailure(req.CourtID, err)
		}
		s.cfg.Log.Error("Failed to load court pricing", "court_id", req.CourtID, "error", err)
		return nil, apperrors.Internal("Failed to load court pricing", err)
	}
	if !snap.Court.IsActive {
		return nil, apperrors.Validation("Court is not available for booking", map[string]any{
			"court_id": req.CourtID,
		})
	}

	var created []*model.Booking
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindByCourtAndDate(sessCtx, req.CourtID, req.BookingDate, true)
		if err != nil {
			return apperrors.Internal("Failed to check slot availability", err)
		}
		if taken := availability.Taken(req.CourtID, req.BookingDate, slots, existing, st.SlotDurationMin); len(taken) > 0 {
			return apperrors.SlotUnavailable(formatSlots(taken))
		}

		if err := s.checkDateWindow(date, st); err != nil {
			return err
		}

		quote := snap.Price(date, slots, st.SlotDurationMin)
		bookings := s.build(req, quote, st)

		if err := s.repo.InsertMany(sessCtx, bookings); err != nil {
			if errors.Is(err, bookingserrors.ErrSlotTaken) {
				return apperrors.SlotUnavailable(formatSlots(slots))
			}
			return apperrors.Internal("Failed to create booking", err)
		}
		created = bookings
		return nil
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeInternal) || !apperrors.IsAppError(err) {
			s.cfg.Log.Error("Failed to create booking",
				"court_id", req.CourtID,
				"booking_date", req.BookingDate,
				"error", err,
			)
		} else {
			s.cfg.Log.Warn("Booking rejected",
				"court_id", req.CourtID,
				"booking_date", req.BookingDate,
				"slots", req.Slots,
				"error", err,
			)
		}
		if !apperrors.IsAppError(err) {
			return nil, apperrors.Internal("Failed to create booking", err)
		}
		return nil, err
	}

	s.publish(ctx, st, notifications.NewEvent(notifications.EventBookingCreated, created))

	var total int64
	for _, b := range created {
		total += b.TotalAmountCents
	}
	s.cfg.Log.Info("Booking created successfully",
		"court_id", req.CourtID,
		"user_id", req.UserID,
		"booking_date", req.BookingDate,
		"slots", len(created),
		"total_cents", total,
		"status", created[0].Status,
	)
	return created, nil
}

func (s *bookingService) build(req *model.BookingRequest, quote *model.Quote, st settings.Settings) []*model.Booking {
	status := model.BookingStatusPending
	if st.AutoConfirmBookings {
		status = model.BookingStatusConfirmed
	}

	bookings := make([]*model.Booking, 0, len(quote.Slots))
	for _, slot := range quote.Slots {
		bookings = append(bookings, &model.Booking{
			CourtID:          req.CourtID,
			UserID:           req.UserID,
			BookingDate:      req.BookingDate,
			StartTime:        slot.StartTime,
			EndTime:          slot.EndTime,
			TotalAmountCents: slot.PriceCents,
			Status:           status,
			Notes:            req.Notes,
		})
	}
	return bookings
}

// checkDateWindow enforces today <= date <= today + advance days, with
// today taken at the venue.
func (s *bookingService) checkDateWindow(date time.Time, st settings.Settings) error {
	today := timeslot.DateOf(s.now())
	days := timeslot.DaysBetween(today, date)

	if days < 0 {
		return apperrors.Validation("Cannot book dates in the past", map[string]any{
			"booking_date": timeslot.FormatDate(date),
			"today":        timeslot.FormatDate(today),
		})
	}
	if days > st.BookingAdvanceDays {
		return apperrors.Validation(
			fmt.Sprintf("Bookings can only be made up to %d days in advance", st.BookingAdvanceDays),
			map[string]any{
				"booking_date":         timeslot.FormatDate(date),
				"booking_advance_days": st.BookingAdvanceDays,
			},
		)
	}
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to get booking by ID", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *bookingService) ListByCourtAndDate(ctx context.Context, courtID, bookingDate string) ([]*model.Booking, error) {
	if courtID == "" || bookingDate == "" {
		return nil, apperrors.InvalidInput("court_id and date are required")
	}
	if _, err := timeslot.ParseDate(bookingDate); err != nil {
		return nil, apperrors.InvalidInput("Invalid date format, expected YYYY-MM-DD")
	}

	bookings, err := s.repo.FindByCourtAndDate(ctx, courtID, bookingDate, false)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings",
			"court_id", courtID,
			"booking_date", bookingDate,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	s.cfg.Log.Debug("Bookings listed",
		"court_id", courtID,
		"booking_date", bookingDate,
		"results_count", len(bookings),
	)
	return bookings, nil
}

func (s *bookingService) ListByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if userID == "" {
		return nil, 0, apperrors.InvalidInput("User ID cannot be empty")
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByUser(ctx, userID)
		if err != nil {
			s.cfg.Log.Error("Failed to count user bookings", "user_id", userID, "error", err)
			errCount = apperrors.Internal("Failed to count bookings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		bookings, err = s.repo.FindByUser(ctx, userID, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list user bookings",
				"user_id", userID,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve bookings", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return bookings, count, nil
}

// Availability lists every slot of the day with its price and whether it
// can still be booked.
func (s *bookingService) Availability(ctx context.Context, courtID, bookingDate string, st settings.Settings) (*model.Availability, error) {
	date, err := timeslot.ParseDate(bookingDate)
	if err != nil {
		return nil, apperrors.InvalidInput("Invalid date format, expected YYYY-MM-DD")
	}

	var snap *pricing.Snapshot
	var existing []*model.Booking

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap, err = s.prices.Load(gctx, courtID)
		return err
	})
	g.Go(func() error {
		var err error
		existing, err = s.repo.FindByCourtAndDate(gctx, courtID, bookingDate, true)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.courtLookupError(courtID, err)
	}

	grid := availability.Grid(st.Opening(), st.Closing(), st.SlotDurationMin)
	free := make(map[timeslot.TimeOfDay]bool, len(grid))
	for _, slot := range availability.AvailableSlots(courtID, bookingDate, grid, existing, st.SlotDurationMin) {
		free[slot] = true
	}

	quote := snap.Price(date, grid, st.SlotDurationMin)
	result := &model.Availability{
		CourtID:     courtID,
		BookingDate: bookingDate,
		Slots:       make([]model.SlotAvailability, 0, len(grid)),
	}
	for i, slot := range grid {
		result.Slots = append(result.Slots, model.SlotAvailability{
			StartTime:  quote.Slots[i].StartTime,
			EndTime:    quote.Slots[i].EndTime,
			Available:  free[slot] && snap.Court.IsActive,
			PriceCents: quote.Slots[i].PriceCents,
		})
	}

	s.cfg.Log.Debug("Availability computed",
		"court_id", courtID,
		"booking_date", bookingDate,
		"slots", len(grid),
		"free", len(free),
	)
	return result, nil
}

func (s *bookingService) Quote(ctx context.Context, courtID, bookingDate string, slots []string, st settings.Settings) (*model.Quote, error) {
	date, err := timeslot.ParseDate(bookingDate)
	if err != nil {
		return nil, apperrors.InvalidInput("Invalid date format, expected YYYY-MM-DD")
	}
	if len(slots) == 0 {
		return nil, apperrors.InvalidInput("At least one slot is required")
	}

	open, closing := st.Opening(), st.Closing()
	parsed := make([]timeslot.TimeOfDay, 0, len(slots))
	for _, raw := range slots {
		t, err := timeslot.Parse(raw)
		if err != nil {
			return nil, apperrors.InvalidInput(fmt.Sprintf("Invalid slot %q, expected HH:MM", raw))
		}
		if !availability.OnGrid(open, closing, st.SlotDurationMin, t) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("Slot %s is not a bookable start between %s and %s", t, open, closing))
		}
		parsed = append(parsed, t)
	}

	snap, err := s.prices.Load(ctx, courtID)
	if err != nil {
		return nil, s.courtLookupError(courtID, err)
	}
	return snap.Price(date, parsed, st.SlotDurationMin), nil
}

// Cancel lets the owner cancel a pending or confirmed booking while the
// cancellation window is still open.
func (s *bookingService) Cancel(ctx context.Context, id, userID string, req *model.BookingCancel, st settings.Settings) (*model.Booking, error) {
	if req == nil {
		req = &model.BookingCancel{}
	}
	req.Reason = sanitizer.NormalizeNotes(req.Reason)
	if err := s.validator.ValidateCancel(req); err != nil {
		return nil, validationError(err)
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		s.cfg.Log.Warn("Cancellation by non-owner rejected", "id", id, "user_id", userID)
		return nil, apperrors.Forbidden("You can only cancel your own bookings")
	}
	if !model.IsCancellable(existing.Status) {
		return nil, apperrors.Conflict(fmt.Sprintf("Booking cannot be cancelled while %s", existing.Status))
	}

	if err := s.checkCancellationWindow(existing, st); err != nil {
		return nil, err
	}

	reason := req.Reason
	if reason == "" {
		reason = DefaultCancelReason
	}

	updated, err := s.transition(ctx, existing, model.BookingStatusCancelled, reason)
	if err != nil {
		return nil, err
	}

	ev := notifications.NewEvent(notifications.EventBookingCancelled, []*model.Booking{updated})
	ev.PreviousStatus = existing.Status
	s.publish(ctx, st, ev)

	s.cfg.Log.Info("Booking cancelled successfully", "id", id, "user_id", userID, "previous_status", existing.Status)
	return updated, nil
}

func (s *bookingService) checkCancellationWindow(b *model.Booking, st settings.Settings) error {
	date, errDate := timeslot.ParseDate(b.BookingDate)
	start, errStart := timeslot.Parse(b.StartTime)
	if errDate != nil || errStart != nil {
		return apperrors.Internal("Stored booking has an invalid date or time", errors.Join(errDate, errStart))
	}

	now := s.now()
	startsAt := timeslot.At(date, start, now.Location())
	if startsAt.Sub(now) < time.Duration(st.CancellationHours)*time.Hour {
		return apperrors.Validation(
			fmt.Sprintf("Bookings can only be cancelled at least %d hours before the start time", st.CancellationHours),
			map[string]any{
				"cancellation_hours": st.CancellationHours,
				"starts_at":          startsAt.Format(time.RFC3339),
			},
		)
	}
	return nil
}

// UpdateStatus applies an admin status change. Cancelled and completed
// bookings are final.
func (s *bookingService) UpdateStatus(ctx context.Context, id string, req *model.BookingStatusUpdate, st settings.Settings) (*model.Booking, error) {
	if req == nil {
		return nil, apperrors.InvalidInput("Status update cannot be empty")
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if err := s.validator.ValidateStatusUpdate(req); err != nil {
		return nil, validationError(err)
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !model.CanTransition(existing.Status, req.Status) {
		return nil, apperrors.Conflict(fmt.Sprintf("Cannot change booking status from %s to %s", existing.Status, req.Status))
	}

	updated, err := s.transition(ctx, existing, req.Status, "")
	if err != nil {
		return nil, err
	}

	ev := notifications.NewEvent(notifications.EventBookingStatusChanged, []*model.Booking{updated})
	ev.PreviousStatus = existing.Status
	s.publish(ctx, st, ev)

	s.cfg.Log.Info("Booking status updated successfully",
		"id", id,
		"from", existing.Status,
		"to", updated.Status,
	)
	return updated, nil
}

func (s *bookingService) transition(ctx context.Context, existing *model.Booking, to, notes string) (*model.Booking, error) {
	updated, err := s.repo.UpdateStatus(ctx, existing.ID, existing.Status, to, notes)
	if err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrStatusChanged):
			return nil, apperrors.Conflict("Booking was modified by another request, please retry")
		case errors.Is(err, bookingserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Booking", existing.ID)
		case errors.Is(err, bookingserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to update booking status",
			"id", existing.ID,
			"from", existing.Status,
			"to", to,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to update booking", err)
	}
	return updated, nil
}

func (s *bookingService) publish(ctx context.Context, st settings.Settings, ev *notifications.Event) {
	if !st.EmailNotifications {
		return
	}
	timeout := s.cfg.WriteTimeout
	if timeout <= 0 {
		timeout = config.DefaultWriteTimeout
	}
	// Detached from the caller, still bounded.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	notifications.Publish(ctx, s.notifier, s.cfg.Log, ev)
}

func (s *bookingService) courtLookupError(courtID string, err error) error {
	if errors.Is(err, pricing.ErrCourtNotFound) {
		return apperrors.NotFoundWithID("Court", courtID)
	}
	s.cfg.Log.Error("Failed to load court", "court_id", courtID, "error", err)
	return apperrors.Internal("Failed to load court", err)
}

func (s *bookingService) sanitize(req *model.BookingRequest) {
	req.UserID = sanitizer.TrimAndNormalize(req.UserID)
	req.CourtID = strings.TrimSpace(req.CourtID)
	req.BookingDate = strings.TrimSpace(req.BookingDate)
	req.Notes = sanitizer.NormalizeNotes(req.Notes)
	for i, slot := range req.Slots {
		req.Slots[i] = strings.TrimSpace(slot)
	}
}

// parseSlots parses the requested start times, rejecting duplicates and
// starts that are not on the venue's slot grid. Order is preserved.
func parseSlots(raw []string, st settings.Settings) ([]timeslot.TimeOfDay, error) {
	open, closing := st.Opening(), st.Closing()

	slots := make([]timeslot.TimeOfDay, 0, len(raw))
	seen := make(map[timeslot.TimeOfDay]bool, len(raw))
	for _, r := range raw {
		t, err := timeslot.Parse(r)
		if err != nil {
			return nil, apperrors.Validation("Booking validation failed",
				validation.Single("slots", fmt.Sprintf("%q is not a valid HH:MM time", r)).Details())
		}
		if seen[t] {
			return nil, apperrors.Validation("Booking validation failed",
				validation.Single("slots", fmt.Sprintf("%s is selected more than once", t)).Details())
		}
		if !availability.OnGrid(open, closing, st.SlotDurationMin, t) {
			return nil, apperrors.Validation("Booking validation failed",
				validation.Single("slots", fmt.Sprintf("%s is not a bookable slot start between %s and %s", t, open, closing)).Details())
		}
		seen[t] = true
		slots = append(slots, t)
	}
	return slots, nil
}

func formatSlots(slots []timeslot.TimeOfDay) []string {
	out := make([]string, 0, len(slots))
	for _, t := range slots {
		out = append(out, t.String())
	}
	return out
}

func validationError(err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Booking validation failed", verrs.Details())
	}
	return apperrors.Validation("Booking validation failed", map[string]any{
		"error": err.Error(),
	})
}
