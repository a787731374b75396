// Package pricing resolves what a court slot costs on a given date.
//
// A slot is priced by its start time alone. Active rate schedules whose
// weekday set and [start, end) window cover the slot compete and the highest
// rate wins; with no match the court's hourly rate applies.
package pricing

import (
	"context"
	"errors"
	"fmt"
	courterrors "padelhub/internal/courts/errors"
	"padelhub/pkg/logger"
	"padelhub/pkg/model"
	"padelhub/pkg/timeslot"
	"time"

	"golang.org/x/sync/errgroup"
)

const DefaultRateName = "default"

var ErrCourtNotFound = errors.New("court not found for pricing")

type CourtSource interface {
	FindByID(ctx context.Context, id string) (*model.Court, error)
}

type ScheduleSource interface {
	FindByCourt(ctx context.Context, courtID string, activeOnly bool) ([]*model.RateSchedule, error)
}

type Resolver struct {
	courts    CourtSource
	schedules ScheduleSource
	log       *logger.Logger
}

func NewResolver(courts CourtSource, schedules ScheduleSource, log *logger.Logger) *Resolver {
	return &Resolver{
		courts:    courts,
		schedules: schedules,
		log:       log,
	}
}

// Match is the outcome of pricing a single slot. Schedule is nil when the
// court's hourly rate applied.
type Match struct {
	RateCents int64
	Schedule  *model.RateSchedule
}

// SelectRate picks the rate for a slot starting at slot on the given ISO
// weekday. On equal rates the oldest schedule (then the lowest id) is
// reported, so the source does not depend on query order.
func SelectRate(court *model.Court, schedules []*model.RateSchedule, weekday int, slot timeslot.TimeOfDay) Match {
	var best *model.RateSchedule
	for _, sc := range schedules {
		if !covers(sc, weekday, slot) {
			continue
		}
		if best == nil || outranks(sc, best) {
			best = sc
		}
	}

	if best == nil {
		return Match{RateCents: court.HourlyRateCents}
	}
	return Match{RateCents: best.RateCents, Schedule: best}
}

func outranks(a, b *model.RateSchedule) bool {
	if a.RateCents != b.RateCents {
		return a.RateCents > b.RateCents
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func covers(sc *model.RateSchedule, weekday int, slot timeslot.TimeOfDay) bool {
	if !sc.IsActive || !timeslot.ContainsWeekday(sc.DaysOfWeek, weekday) {
		return false
	}
	start, err := timeslot.Parse(sc.StartTime)
	if err != nil {
		return false
	}
	end, err := timeslot.Parse(sc.EndTime)
	if err != nil {
		return false
	}
	return slot.Within(start, end)
}

// Snapshot is a court and its active schedules loaded once and reused for
// every slot of a request.
type Snapshot struct {
	Court     *model.Court
	Schedules []*model.RateSchedule
}

// Load reads the court and its active schedules concurrently.
func (r *Resolver) Load(ctx context.Context, courtID string) (*Snapshot, error) {
	var court *model.Court
	var schedules []*model.RateSchedule

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := r.courts.FindByID(gctx, courtID)
		if err != nil {
			if errors.Is(err, courterrors.ErrNotFound) || errors.Is(err, courterrors.ErrInvalidID) {
				return fmt.Errorf("%w: %s", ErrCourtNotFound, courtID)
			}
			return fmt.Errorf("failed to load court %s: %w", courtID, err)
		}
		court = c
		return nil
	})
	g.Go(func() error {
		s, err := r.schedules.FindByCourt(gctx, courtID, true)
		if err != nil {
			return fmt.Errorf("failed to load rate schedules for court %s: %w", courtID, err)
		}
		schedules = s
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Snapshot{Court: court, Schedules: schedules}, nil
}

// Price resolves every slot against the snapshot. Each slot is priced by its
// own start time and never split across schedule boundaries.
func (s *Snapshot) Price(date time.Time, slots []timeslot.TimeOfDay, slotDurationMin int) *model.Quote {
	weekday := timeslot.ISOWeekday(date)

	quote := &model.Quote{
		CourtID:     s.Court.ID,
		BookingDate: timeslot.FormatDate(date),
		Slots:       make([]model.SlotPrice, 0, len(slots)),
	}
	for _, slot := range slots {
		m := SelectRate(s.Court, s.Schedules, weekday, slot)

		price := model.SlotPrice{
			StartTime:    slot.String(),
			EndTime:      slot.Add(slotDurationMin).String(),
			PriceCents:   m.RateCents,
			ScheduleName: DefaultRateName,
		}
		if m.Schedule != nil {
			price.ScheduleID = m.Schedule.ID
			price.ScheduleName = m.Schedule.Name
		}

		quote.Slots = append(quote.Slots, price)
		quote.TotalCents += m.RateCents
	}
	return quote
}

// Resolve prices a single slot.
func (r *Resolver) Resolve(ctx context.Context, courtID string, date time.Time, slot timeslot.TimeOfDay) (int64, error) {
	snap, err := r.Load(ctx, courtID)
	if err != nil {
		return 0, err
	}
	return SelectRate(snap.Court, snap.Schedules, timeslot.ISOWeekday(date), slot).RateCents, nil
}

// Quote prices several slots with a single court and schedule lookup.
func (r *Resolver) Quote(ctx context.Context, courtID string, date time.Time, slots []timeslot.TimeOfDay, slotDurationMin int) (*model.Quote, error) {
	snap, err := r.Load(ctx, courtID)
	if err != nil {
		return nil, err
	}

	quote := snap.Price(date, slots, slotDurationMin)
	r.log.Debug("Slots priced",
		"court_id", courtID,
		"date", quote.BookingDate,
		"slots", len(slots),
		"total_cents", quote.TotalCents,
	)
	return quote, nil
}
