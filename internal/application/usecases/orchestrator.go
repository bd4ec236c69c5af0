package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/example/gymbook/internal/domain/booking"
	"github.com/example/gymbook/internal/logging"
	"github.com/example/gymbook/internal/metrics"
	"github.com/example/gymbook/internal/site"
)

// Orchestrator visits every eligible day once, in calendar order, and tries to book the target range.
type Orchestrator struct {
	Page             booking.Page
	Selectors        site.Selectors
	Target           booking.TargetTimeRange
	Resolver         Resolver
	TimetableTimeout time.Duration
	Location         *time.Location
	Now              func() time.Time
	Logger           *logging.Logger
	Metrics          *metrics.BookingMetrics
}

// Today is the day of month the run compares calendar labels against.
func (o Orchestrator) Today() int {
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	loc := o.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc).Day()
}

// Run books the target range on each day after today. No outcome stops the loop; an error does.
func (o Orchestrator) Run(ctx context.Context, days []booking.CalendarDay) (booking.Report, error) {
	log := loggerOrDiscard(o.Logger)
	today := o.Today()
	report := booking.Report{Today: today}

	eligible := booking.SelectEligibleDays(days, today)
	o.Metrics.SetEligibleDays(len(eligible))
	log.Info("eligible days", "today", today, "eligible", len(eligible), "active", len(days))

	for _, day := range eligible {
		res, err := o.bookDay(ctx, day)
		if err != nil {
			return report, err
		}
		o.Metrics.ObserveOutcome(res.Outcome.String())
		report.Results = append(report.Results, res)
	}
	return report, nil
}

func (o Orchestrator) bookDay(ctx context.Context, day booking.CalendarDay) (booking.DayResult, error) {
	log := loggerOrDiscard(o.Logger)
	n, _ := day.DayOfMonth()
	res := booking.DayResult{Day: n, Label: day.Label, Outcome: booking.OutcomeUnmatched}
	log.Info("opening day", "day", n)

	btn, err := day.Element.Find(ctx, o.Selectors.DayButton)
	if err != nil {
		return res, fmt.Errorf("day %d: %w", n, err)
	}
	if err := btn.Click(ctx); err != nil {
		return res, fmt.Errorf("day %d: open: %w", n, err)
	}
	if err := o.Page.WaitNetworkIdle(ctx); err != nil {
		return res, fmt.Errorf("day %d: %w", n, err)
	}
	if _, err := o.Page.WaitVisible(ctx, o.Selectors.TimetableModal, o.TimetableTimeout); err != nil {
		return res, fmt.Errorf("day %d: time table: %w", n, err)
	}

	rows, err := ReadRows(ctx, o.Page, o.Selectors)
	if err != nil {
		return res, fmt.Errorf("day %d: %w", n, err)
	}
	row, ok := booking.FindMatchingRow(rows, o.Target)
	if !ok {
		log.Info("time range not offered", "day", n, "range", string(o.Target), "rows", len(rows))
		return res, nil
	}
	res.Row = row.Label

	log.Info("booking", "day", n, "range", row.Label)
	outcome, err := o.Resolver.SubmitAndResolve(ctx, row)
	if err != nil {
		return res, fmt.Errorf("day %d: %w", n, err)
	}
	res.Outcome = outcome
	log.Info("day done", "day", n, "range", row.Label, "outcome", outcome.String())
	return res, nil
}
