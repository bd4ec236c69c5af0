package usecases

import (
	"context"
	"time"

	"github.com/example/gymbook/internal/domain/booking"
	"github.com/example/gymbook/internal/logging"
	"github.com/example/gymbook/internal/metrics"
	"github.com/google/uuid"
)

// Run signs in, reads the calendar and books every eligible day.
type Run struct {
	// ID tags every record logged during the run.
	ID           string
	SignIn       SignIn
	Calendar     ReadCalendar
	Orchestrator Orchestrator
	Logger       *logging.Logger
	Metrics      *metrics.BookingMetrics
}

func NewRun(page booking.Page, s Settings, logger *logging.Logger, m *metrics.BookingMetrics) Run {
	id := uuid.NewString()
	logger = loggerOrDiscard(logger).With("run_id", id)
	return Run{
		SignIn: SignIn{
			Page:        page,
			Selectors:   s.Selectors,
			LoginURL:    s.LoginURL,
			BookingURL:  s.BookingURL,
			Username:    s.Username,
			Password:    s.Password,
			ServiceID:   s.ServiceID,
			WaitTimeout: s.WaitTimeout,
			Logger:      logger,
		},
		Calendar: ReadCalendar{Page: page, Selectors: s.Selectors},
		Orchestrator: Orchestrator{
			Page:      page,
			Selectors: s.Selectors,
			Target:    s.Target,
			Resolver: Resolver{
				Page:        page,
				Selectors:   s.Selectors,
				Classifier:  s.Classifier,
				WaitTimeout: s.WaitTimeout,
				Logger:      logger,
			},
			TimetableTimeout: s.TimetableTimeout,
			Location:         s.Location,
			Logger:           logger,
			Metrics:          m,
		},
		ID:      id,
		Logger:  logger,
		Metrics: m,
	}
}

func (u Run) Execute(ctx context.Context) (report booking.Report, err error) {
	log := loggerOrDiscard(u.Logger)
	started := time.Now()
	defer func() {
		if err != nil {
			log.Error("run aborted", "err", err, "visited", len(report.Results))
		}
		u.Metrics.ObserveRun(started, time.Now(), err)
	}()

	if err = u.SignIn.Execute(ctx); err != nil {
		return booking.Report{}, err
	}
	days, err := u.Calendar.Execute(ctx)
	if err != nil {
		return booking.Report{}, err
	}
	if len(days) == 0 {
		log.Warn("calendar has no active days")
	}

	report, err = u.Orchestrator.Run(ctx, days)
	if err != nil {
		return report, err
	}
	log.Info("run finished",
		"today", report.Today,
		"success", report.Count(booking.OutcomeSuccess),
		"already_booked", report.Count(booking.OutcomeAlreadyBooked),
		"unmatched", report.Count(booking.OutcomeUnmatched),
		"unexpected", report.Count(booking.OutcomeUnexpected),
	)
	return report, nil
}
