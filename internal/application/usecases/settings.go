package usecases

import (
	"time"

	"github.com/example/gymbook/internal/config"
	"github.com/example/gymbook/internal/domain/booking"
	"github.com/example/gymbook/internal/logging"
	"github.com/example/gymbook/internal/site"
)

// Settings is the slice of configuration the booking flow needs.
type Settings struct {
	LoginURL   string
	BookingURL string
	Username   string
	Password   string
	ServiceID  string

	Target     booking.TargetTimeRange
	Classifier booking.Classifier
	Location   *time.Location

	WaitTimeout      time.Duration
	TimetableTimeout time.Duration

	Selectors site.Selectors
}

func SettingsFromConfig(cfg config.Config) Settings {
	return Settings{
		LoginURL:         cfg.LoginURL,
		BookingURL:       cfg.BookingURL,
		Username:         cfg.Username,
		Password:         cfg.Password,
		ServiceID:        cfg.ServiceID,
		Target:           booking.TargetTimeRange(cfg.TargetTimeRange),
		Classifier:       booking.Classifier{ConflictMessage: cfg.ConflictMessage, Strict: cfg.StrictOutcome},
		Location:         cfg.Location,
		WaitTimeout:      cfg.WaitTimeout,
		TimetableTimeout: cfg.TimetableTimeout,
		Selectors:        site.Default(),
	}
}

func loggerOrDiscard(l *logging.Logger) *logging.Logger {
	if l == nil {
		return logging.Discard()
	}
	return l
}
