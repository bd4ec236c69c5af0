package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/example/gymbook/internal/domain/booking"
	"github.com/example/gymbook/internal/logging"
	"github.com/example/gymbook/internal/site"
)

// SignIn logs into the gym site and leaves the page on the booking calendar of the configured service.
type SignIn struct {
	Page        booking.Page
	Selectors   site.Selectors
	LoginURL    string
	BookingURL  string
	Username    string
	Password    string
	ServiceID   string
	WaitTimeout time.Duration
	Logger      *logging.Logger
}

func (u SignIn) Execute(ctx context.Context) error {
	if u.Page == nil {
		return fmt.Errorf("page is nil")
	}
	log := loggerOrDiscard(u.Logger)
	log.Info("signing in", "url", u.LoginURL, "username", u.Username)
	if err := u.Page.Navigate(ctx, u.LoginURL); err != nil {
		return fmt.Errorf("open login page: %w", err)
	}
	if err := u.Page.Type(ctx, u.Selectors.UsernameField, u.Username); err != nil {
		return fmt.Errorf("type username: %w", err)
	}
	if err := u.Page.Type(ctx, u.Selectors.PasswordField, u.Password); err != nil {
		return fmt.Errorf("type password: %w", err)
	}
	btn, err := u.Page.Find(ctx, u.Selectors.LoginButton)
	if err != nil {
		return fmt.Errorf("login button: %w", err)
	}
	if err := btn.Click(ctx); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}
	if err := u.Page.WaitNetworkIdle(ctx); err != nil {
		return fmt.Errorf("wait for login: %w", err)
	}

	log.Info("opening booking section", "url", u.BookingURL)
	if err := u.Page.Navigate(ctx, u.BookingURL); err != nil {
		return fmt.Errorf("open booking page: %w", err)
	}
	if err := u.Page.WaitNetworkIdle(ctx); err != nil {
		return fmt.Errorf("wait for booking page: %w", err)
	}
	if err := u.Page.Select(ctx, u.Selectors.ServicesCombobox, u.ServiceID); err != nil {
		return fmt.Errorf("select service %s: %w", u.ServiceID, err)
	}
	if _, err := u.Page.WaitVisible(ctx, u.Selectors.Calendar, u.WaitTimeout); err != nil {
		return fmt.Errorf("wait for calendar: %w", err)
	}
	log.Debug("calendar visible", "service", u.ServiceID)
	return nil
}
