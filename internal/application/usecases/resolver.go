package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/example/gymbook/internal/domain/booking"
	"github.com/example/gymbook/internal/logging"
	"github.com/example/gymbook/internal/site"
)

// Resolver submits a time slot and reads what the site answered.
//
// The flow is RowSelected, ConfirmationPending, OutcomeReadable, Dismissing. Each step
// waits for the page to settle before the next; any wait that runs out ends the run.
type Resolver struct {
	Page        booking.Page
	Selectors   site.Selectors
	Classifier  booking.Classifier
	WaitTimeout time.Duration
	Logger      *logging.Logger
}

func (r Resolver) SubmitAndResolve(ctx context.Context, row booking.TimeSlotRow) (booking.Outcome, error) {
	log := loggerOrDiscard(r.Logger)

	// RowSelected
	btn, err := row.Element.WaitVisible(ctx, r.Selectors.RowButton, r.WaitTimeout)
	if err != nil {
		return booking.OutcomeUnmatched, fmt.Errorf("row button: %w", err)
	}
	if err := btn.Click(ctx); err != nil {
		return booking.OutcomeUnmatched, fmt.Errorf("select row: %w", err)
	}
	if err := r.Page.WaitNetworkIdle(ctx); err != nil {
		return booking.OutcomeUnmatched, fmt.Errorf("after selecting row: %w", err)
	}
	if _, err := r.Page.WaitVisible(ctx, r.Selectors.ConfirmModal, r.WaitTimeout); err != nil {
		return booking.OutcomeUnmatched, fmt.Errorf("confirmation dialog: %w", err)
	}

	// ConfirmationPending
	accept, err := r.Page.WaitVisible(ctx, r.Selectors.AcceptButton, r.WaitTimeout)
	if err != nil {
		return booking.OutcomeUnmatched, fmt.Errorf("accept button: %w", err)
	}
	if err := accept.Click(ctx); err != nil {
		return booking.OutcomeUnmatched, fmt.Errorf("confirm: %w", err)
	}
	if err := r.Page.WaitNetworkIdle(ctx); err != nil {
		return booking.OutcomeUnmatched, fmt.Errorf("after confirming: %w", err)
	}

	// OutcomeReadable
	label, err := r.Page.Find(ctx, r.Selectors.ErrorMessage)
	if err != nil {
		return booking.OutcomeUnmatched, fmt.Errorf("outcome message: %w", err)
	}
	text, err := label.Text(ctx)
	if err != nil {
		return booking.OutcomeUnmatched, fmt.Errorf("read outcome message: %w", err)
	}
	outcome := r.Classifier.Classify(text)

	dismiss := r.Selectors.CloseButton
	switch outcome {
	case booking.OutcomeAlreadyBooked:
		log.Info("slot already booked", "message", text)
		dismiss = r.Selectors.DismissButton
	case booking.OutcomeUnexpected:
		log.Error("unexpected booking answer", "message", text)
		dismiss = r.Selectors.DismissButton
	default:
		log.Debug("booking accepted", "message", text)
	}

	// Dismissing
	b, err := r.Page.Find(ctx, dismiss)
	if err != nil {
		return outcome, fmt.Errorf("dismiss dialog: %w", err)
	}
	if err := b.Click(ctx); err != nil {
		return outcome, fmt.Errorf("dismiss dialog: %w", err)
	}
	if err := r.Page.WaitNetworkIdle(ctx); err != nil {
		return outcome, fmt.Errorf("after dismissing dialog: %w", err)
	}
	if err := r.Page.WaitHidden(ctx, r.Selectors.ConfirmModal, r.WaitTimeout); err != nil {
		return outcome, fmt.Errorf("confirmation dialog still open: %w", err)
	}
	return outcome, nil
}
