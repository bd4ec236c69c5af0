package usecases

import (
	"context"
	"fmt"
	"testing"

	"github.com/example/gymbook/internal/domain/booking"
	"github.com/example/gymbook/internal/infrastructure/snapshot"
	"github.com/example/gymbook/internal/site"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openDay signs in and opens day on the fixture site, returning the resolver and the first matching row.
func openDay(t *testing.T, g *gymSite, day string, classifier booking.Classifier) (Resolver, booking.TimeSlotRow) {
	t.Helper()
	ctx := context.Background()
	s := testSettings()
	s.Classifier = classifier
	run := NewRun(g.page(t), s, nil, nil)
	require.NoError(t, run.SignIn.Execute(ctx))

	days, err := run.Calendar.Execute(ctx)
	require.NoError(t, err)
	for _, d := range days {
		if d.Label != day {
			continue
		}
		span, err := d.Element.Find(ctx, "span")
		require.NoError(t, err)
		require.NoError(t, span.Click(ctx))
	}
	rows, err := ReadRows(ctx, run.Orchestrator.Page, s.Selectors)
	require.NoError(t, err)
	row, ok := booking.FindMatchingRow(rows, s.Target)
	require.True(t, ok)
	return run.Orchestrator.Resolver, row
}

func TestSubmitAndResolve(t *testing.T) {
	tests := []struct {
		name    string
		message string
		strict  bool
		want    booking.Outcome
	}{
		{"empty message", "", false, booking.OutcomeSuccess},
		{"conflict", "Ya existe una reserva para el día", false, booking.OutcomeAlreadyBooked},
		{"conflict strict", "Ya existe una reserva", true, booking.OutcomeAlreadyBooked},
		{"unknown text fails open", "Cupo completo", false, booking.OutcomeSuccess},
		{"unknown text strict", "Cupo completo", true, booking.OutcomeUnexpected},
		{"whitespace strict", "  \n ", true, booking.OutcomeSuccess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := standardSite()
			g.messages["12"] = tt.message
			r, row := openDay(t, g, "12", booking.Classifier{ConflictMessage: site.BookingAlreadyExists, Strict: tt.strict})

			got, err := r.SubmitAndResolve(context.Background(), row)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubmitAndResolveRowWithoutButton(t *testing.T) {
	g := standardSite()
	r, _ := openDay(t, g, "12", booking.Classifier{ConflictMessage: site.BookingAlreadyExists})

	rows, err := ReadRows(context.Background(), r.Page, r.Selectors)
	require.NoError(t, err)
	cell, err := rows[0].Element.Find(context.Background(), "td")
	require.NoError(t, err)

	_, err = r.SubmitAndResolve(context.Background(), booking.TimeSlotRow{Label: rows[0].Label, Element: cell})
	assert.ErrorIs(t, err, booking.ErrTimeout)
	assert.Contains(t, err.Error(), "row button")
}

func TestSubmitAndResolveWaitsForVisibleRowButton(t *testing.T) {
	g := standardSite()
	g.hiddenButtons = true
	r, row := openDay(t, g, "12", booking.Classifier{ConflictMessage: site.BookingAlreadyExists})
	page := r.Page.(*snapshot.Page)
	before := len(page.Clicks())

	_, err := r.SubmitAndResolve(context.Background(), row)
	assert.ErrorIs(t, err, booking.ErrTimeout)
	assert.Contains(t, err.Error(), "row button")
	assert.Len(t, page.Clicks(), before, "a hidden button is never clicked")
}

// busyPage reports the network as busy on the n-th WaitNetworkIdle call.
type busyPage struct {
	booking.Page
	busyAt int
	calls  int
}

func (p *busyPage) WaitNetworkIdle(ctx context.Context) error {
	p.calls++
	if p.calls == p.busyAt {
		return fmt.Errorf("%w: network still busy", booking.ErrTimeout)
	}
	return p.Page.WaitNetworkIdle(ctx)
}

func TestSubmitAndResolveNamesStalledStep(t *testing.T) {
	tests := []struct {
		busyAt int
		want   string
	}{
		{1, "after selecting row"},
		{2, "after confirming"},
		{3, "after dismissing dialog"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			r, row := openDay(t, standardSite(), "12", booking.Classifier{ConflictMessage: site.BookingAlreadyExists})
			r.Page = &busyPage{Page: r.Page, busyAt: tt.busyAt}

			_, err := r.SubmitAndResolve(context.Background(), row)
			require.Error(t, err)
			assert.ErrorIs(t, err, booking.ErrTimeout)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
