package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/gymbook/internal/domain/booking"
	"github.com/example/gymbook/internal/site"
)

// ReadCalendar lists the active days of the visible calendar in document order.
type ReadCalendar struct {
	Page      booking.Page
	Selectors site.Selectors
}

func (u ReadCalendar) Execute(ctx context.Context) ([]booking.CalendarDay, error) {
	cells, err := u.Page.FindAll(ctx, u.Selectors.ActiveDay)
	if err != nil {
		return nil, fmt.Errorf("read calendar: %w", err)
	}
	days := make([]booking.CalendarDay, 0, len(cells))
	for _, cell := range cells {
		label, err := cell.Text(ctx)
		if err != nil {
			return nil, fmt.Errorf("read day label: %w", err)
		}
		days = append(days, booking.CalendarDay{Label: label, Active: true, Element: cell})
	}
	return days, nil
}

// ReadRows enumerates the rows of the open time table. A row without a first column gets an empty label.
func ReadRows(ctx context.Context, page booking.Page, sel site.Selectors) ([]booking.TimeSlotRow, error) {
	els, err := page.FindAll(ctx, sel.Rows)
	if err != nil {
		return nil, fmt.Errorf("read time table: %w", err)
	}
	rows := make([]booking.TimeSlotRow, 0, len(els))
	for _, el := range els {
		row := booking.TimeSlotRow{Element: el}
		col, err := el.Find(ctx, sel.FirstColumn)
		switch {
		case errors.Is(err, booking.ErrNotFound):
		case err != nil:
			return nil, fmt.Errorf("read row: %w", err)
		default:
			if row.Label, err = col.Text(ctx); err != nil {
				return nil, fmt.Errorf("read row label: %w", err)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
