package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/example/gymbook/internal/application/usecases"
	"github.com/example/gymbook/internal/domain/booking"
	"github.com/example/gymbook/internal/infrastructure/snapshot"
	"github.com/example/gymbook/internal/site"
	"github.com/spf13/cobra"
)

// clock is replaced in tests.
var clock = time.Now

func newInspectCmd() *cobra.Command {
	var (
		calendarFile  string
		timetableFile string
		today         int
		target        string
		timezone      string
	)

	c := &cobra.Command{
		Use:   "inspect",
		Short: "Dry run against saved HTML: list eligible days and the row that would be booked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if timezone == "" {
				timezone = os.Getenv("TIMEZONE")
			}
			if timezone == "" {
				timezone = "Local"
			}
			loc, err := time.LoadLocation(timezone)
			if err != nil {
				return fmt.Errorf("invalid timezone: %w", err)
			}
			if today <= 0 {
				today = usecases.Orchestrator{Location: loc, Now: clock}.Today()
			}
			if target == "" {
				target = site.DefaultTargetTimeRange
				if v := os.Getenv("TARGET_TIME_RANGE"); v != "" {
					target = v
				}
			}
			ctx := context.Background()
			sel := site.Default()

			calendar, err := snapshot.Open(calendarFile)
			if err != nil {
				return fmt.Errorf("calendar: %w", err)
			}
			days, err := usecases.ReadCalendar{Page: calendar, Selectors: sel}.Execute(ctx)
			if err != nil {
				return err
			}
			eligible := booking.SelectEligibleDays(days, today)

			var (
				row     booking.TimeSlotRow
				matched bool
			)
			if timetableFile != "" {
				timetable, err := snapshot.Open(timetableFile)
				if err != nil {
					return fmt.Errorf("timetable: %w", err)
				}
				rows, err := usecases.ReadRows(ctx, timetable, sel)
				if err != nil {
					return err
				}
				row, matched = booking.FindMatchingRow(rows, booking.TargetTimeRange(target))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "today %d: %d active days, %d eligible\n", today, len(days), len(eligible))
			for _, d := range eligible {
				n, _ := d.DayOfMonth()
				switch {
				case timetableFile == "":
					fmt.Fprintf(out, "day %d\n", n)
				case matched:
					fmt.Fprintf(out, "day %d\twould book %s\n", n, row.Label)
				default:
					fmt.Fprintf(out, "day %d\t%s not offered\n", n, target)
				}
			}
			return nil
		},
	}

	c.Flags().StringVar(&calendarFile, "calendar", "", "saved booking page containing the calendar")
	c.Flags().StringVar(&timetableFile, "timetable", "", "saved time table used for every eligible day")
	c.Flags().IntVar(&today, "today", 0, "day of month to compare against (default: today)")
	c.Flags().StringVar(&timezone, "timezone", "", "location used for today (default: TIMEZONE or Local)")
	c.Flags().StringVar(&target, "target", "", "time range to look for (default: TARGET_TIME_RANGE or [ 08:00 - 09:00 ])")
	_ = c.MarkFlagRequired("calendar")

	return c
}
