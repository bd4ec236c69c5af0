package booking

import "strings"

// SelectEligibleDays keeps the active days whose numeric label is strictly greater than today.
// Labels that do not parse are dropped. Document order is preserved.
func SelectEligibleDays(days []CalendarDay, today int) []CalendarDay {
	var out []CalendarDay
	for _, d := range days {
		if !d.Active {
			continue
		}
		n, ok := d.DayOfMonth()
		if !ok || n <= today {
			continue
		}
		out = append(out, d)
	}
	return out
}

// FindMatchingRow returns the first row whose label contains target.
// Whitespace and brackets are significant; nothing is normalized.
func FindMatchingRow(rows []TimeSlotRow, target TargetTimeRange) (TimeSlotRow, bool) {
	if target == "" {
		return TimeSlotRow{}, false
	}
	for _, r := range rows {
		if strings.Contains(r.Label, string(target)) {
			return r, true
		}
	}
	return TimeSlotRow{}, false
}
