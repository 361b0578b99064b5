package attendance

import (
	"fmt"
	"math"
	"time"

	attendanceerrors "github.com/Tabintel/attendance/internal/attendance/errors"
)

// ComputeHours returns the fractional hours between in and out at full
// precision.
func ComputeHours(in, out time.Time) (float64, error) {
	if !out.After(in) {
		return 0, attendanceerrors.ErrNegativeDuration.WithDetails(map[string]string{
			"clock_in":  in.Format(time.RFC3339),
			"clock_out": out.Format(time.RFC3339),
		})
	}
	return out.Sub(in).Hours(), nil
}

// RoundedMinutes rounds hours to the nearest whole minute.
func RoundedMinutes(hours float64) int {
	return int(math.Round(hours * 60))
}

// FormatHours renders hours as "8h 30m".
func FormatHours(hours float64) string {
	minutes := RoundedMinutes(hours)
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// ISOWeekKey labels the ISO week of a work date, e.g. "2024-W09".
func ISOWeekKey(workDate time.Time) string {
	y, w := workDate.ISOWeek()
	return fmt.Sprintf("%d-W%02d", y, w)
}

// WeekStart returns the Monday of workDate's ISO week.
func WeekStart(workDate time.Time) time.Time {
	offset := (int(workDate.Weekday()) + 6) % 7
	return workDate.AddDate(0, 0, -offset)
}
