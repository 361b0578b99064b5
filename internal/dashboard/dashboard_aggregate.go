package dashboard

import (
	"time"

	"github.com/Tabintel/attendance/internal/attendance"
)

// ComputeMetrics summarizes records for r. The reference day is r.To.
// records may extend before r.From so the week of the reference day can
// be totalled; they are filtered here.
func ComputeMetrics(records []attendance.AttendanceRecord, r DateRange) MetricsResponse {
	ref := r.To
	weekStart := attendance.WeekStart(ref)

	resp := MetricsResponse{
		From:          r.From.Format(attendance.DateLayout),
		To:            r.To.Format(attendance.DateLayout),
		ReferenceDate: ref.Format(attendance.DateLayout),
	}

	var onTime, late int
	for _, rec := range records {
		if !rec.WorkDate.Before(weekStart) && !rec.WorkDate.After(ref) {
			resp.TotalHoursThisWeek += rec.TotalHours
		}
		if !r.contains(rec.WorkDate) {
			continue
		}

		resp.TotalRecords++
		switch rec.Status {
		case attendance.StatusOnTime:
			onTime++
		case attendance.StatusLate:
			late++
		}

		if !rec.WorkDate.Equal(ref) {
			continue
		}
		if rec.IsPresent() {
			resp.PresentToday++
		}
		switch rec.Status {
		case attendance.StatusAbsent:
			resp.AbsentToday++
		case attendance.StatusLate:
			resp.LateArrivals++
		case attendance.StatusOnTime:
			resp.OnTimeToday++
		case attendance.StatusUnclassified:
			resp.UnclassifiedToday++
		}
	}

	if onTime+late > 0 {
		resp.OnTimePercentage = float64(onTime) / float64(onTime+late) * 100
	}
	resp.TotalHoursThisWeekDisplay = attendance.FormatHours(resp.TotalHoursThisWeek)
	return resp
}

// ComputeSeries returns one zero-filled point per day of r and the late
// count for each of the last weeks ISO weeks, ending with the week of r.To.
func ComputeSeries(records []attendance.AttendanceRecord, r DateRange, weeks int) SeriesResponse {
	resp := SeriesResponse{
		From:       r.From.Format(attendance.DateLayout),
		To:         r.To.Format(attendance.DateLayout),
		Days:       make([]DayPoint, r.Days()),
		WeeklyLate: make([]WeekPoint, weeks),
	}

	dayIndex := make(map[string]int, len(resp.Days))
	for i := range resp.Days {
		d := r.From.AddDate(0, 0, i).Format(attendance.DateLayout)
		resp.Days[i].Date = d
		dayIndex[d] = i
	}

	lastWeek := attendance.WeekStart(r.To)
	firstWeek := lastWeek.AddDate(0, 0, -7*(weeks-1))
	weekIndex := make(map[string]int, weeks)
	for i := range resp.WeeklyLate {
		start := firstWeek.AddDate(0, 0, 7*i)
		key := attendance.ISOWeekKey(start)
		resp.WeeklyLate[i] = WeekPoint{Week: key, StartDate: start.Format(attendance.DateLayout)}
		weekIndex[key] = i
	}
	weekEnd := r.To

	for _, rec := range records {
		if rec.Status == attendance.StatusLate && !rec.WorkDate.Before(firstWeek) && !rec.WorkDate.After(weekEnd) {
			if i, ok := weekIndex[attendance.ISOWeekKey(rec.WorkDate)]; ok {
				resp.WeeklyLate[i].Late++
			}
		}

		i, ok := dayIndex[rec.WorkDate.Format(attendance.DateLayout)]
		if !ok {
			continue
		}
		p := &resp.Days[i]
		if rec.IsPresent() {
			p.Present++
		}
		switch rec.Status {
		case attendance.StatusAbsent:
			p.Absent++
		case attendance.StatusLate:
			p.Late++
		case attendance.StatusOnTime:
			p.OnTime++
		case attendance.StatusUnclassified:
			p.Unclassified++
		}
		p.TotalHours += rec.TotalHours
	}
	return resp
}

// earliest returns the first work date ComputeMetrics or ComputeSeries
// will look at.
func earliest(r DateRange, weeks int) time.Time {
	from := r.From
	if ws := attendance.WeekStart(r.To).AddDate(0, 0, -7*(weeks-1)); ws.Before(from) {
		from = ws
	}
	return from
}
