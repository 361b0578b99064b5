package dashboard

import "time"

// DateRange is an inclusive span of work dates.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Days returns the number of calendar days in r, both ends included.
func (r DateRange) Days() int {
	return int(r.To.Sub(r.From).Hours()/24) + 1
}

func (r DateRange) contains(d time.Time) bool {
	return !d.Before(r.From) && !d.After(r.To)
}

type RangeQuery struct {
	From  string
	To    string
	Weeks int
}

type MetricsResponse struct {
	From                      string  `json:"from"`
	To                        string  `json:"to"`
	ReferenceDate             string  `json:"reference_date"`
	PresentToday              int     `json:"present_today"`
	AbsentToday               int     `json:"absent_today"`
	LateArrivals              int     `json:"late_arrivals"`
	OnTimeToday               int     `json:"on_time_today"`
	UnclassifiedToday         int     `json:"unclassified_today"`
	OnTimePercentage          float64 `json:"on_time_percentage"`
	TotalHoursThisWeek        float64 `json:"total_hours_this_week"`
	TotalHoursThisWeekDisplay string  `json:"total_hours_this_week_display"`
	TotalRecords              int     `json:"total_records"`
}

type DayPoint struct {
	Date         string  `json:"date"`
	Present      int     `json:"present"`
	Absent       int     `json:"absent"`
	Late         int     `json:"late"`
	OnTime       int     `json:"on_time"`
	Unclassified int     `json:"unclassified"`
	TotalHours   float64 `json:"total_hours"`
}

type WeekPoint struct {
	Week      string `json:"week"`
	StartDate string `json:"start_date"`
	Late      int    `json:"late"`
}

type SeriesResponse struct {
	From       string      `json:"from"`
	To         string      `json:"to"`
	Days       []DayPoint  `json:"days"`
	WeeklyLate []WeekPoint `json:"weekly_late"`
}
