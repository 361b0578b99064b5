package attendance

import "time"

type SubmitClockEventRequest struct {
	IdentityToken string     `json:"identity_token" binding:"required"`
	Instant       *time.Time `json:"instant"`
	Direction     string     `json:"direction" binding:"omitempty,oneof=in out"`
	DeviceID      string     `json:"device_id" binding:"omitempty,max=100"`
	Location      string     `json:"location" binding:"omitempty,max=150"`
}

type CloseOutRequest struct {
	Date string `json:"date" binding:"required,workdate"`
}

type RecordQuery struct {
	Date   string
	Status string
	Sort   string
	Search string
}

type RecordResponse struct {
	ID                string  `json:"id"`
	EmployeeID        string  `json:"employee_id"`
	EmployeeName      string  `json:"employee_name"`
	WorkDate          string  `json:"work_date"`
	ClockIn           *string `json:"clock_in,omitempty"`
	ClockOut          *string `json:"clock_out,omitempty"`
	Open              bool    `json:"open"`
	Status            string  `json:"status"`
	ShiftID           string  `json:"shift_id,omitempty"`
	TotalHours        float64 `json:"total_hours"`
	TotalMinutes      int     `json:"total_minutes"`
	TotalHoursDisplay string  `json:"total_hours_display"`
	Sessions          int     `json:"sessions"`
}

type ClockEventResponse struct {
	Action   string         `json:"action"`
	Record   RecordResponse `json:"record"`
	Warnings []string       `json:"-"`
}

type CloseOutResult struct {
	Date           string   `json:"date"`
	Created        int      `json:"created"`
	AlreadyPresent int      `json:"already_present"`
	StillOpen      []string `json:"still_open"`
}

type ClockLogResponse struct {
	ID       string  `json:"id"`
	Action   string  `json:"action"`
	Instant  string  `json:"instant"`
	DeviceID *string `json:"device_id,omitempty"`
	Location *string `json:"location,omitempty"`
}

type EmployeeSummaryResponse struct {
	EmployeeID          string             `json:"employee_id"`
	EmployeeName        string             `json:"employee_name"`
	Date                string             `json:"date"`
	Week                string             `json:"week"`
	WeeklyHours         float64            `json:"weekly_hours"`
	WeeklyHoursDisplay  string             `json:"weekly_hours_display"`
	MonthlyHours        float64            `json:"monthly_hours"`
	MonthlyHoursDisplay string             `json:"monthly_hours_display"`
	Today               *RecordResponse    `json:"today,omitempty"`
	Logs                []ClockLogResponse `json:"logs"`
}

func mapToResponse(r AttendanceRecord, loc *time.Location) RecordResponse {
	resp := RecordResponse{
		ID:                r.ID.String(),
		EmployeeID:        r.EmployeeID,
		EmployeeName:      r.EmployeeName,
		WorkDate:          r.WorkDate.Format(DateLayout),
		Open:              r.OpenSince != nil,
		Status:            r.Status,
		ShiftID:           r.ShiftID,
		TotalHours:        r.TotalHours,
		TotalMinutes:      RoundedMinutes(r.TotalHours),
		TotalHoursDisplay: FormatHours(r.TotalHours),
		Sessions:          r.Sessions,
	}
	if r.ClockIn != nil {
		v := r.ClockIn.In(loc).Format(time.RFC3339)
		resp.ClockIn = &v
	}
	if r.ClockOut != nil {
		v := r.ClockOut.In(loc).Format(time.RFC3339)
		resp.ClockOut = &v
	}
	return resp
}

func mapLogToResponse(l ClockLog, loc *time.Location) ClockLogResponse {
	return ClockLogResponse{
		ID:       l.ID,
		Action:   l.Action,
		Instant:  l.Instant.In(loc).Format(time.RFC3339),
		DeviceID: l.DeviceID,
		Location: l.Location,
	}
}
