package attendanceerrors

import (
	"net/http"

	"github.com/Tabintel/attendance/internal/shared/apperror"
)

var (
	ErrInstantOutOfOrder = apperror.New(
		"INSTANT_OUT_OF_ORDER",
		"Clock event is not later than the last recorded event for this day",
		http.StatusUnprocessableEntity,
	)
	ErrSessionAlreadyOpen = apperror.New(
		"SESSION_ALREADY_OPEN",
		"Employee is already clocked in",
		http.StatusConflict,
	)
	ErrSessionAlreadyClosed = apperror.New(
		"SESSION_ALREADY_CLOSED",
		"Attendance for this day is already closed",
		http.StatusConflict,
	)
	ErrNoOpenSession = apperror.New(
		"NO_OPEN_SESSION",
		"Employee has no open session to clock out of",
		http.StatusConflict,
	)
	ErrNegativeDuration = apperror.New(
		"NEGATIVE_DURATION",
		"Clock-out does not come after clock-in",
		http.StatusInternalServerError,
	)
	ErrConcurrentUpdate = apperror.New(
		apperror.CodeConflict,
		"Attendance record was modified concurrently",
		http.StatusConflict,
	)
	ErrLockTimeout = apperror.New(
		apperror.CodeServiceUnavailable,
		"Attendance record is busy, try again later",
		http.StatusServiceUnavailable,
	)
	ErrRecordNotFound = apperror.New(
		apperror.CodeNotFound,
		"Attendance record not found",
		http.StatusNotFound,
	)
	ErrInvalidDirection = apperror.New(
		apperror.CodeInvalidInput,
		"Direction must be 'in' or 'out'",
		http.StatusBadRequest,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrDayNotEnded = apperror.New(
		apperror.CodeInvalidInput,
		"Only days that have already ended can be closed out",
		http.StatusBadRequest,
	)
	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeInvalidInput,
		"Status filter must be one of all, present, absent, late, on-time, unclassified",
		http.StatusBadRequest,
	)
	ErrInvalidSort = apperror.New(
		apperror.CodeInvalidInput,
		"Sort must be one of name, date, status, hours",
		http.StatusBadRequest,
	)
)
