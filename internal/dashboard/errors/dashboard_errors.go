package dashboarderrors

import (
	"net/http"

	"github.com/Tabintel/attendance/internal/shared/apperror"
)

var (
	ErrInvalidRange = apperror.New(
		apperror.CodeInvalidInput,
		"Date range is invalid; use YYYY-MM-DD with from on or before to",
		http.StatusBadRequest,
	)
	ErrRangeTooLarge = apperror.New(
		apperror.CodeInvalidInput,
		"Date range may span at most 366 days",
		http.StatusBadRequest,
	)
	ErrInvalidWeeks = apperror.New(
		apperror.CodeInvalidInput,
		"Weeks must be between 1 and 52",
		http.StatusBadRequest,
	)
)
