package directoryerrors

import (
	"net/http"

	"github.com/Tabintel/attendance/internal/shared/apperror"
)

var (
	ErrIdentityNotFound = apperror.New(
		"IDENTITY_NOT_FOUND",
		"No active employee matches the presented identity",
		http.StatusNotFound,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrNoShiftConfigured = apperror.New(
		"NO_SHIFT_CONFIGURED",
		"No shift policy is configured for this employee and date",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidPolicyBook = apperror.New(
		apperror.CodeInvalidInput,
		"Shift policy book is invalid",
		http.StatusInternalServerError,
	)
)
