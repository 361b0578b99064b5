package attendance

import (
	"errors"
	"strings"

	attendanceerrors "github.com/Tabintel/attendance/internal/attendance/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueEmployeeDate = "uq_attendance_employee_date"

// errStaleVersion is returned by Update when the row moved on since it was read.
var errStaleVersion = errors.New("attendance record version is stale")

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return attendanceerrors.ErrRecordNotFound
	}
	if errors.Is(err, errStaleVersion) {
		return attendanceerrors.ErrConcurrentUpdate.WithCause(err)
	}
	if isUniqueEmployeeDateViolation(err) {
		return attendanceerrors.ErrSessionAlreadyOpen.WithCause(err)
	}

	return err
}

func isUniqueEmployeeDateViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == uniqueEmployeeDate
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, uniqueEmployeeDate)
}
