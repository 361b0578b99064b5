package app

import (
	"context"

	"github.com/Tabintel/attendance/internal/attendance"
	"github.com/Tabintel/attendance/internal/bootstrap"
	"github.com/Tabintel/attendance/internal/config"
	"github.com/Tabintel/attendance/internal/shared/contextutil"
)

// RunCloseOut runs one end-of-day sweep for date. An empty date means
// the day before today in the service time zone.
func RunCloseOut(ctx context.Context, cfg *config.Config, date string) (attendance.CloseOutResult, error) {
	infra, err := NewInfra(ctx, cfg)
	if err != nil {
		return attendance.CloseOutResult{}, err
	}
	defer infra.Close()

	if date == "" {
		date = attendance.WorkDateOf(nowFunc(), infra.Location).AddDate(0, 0, -1).Format(attendance.DateLayout)
	}

	ctx = contextutil.WithActorID(ctx, "cli")
	result, err := infra.AttendanceService().CloseOutDay(ctx, date)
	auditCloseOut(bootstrap.NewStdoutAuditLogger())(ctx, result, err)
	return result, err
}
