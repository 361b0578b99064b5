package attendance

import (
	"github.com/Tabintel/attendance/internal/middleware"
	"github.com/Tabintel/attendance/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, mw middleware.Stack) {
	kiosk := r.Group("/kiosk")
	kiosk.Use(mw.Kiosk...)
	{
		kiosk.POST("/clock", middleware.RBACAuthorize(mw.RBAC, rbac.ResourceClock, rbac.ActionCreate), h.SubmitClockEvent)
	}

	attendances := r.Group("/attendances")
	attendances.Use(mw.Auth)
	{
		attendances.GET("", middleware.RBACAuthorize(mw.RBAC, rbac.ResourceAttendance, rbac.ActionRead), h.GetRecordsForDate)
		attendances.GET("/employees/:employee_id/summary", middleware.RBACAuthorize(mw.RBAC, rbac.ResourceAttendance, rbac.ActionRead), h.GetEmployeeSummary)
		attendances.POST("/close-out", middleware.RBACAuthorize(mw.RBAC, rbac.ResourceAttendance, rbac.ActionCloseOut), h.CloseOutDay)
	}
}
