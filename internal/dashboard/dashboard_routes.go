package dashboard

import (
	"github.com/Tabintel/attendance/internal/middleware"
	"github.com/Tabintel/attendance/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, mw middleware.Stack) {
	dash := r.Group("/dashboard")
	dash.Use(mw.Auth)
	dash.Use(middleware.RBACAuthorize(mw.RBAC, rbac.ResourceDashboard, rbac.ActionRead))
	{
		dash.GET("/metrics", h.GetMetrics)
		dash.GET("/series", h.GetSeries)
	}
}
