package app

import (
	"time"

	"github.com/Tabintel/attendance/internal/attendance"
	"github.com/Tabintel/attendance/internal/dashboard"
	"github.com/Tabintel/attendance/internal/middleware"
	"github.com/Tabintel/attendance/internal/rbac"
	"github.com/Tabintel/attendance/internal/rbac/infra"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func registerModules(router *gin.Engine, deps *Infra) error {
	cfg := deps.Config

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService, err := rbac.NewService(rbac.NewStaticRepository(), enforcer)
	if err != nil {
		return err
	}

	// --- Services ---
	attendanceService := deps.AttendanceService()
	dashboardService := dashboard.NewService(deps.Records, dashboard.Options{
		Location:   deps.Location,
		TrendWeeks: cfg.TrendWeeks,
	})

	// --- Handlers ---
	attendanceHandler := attendance.NewHandler(attendanceService)
	dashboardHandler := dashboard.NewHandler(dashboardService)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Guards ---
	kioskRate := rate.Inf
	if cfg.KioskRatePerMin > 0 {
		kioskRate = rate.Every(time.Minute / time.Duration(cfg.KioskRatePerMin))
	}
	kiosk := []gin.HandlerFunc{
		middleware.KioskAuth(cfg.KioskKeyHash),
		middleware.RateLimitByDevice(kioskRate, cfg.KioskBurst),
	}
	if deps.Redis != nil {
		kiosk = append(kiosk, middleware.Idempotency(deps.Redis))
	}
	stack := middleware.Stack{
		Auth:  middleware.AuthMiddleware(cfg.JWTSecret),
		Kiosk: kiosk,
		RBAC:  rbacService,
	}

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		attendance.RegisterRoutes(api, attendanceHandler, stack)
		dashboard.RegisterRoutes(api, dashboardHandler, stack)
		rbac.RegisterRoutes(api, rbacHandler, stack.Auth)
	}

	return nil
}
