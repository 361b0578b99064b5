package app

import (
	"context"
	"net/http"

	"github.com/Tabintel/attendance/internal/config"
	"github.com/Tabintel/attendance/internal/middleware"
	"github.com/Tabintel/attendance/internal/shared/apperror"
	"github.com/Tabintel/attendance/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildApp wires infrastructure, middleware and routes onto router. The
// returned cleanup closes the connections it opened.
func BuildApp(ctx context.Context, router *gin.Engine, cfg *config.Config) (func(), error) {
	apperror.Init()

	infra, err := NewInfra(ctx, cfg)
	if err != nil {
		return nil, err
	}

	router.Use(middleware.ContextLogger(zap.L().Named("http")))
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.GET("/healthz", healthHandler(infra))

	if err := registerModules(router, infra); err != nil {
		infra.Close()
		return nil, err
	}
	zap.L().Info("attendance api ready",
		zap.String("storage", cfg.StorageDriver),
		zap.String("lock", cfg.LockDriver),
		zap.String("timezone", infra.Location.String()),
		zap.Bool("multi_session", cfg.MultiSession),
	)
	return infra.Close, nil
}

type healthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	Redis   bool   `json:"redis"`
}

func healthHandler(infra *Infra) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if infra.DB != nil {
			sqlDB, err := infra.DB.DB()
			if err == nil {
				err = sqlDB.PingContext(ctx)
			}
			if err != nil {
				writeUnavailable(c, err)
				return
			}
		}
		if infra.Redis != nil {
			if err := infra.Redis.Ping(ctx).Err(); err != nil {
				writeUnavailable(c, err)
				return
			}
		}
		response.Success(c, http.StatusOK, healthResponse{
			Status:  "ok",
			Storage: infra.Config.StorageDriver,
			Redis:   infra.Redis != nil,
		}, nil)
	}
}

func writeUnavailable(c *gin.Context, err error) {
	zap.L().Named("app.health").Warn("health check failed", zap.Error(err))
	httpErr := apperror.ToHTTP(apperror.ErrUpstreamUnavailable.WithCause(err))
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
}
