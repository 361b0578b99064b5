package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func CORS(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", HeaderRequestID, HeaderIdempotencyKey, HeaderKioskKey, HeaderDeviceID},
		ExposeHeaders:    []string{HeaderRequestID, HeaderReplayed},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
