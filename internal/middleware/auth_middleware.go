package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Tabintel/attendance/internal/domain"
	"github.com/Tabintel/attendance/internal/shared/apperror"
	"github.com/Tabintel/attendance/internal/shared/contextutil"
	"github.com/Tabintel/attendance/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	ContextActorID = "actor_id"
	ContextRole    = "role"
	ContextDevice  = "device_id"

	HeaderKioskKey = "X-Kiosk-Key"
	HeaderDeviceID = "X-Device-ID"
)

var (
	ErrTokenNotFound = apperror.New(apperror.CodeUnauthorized, "Token not found", http.StatusUnauthorized)
	ErrInvalidToken  = apperror.New("INVALID_TOKEN", "Invalid token", http.StatusUnauthorized)
	ErrTokenExpired  = apperror.New("TOKEN_EXPIRED", "Token has expired", http.StatusUnauthorized)
	ErrInvalidKiosk  = apperror.New(apperror.CodeUnauthorized, "Invalid kiosk key", http.StatusUnauthorized)
)

func abortWith(c *gin.Context, err *apperror.AppError) {
	response.Error(c, err.HTTPStatus, err.Code, err.Message, nil)
	c.Abort()
}

// AuthMiddleware validates the dashboard bearer token (or access_token
// cookie) and exposes its subject and role.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}
		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			abortWith(c, ErrTokenNotFound)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWith(c, ErrTokenExpired)
				return
			}
			abortWith(c, ErrInvalidToken)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortWith(c, ErrInvalidToken)
			return
		}

		subject, _ := claims.GetSubject()
		role, _ := claims["role"].(string)
		if subject == "" || role == "" {
			abortWith(c, ErrInvalidToken)
			return
		}

		setActor(c, subject, role)
		c.Next()
	}
}

// KioskAuth accepts kiosk devices presenting the shared kiosk key.
func KioskAuth(keyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderKioskKey)
		if key == "" || keyHash == "" {
			abortWith(c, ErrInvalidKiosk)
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)); err != nil {
			abortWith(c, ErrInvalidKiosk)
			return
		}

		device := strings.TrimSpace(c.GetHeader(HeaderDeviceID))
		if device == "" {
			device = c.ClientIP()
		}
		c.Set(ContextDevice, device)
		setActor(c, "kiosk:"+device, domain.RoleKiosk)
		c.Next()
	}
}

func setActor(c *gin.Context, actorID, role string) {
	c.Set(ContextActorID, actorID)
	c.Set(ContextRole, role)

	ctx := contextutil.WithActorID(c.Request.Context(), actorID)
	logger := contextutil.GetLogger(ctx, nil)
	ctx = contextutil.WithLogger(ctx, logger.With(zapActor(actorID)))
	c.Request = c.Request.WithContext(ctx)
}
