package middleware

import "github.com/gin-gonic/gin"

// Stack bundles the guards route registrations need.
type Stack struct {
	Auth  gin.HandlerFunc
	Kiosk []gin.HandlerFunc
	RBAC  RBACService
}
