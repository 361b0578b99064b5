package domain

const (
	RoleAdmin     = "admin"
	RoleManager   = "manager"
	RoleKiosk     = "kiosk"
	RoleScheduler = "scheduler"
)

type EnforceRequest struct {
	Role     string `json:"role" binding:"required"`
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

type EnforceResponse struct {
	Allowed bool `json:"allowed"`
}
