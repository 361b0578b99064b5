package rbac

import "github.com/Tabintel/attendance/internal/domain"

const (
	ResourceClock      = "clock"
	ResourceAttendance = "attendance"
	ResourceDashboard  = "dashboard"

	ActionCreate   = "create"
	ActionRead     = "read"
	ActionCloseOut = "close_out"
)

type RolePermissionRow struct {
	RoleID   string
	Resource string
	Action   string
}

// RoleInheritanceRow grants Role every permission of Parent.
type RoleInheritanceRow struct {
	Role   string
	Parent string
}

// Repository is the source of the authorization policy.
type Repository interface {
	GetRolePermissions() ([]RolePermissionRow, error)
	GetRoleInheritance() ([]RoleInheritanceRow, error)
}

type staticRepository struct {
	permissions []RolePermissionRow
	inheritance []RoleInheritanceRow
}

// NewStaticRepository returns the built-in policy: kiosks submit clock
// events, the scheduler closes out days, managers read records and the
// dashboard, admins do everything a manager and the scheduler can.
func NewStaticRepository() Repository {
	return &staticRepository{
		permissions: []RolePermissionRow{
			{RoleID: domain.RoleKiosk, Resource: ResourceClock, Action: ActionCreate},
			{RoleID: domain.RoleScheduler, Resource: ResourceAttendance, Action: ActionCloseOut},
			{RoleID: domain.RoleManager, Resource: ResourceAttendance, Action: ActionRead},
			{RoleID: domain.RoleManager, Resource: ResourceDashboard, Action: ActionRead},
		},
		inheritance: []RoleInheritanceRow{
			{Role: domain.RoleAdmin, Parent: domain.RoleManager},
			{Role: domain.RoleAdmin, Parent: domain.RoleScheduler},
		},
	}
}

func (r *staticRepository) GetRolePermissions() ([]RolePermissionRow, error) {
	return r.permissions, nil
}

func (r *staticRepository) GetRoleInheritance() ([]RoleInheritanceRow, error) {
	return r.inheritance, nil
}
