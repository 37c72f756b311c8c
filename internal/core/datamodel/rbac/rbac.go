package rbac

import "time"

// Role bundles permission patterns under a reusable name. A role with a
// nil CompanyID is global and visible to every company.
type Role struct {
	ID           int64     `gorm:"primaryKey"`
	Name         string    `gorm:"column:name;index;not null"`
	DisplayName  string    `gorm:"column:display_name;not null"`
	Permissions  []string  `gorm:"column:permissions;serializer:json"`
	IsDefault    bool      `gorm:"column:is_default;default:false"`
	IsSystemRole bool      `gorm:"column:is_system_role;default:false"`
	CompanyID    *int64    `gorm:"column:company_id;index"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time `gorm:"column:updated_at;default:now()"`
}

// UserRoleAssignment grants one role to one user within one company.
// Uniqueness of (user, role, company) is checked by the service before
// creation, not by a database constraint.
type UserRoleAssignment struct {
	ID           int64     `gorm:"primaryKey"`
	UserID       int64     `gorm:"column:user_id;index;not null"`
	RoleID       int64     `gorm:"column:role_id;index;not null"`
	CompanyID    int64     `gorm:"column:company_id;index;not null"`
	AssignedByID *int64    `gorm:"column:assigned_by_id"`
	AssignedAt   time.Time `gorm:"column:assigned_at;default:now()"`
}
