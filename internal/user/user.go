package user

import (
	"time"

	userDatamodel "github.com/pricebook-hq/pricebook-api/internal/core/datamodel/user"
)

// User is an account within one company. The password hash never
// leaves the service layer.
type User struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromDataModel(m *userDatamodel.User) *User {
	return &User{
		ID:        m.ID,
		CompanyID: m.CompanyID,
		Email:     m.Email,
		Name:      m.Name,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
