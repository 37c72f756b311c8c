package postgres

import (
	rbacDatamodel "github.com/pricebook-hq/pricebook-api/internal/core/datamodel/rbac"
	"github.com/pricebook-hq/pricebook-api/internal/permissions"
	"gorm.io/gorm"
)

type RBACRepository struct {
	db *gorm.DB
}

func NewRBACRepository(db *gorm.DB) permissions.RepositoryAPI {
	return &RBACRepository{db: db}
}

// FindRolesForUser loads the user's assignments in assignment order and
// maps each to its role.
func (r *RBACRepository) FindRolesForUser(userID, companyID int64) ([]*rbacDatamodel.Role, error) {
	var assignments []*rbacDatamodel.UserRoleAssignment
	err := r.db.Where("user_id = ? AND company_id = ?", userID, companyID).
		Order("assigned_at ASC, id ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return []*rbacDatamodel.Role{}, nil
	}

	roleIDs := make([]int64, 0, len(assignments))
	for _, assignment := range assignments {
		roleIDs = append(roleIDs, assignment.RoleID)
	}

	var roles []*rbacDatamodel.Role
	if err := r.db.Where("id IN ?", roleIDs).Find(&roles).Error; err != nil {
		return nil, err
	}

	byID := make(map[int64]*rbacDatamodel.Role, len(roles))
	for _, role := range roles {
		byID[role.ID] = role
	}

	ordered := make([]*rbacDatamodel.Role, 0, len(assignments))
	for _, assignment := range assignments {
		if role, ok := byID[assignment.RoleID]; ok {
			ordered = append(ordered, role)
		}
	}
	return ordered, nil
}

func (r *RBACRepository) FindAssignment(userID, roleID, companyID int64) (*rbacDatamodel.UserRoleAssignment, error) {
	var assignment rbacDatamodel.UserRoleAssignment
	err := r.db.Where("user_id = ? AND role_id = ? AND company_id = ?", userID, roleID, companyID).
		First(&assignment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}

func (r *RBACRepository) FindAssignments(userID, companyID int64) ([]*rbacDatamodel.UserRoleAssignment, error) {
	var assignments []*rbacDatamodel.UserRoleAssignment
	err := r.db.Where("user_id = ? AND company_id = ?", userID, companyID).
		Order("assigned_at ASC, id ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *RBACRepository) CreateAssignment(assignment *rbacDatamodel.UserRoleAssignment) error {
	return r.db.Create(assignment).Error
}

// CreateAssignments inserts the batch with a single statement.
func (r *RBACRepository) CreateAssignments(assignments []*rbacDatamodel.UserRoleAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	return r.db.Create(&assignments).Error
}

func (r *RBACRepository) DeleteAssignment(assignment *rbacDatamodel.UserRoleAssignment) error {
	return r.db.Delete(assignment).Error
}

// DeleteAssignments removes the batch with a single statement.
func (r *RBACRepository) DeleteAssignments(assignments []*rbacDatamodel.UserRoleAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(assignments))
	for _, assignment := range assignments {
		ids = append(ids, assignment.ID)
	}
	return r.db.Delete(&rbacDatamodel.UserRoleAssignment{}, ids).Error
}

// visibleTo is the shared company-visibility predicate: global roles
// plus roles owned by the company.
func (r *RBACRepository) visibleTo(companyID int64) *gorm.DB {
	return r.db.Where("company_id IS NULL OR company_id = ?", companyID)
}

func (r *RBACRepository) FindVisibleRoles(companyID int64) ([]*rbacDatamodel.Role, error) {
	var roles []*rbacDatamodel.Role
	err := r.visibleTo(companyID).Order("name ASC").Find(&roles).Error
	return roles, err
}

func (r *RBACRepository) FindDefaultRoles(companyID int64) ([]*rbacDatamodel.Role, error) {
	var roles []*rbacDatamodel.Role
	err := r.visibleTo(companyID).Where("is_default = ?", true).Order("name ASC").Find(&roles).Error
	return roles, err
}

func (r *RBACRepository) FindRoleByName(name string, companyID *int64) (*rbacDatamodel.Role, error) {
	query := r.db.Where("name = ?", name)
	if companyID == nil {
		query = query.Where("company_id IS NULL")
	} else {
		query = query.Where("company_id = ?", *companyID)
	}

	var role rbacDatamodel.Role
	err := query.First(&role).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *RBACRepository) FindRoleByID(id int64) (*rbacDatamodel.Role, error) {
	var role rbacDatamodel.Role
	err := r.db.Where("id = ?", id).First(&role).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *RBACRepository) CreateRole(role *rbacDatamodel.Role) error {
	return r.db.Create(role).Error
}

func (r *RBACRepository) UpdateRole(role *rbacDatamodel.Role) error {
	return r.db.Save(role).Error
}

// DeleteRole removes the role together with its assignments.
func (r *RBACRepository) DeleteRole(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&rbacDatamodel.UserRoleAssignment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&rbacDatamodel.Role{}, id).Error
	})
}
