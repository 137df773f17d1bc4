package entity

import "time"

// Role is the closed set of account roles.
type Role string

const (
	RoleSuperAdmin         Role = "super_admin"
	RoleProcurement        Role = "procurement"
	RoleProcurementOfficer Role = "procurement_officer"
	RoleHeadOfDepartment   Role = "head_of_department"
	RoleRequester          Role = "requester"
	RoleFinance            Role = "finance"
	RoleSupplier           Role = "supplier"
)

// ValidRoles lists every assignable role.
var ValidRoles = []Role{
	RoleSuperAdmin,
	RoleProcurement,
	RoleProcurementOfficer,
	RoleHeadOfDepartment,
	RoleRequester,
	RoleFinance,
	RoleSupplier,
}

func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if v == r {
			return true
		}
	}
	return false
}

// User platform account
type User struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Username     string `json:"username" gorm:"size:64;uniqueIndex;not null"`
	Email        string `json:"email" gorm:"size:128;uniqueIndex;not null"`
	FullName     string `json:"full_name" gorm:"size:128;not null"`
	PasswordHash string `json:"-" gorm:"size:128;not null"`
	Role         Role   `json:"role" gorm:"size:32;not null;default:requester"`
	IsActive     bool   `json:"is_active" gorm:"default:true"`

	DepartmentID *uint       `json:"department_id" gorm:"index"`
	Department   *Department `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Department organizational unit
type Department struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	Name       string `json:"name" gorm:"size:128;uniqueIndex;not null"`
	HeadUserID *uint  `json:"head_user_id" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Department) TableName() string {
	return "departments"
}

// Category procurement category
type Category struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"size:128;uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}
