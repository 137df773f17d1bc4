package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/entity"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/repository"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/storage"
)

// AdminService users, departments, categories, supplier administration,
// analytics, and company settings.
type AdminService struct {
	users       *repository.UserRepository
	departments *repository.DepartmentRepository
	categories  *repository.CategoryRepository
	suppliers   *repository.SupplierRepository
	requests    *repository.RequestRepository
	rfqs        *repository.RFQRepository
	settings    *repository.SettingsRepository
	store       storage.Store
}

func NewAdminService(
	users *repository.UserRepository,
	departments *repository.DepartmentRepository,
	categories *repository.CategoryRepository,
	suppliers *repository.SupplierRepository,
	requests *repository.RequestRepository,
	rfqs *repository.RFQRepository,
	settings *repository.SettingsRepository,
	store storage.Store,
) *AdminService {
	return &AdminService{
		users:       users,
		departments: departments,
		categories:  categories,
		suppliers:   suppliers,
		requests:    requests,
		rfqs:        rfqs,
		settings:    settings,
		store:       store,
	}
}

// CreateUserInput admin account creation.
type CreateUserInput struct {
	Username     string      `json:"username" binding:"required"`
	Email        string      `json:"email" binding:"required,email"`
	Password     string      `json:"password" binding:"required,min=8"`
	FullName     string      `json:"full_name" binding:"required"`
	Role         entity.Role `json:"role" binding:"required"`
	DepartmentID *uint       `json:"department_id"`
}

func (s *AdminService) ListUsers(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.User, int64, error) {
	return s.users.FindAll(ctx, page, pageSize, filters)
}

func (s *AdminService) CreateUser(ctx context.Context, in CreateUserInput) (*entity.User, error) {
	if !entity.IsValidRole(in.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, in.Role)
	}
	if _, err := s.users.FindByUsername(ctx, in.Username); err == nil {
		return nil, fmt.Errorf("%w: username is taken", ErrConflict)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if in.DepartmentID != nil {
		if _, err := s.departments.FindByID(ctx, *in.DepartmentID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: department does not exist", ErrValidation)
			}
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: string(hash),
		Role:         in.Role,
		DepartmentID: in.DepartmentID,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser refuses self-deletion and removing the last super admin.
func (s *AdminService) DeleteUser(ctx context.Context, actor Actor, id uint) error {
	if id == actor.ID {
		return fmt.Errorf("%w: cannot delete your own account", ErrValidation)
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Role == entity.RoleSuperAdmin {
		total, err := s.users.Count(ctx, entity.RoleSuperAdmin)
		if err != nil {
			return err
		}
		if total <= 1 {
			return fmt.Errorf("%w: cannot delete the last super admin", ErrConflict)
		}
	}
	return s.users.Delete(ctx, id)
}

// CreateDepartmentInput department creation with optional head.
type CreateDepartmentInput struct {
	Name       string `json:"name" binding:"required"`
	HeadUserID *uint  `json:"head_user_id"`
}

func (s *AdminService) ListDepartments(ctx context.Context) ([]entity.Department, error) {
	return s.departments.FindAll(ctx)
}

func (s *AdminService) CreateDepartment(ctx context.Context, in CreateDepartmentInput) (*entity.Department, error) {
	if _, err := s.departments.FindByName(ctx, in.Name); err == nil {
		return nil, fmt.Errorf("%w: department %q already exists", ErrConflict, in.Name)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if in.HeadUserID != nil {
		head, err := s.users.FindByID(ctx, *in.HeadUserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: head user does not exist", ErrValidation)
			}
			return nil, err
		}
		if head.Role != entity.RoleHeadOfDepartment && head.Role != entity.RoleSuperAdmin {
			return nil, fmt.Errorf("%w: head user must hold the head of department role", ErrValidation)
		}
	}

	dept := &entity.Department{Name: in.Name, HeadUserID: in.HeadUserID}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, err
	}

	// Keep the head's own department reference in sync.
	if in.HeadUserID != nil {
		if head, err := s.users.FindByID(ctx, *in.HeadUserID); err == nil {
			head.DepartmentID = &dept.ID
			_ = s.users.Update(ctx, head)
		}
	}
	return dept, nil
}

// DeleteDepartment refuses while purchase requests reference it.
func (s *AdminService) DeleteDepartment(ctx context.Context, id uint) error {
	if _, err := s.departments.FindByID(ctx, id); err != nil {
		return err
	}
	total, err := s.departments.CountRequests(ctx, id)
	if err != nil {
		return err
	}
	if total > 0 {
		return fmt.Errorf("%w: department has %d purchase requests on file", ErrConflict, total)
	}
	return s.departments.Delete(ctx, id)
}

// CategoryInput category create/update payload.
type CategoryInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (s *AdminService) ListCategories(ctx context.Context) ([]entity.Category, error) {
	return s.categories.FindAll(ctx)
}

func (s *AdminService) CreateCategory(ctx context.Context, in CategoryInput) (*entity.Category, error) {
	cat := &entity.Category{Name: in.Name, Description: in.Description}
	if err := s.categories.Create(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *AdminService) UpdateCategory(ctx context.Context, id uint, in CategoryInput) (*entity.Category, error) {
	cat, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cat.Name = in.Name
	cat.Description = in.Description
	if err := s.categories.Update(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *AdminService) DeleteCategory(ctx context.Context, id uint) error {
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		return err
	}
	return s.categories.Delete(ctx, id)
}

func (s *AdminService) ListSuppliers(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Supplier, int64, error) {
	return s.suppliers.FindAll(ctx, page, pageSize, filters)
}

func (s *AdminService) GetSupplier(ctx context.Context, id uint) (*entity.Supplier, error) {
	return s.suppliers.FindByID(ctx, id)
}

// SetSupplierActive toggles whether a supplier can be invited.
func (s *AdminService) SetSupplierActive(ctx context.Context, id uint, active bool) (*entity.Supplier, error) {
	sup, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sup.IsActive = active
	if err := s.suppliers.Update(ctx, sup); err != nil {
		return nil, err
	}
	return sup, nil
}

// SupplierDocument streams a registration document.
func (s *AdminService) SupplierDocument(ctx context.Context, supplierID, docID uint) (io.ReadCloser, string, error) {
	doc, err := s.suppliers.FindDocument(ctx, supplierID, docID)
	if err != nil {
		return nil, "", err
	}
	rc, err := s.store.Get(ctx, doc.Path)
	return rc, doc.Name, err
}

// AnalyticsSummary headline counts for the admin dashboard.
type AnalyticsSummary struct {
	RequestsByStatus map[string]int64 `json:"requests_by_status"`
	RFQsByStatus     map[string]int64 `json:"rfqs_by_status"`
	TotalUsers       int64            `json:"total_users"`
	TotalSuppliers   int64            `json:"total_suppliers"`
	TotalAwarded     string           `json:"total_awarded_value"`
}

func (s *AdminService) Analytics(ctx context.Context) (*AnalyticsSummary, error) {
	reqStats, err := s.requests.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	rfqStats, err := s.rfqs.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	totalUsers, err := s.users.Count(ctx, "")
	if err != nil {
		return nil, err
	}

	suppliers, totalSuppliers, err := s.suppliers.FindAll(ctx, 1, 1000, nil)
	if err != nil {
		return nil, err
	}
	sum := decimal.Zero
	for _, sup := range suppliers {
		sum = sum.Add(sup.TotalAwardedValue)
	}

	return &AnalyticsSummary{
		RequestsByStatus: reqStats,
		RFQsByStatus:     rfqStats,
		TotalUsers:       totalUsers,
		TotalSuppliers:   totalSuppliers,
		TotalAwarded:     sum.StringFixed(2),
	}, nil
}

// SettingsInput company identity shown on purchase orders.
type SettingsInput struct {
	CompanyName string `json:"company_name"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	TaxNumber   string `json:"tax_number"`
}

func (s *AdminService) GetSettings(ctx context.Context) (*entity.CompanySettings, error) {
	return s.settings.Get(ctx)
}

func (s *AdminService) UpdateSettings(ctx context.Context, in SettingsInput) (*entity.CompanySettings, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	settings.CompanyName = in.CompanyName
	settings.Address = in.Address
	settings.City = in.City
	settings.Country = in.Country
	settings.Phone = in.Phone
	settings.Email = in.Email
	settings.TaxNumber = in.TaxNumber
	if err := s.settings.Save(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// UploadLogo stores the company logo and records its path.
func (s *AdminService) UploadLogo(ctx context.Context, up *Upload) (*entity.CompanySettings, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	path := storage.ObjectName("logos", up.Filename)
	if err := s.store.Put(ctx, path, up.Reader, up.Size, up.ContentType); err != nil {
		return nil, fmt.Errorf("store logo: %w", err)
	}
	settings.LogoPath = path
	if err := s.settings.Save(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
