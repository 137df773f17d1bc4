package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/entity"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/repository"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/storage"
)

// SupplierService public registration and the supplier portal.
type SupplierService struct {
	suppliers  *repository.SupplierRepository
	users      *repository.UserRepository
	categories *repository.CategoryRepository
	rfqs       *repository.RFQRepository
	quotations *repository.QuotationRepository
	db         *gorm.DB
	store      storage.Store
}

func NewSupplierService(
	suppliers *repository.SupplierRepository,
	users *repository.UserRepository,
	categories *repository.CategoryRepository,
	rfqs *repository.RFQRepository,
	quotations *repository.QuotationRepository,
	db *gorm.DB,
	store storage.Store,
) *SupplierService {
	return &SupplierService{
		suppliers:  suppliers,
		users:      users,
		categories: categories,
		rfqs:       rfqs,
		quotations: quotations,
		db:         db,
		store:      store,
	}
}

// RegisterInput public supplier onboarding, multipart.
type RegisterInput struct {
	Username      string
	Email         string
	Password      string
	FullName      string
	CompanyName   string
	ContactPerson string
	Phone         string
	Address       string
	City          string
	Country       string
	TaxNumber     string
	CategoryIDs   []uint
	Documents     []*Upload
}

// Register creates the account, profile, and documents in one
// transaction.
func (s *SupplierService) Register(ctx context.Context, in RegisterInput) (*entity.Supplier, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" || in.CompanyName == "" {
		return nil, fmt.Errorf("%w: username, email, password, and company name are required", ErrValidation)
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
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

	var categoryNames []string
	if len(in.CategoryIDs) > 0 {
		cats, err := s.categories.FindByIDs(ctx, in.CategoryIDs)
		if err != nil {
			return nil, err
		}
		if len(cats) != len(in.CategoryIDs) {
			return nil, fmt.Errorf("%w: one or more categories do not exist", ErrValidation)
		}
		for _, c := range cats {
			categoryNames = append(categoryNames, c.Name)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	// Upload documents before the transaction so a storage failure
	// leaves no half-created account.
	type storedDoc struct {
		name string
		path string
	}
	var docs []storedDoc
	for _, up := range in.Documents {
		path := storage.ObjectName("supplier-documents", up.Filename)
		if err := s.store.Put(ctx, path, up.Reader, up.Size, up.ContentType); err != nil {
			return nil, fmt.Errorf("store document: %w", err)
		}
		docs = append(docs, storedDoc{name: up.Filename, path: path})
	}

	var sup *entity.Supplier
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txUsers := repository.NewUserRepository(tx)
		txSuppliers := repository.NewSupplierRepository(tx)

		now := time.Now()
		user := &entity.User{
			Username:     in.Username,
			Email:        in.Email,
			FullName:     in.FullName,
			PasswordHash: string(hash),
			Role:         entity.RoleSupplier,
			IsActive:     true,
		}
		if err := txUsers.Create(ctx, user); err != nil {
			return err
		}

		number, err := txSuppliers.GenerateNumber(ctx, now)
		if err != nil {
			return err
		}
		sup = &entity.Supplier{
			UserID:         user.ID,
			SupplierNumber: number,
			CompanyName:    in.CompanyName,
			ContactPerson:  in.ContactPerson,
			Phone:          in.Phone,
			Address:        in.Address,
			City:           in.City,
			Country:        in.Country,
			TaxNumber:      in.TaxNumber,
			Categories:     strings.Join(categoryNames, ","),
			IsActive:       true,
		}
		if err := txSuppliers.Create(ctx, sup); err != nil {
			return err
		}

		for _, d := range docs {
			doc := &entity.SupplierDocument{
				SupplierID: sup.ID,
				Name:       d.name,
				Path:       d.path,
				UploadedAt: now,
			}
			if err := txSuppliers.AddDocument(ctx, doc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sup, nil
}

// Me returns the caller's supplier profile.
func (s *SupplierService) Me(ctx context.Context, actor Actor) (*entity.Supplier, error) {
	if actor.Role != entity.RoleSupplier {
		return nil, fmt.Errorf("%w: supplier role required", ErrForbidden)
	}
	return s.suppliers.FindByUserID(ctx, actor.ID)
}

// UpdateMeInput supplier self-service profile edit.
type UpdateProfileInput struct {
	CompanyName   string `json:"company_name"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	Country       string `json:"country"`
	TaxNumber     string `json:"tax_number"`
}

func (s *SupplierService) UpdateMe(ctx context.Context, actor Actor, in UpdateProfileInput) (*entity.Supplier, error) {
	sup, err := s.Me(ctx, actor)
	if err != nil {
		return nil, err
	}
	if in.CompanyName != "" {
		sup.CompanyName = in.CompanyName
	}
	if in.ContactPerson != "" {
		sup.ContactPerson = in.ContactPerson
	}
	if in.Phone != "" {
		sup.Phone = in.Phone
	}
	if in.Address != "" {
		sup.Address = in.Address
	}
	if in.City != "" {
		sup.City = in.City
	}
	if in.Country != "" {
		sup.Country = in.Country
	}
	if in.TaxNumber != "" {
		sup.TaxNumber = in.TaxNumber
	}
	if err := s.suppliers.Update(ctx, sup); err != nil {
		return nil, err
	}
	return sup, nil
}

// Invitations lists the caller's RFQ invitations.
func (s *SupplierService) Invitations(ctx context.Context, actor Actor) ([]entity.Invitation, error) {
	sup, err := s.Me(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.rfqs.FindInvitationsForSupplier(ctx, sup.ID)
}

// ActiveRFQs lists open, unexpired RFQs the caller may still quote on.
func (s *SupplierService) ActiveRFQs(ctx context.Context, actor Actor) ([]entity.RFQ, error) {
	sup, err := s.Me(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.rfqs.FindForSupplier(ctx, sup.ID, true)
}

// PurchaseOrders lists the caller's awarded quotations.
func (s *SupplierService) PurchaseOrders(ctx context.Context, actor Actor, page, pageSize int) ([]entity.Quotation, int64, error) {
	sup, err := s.Me(ctx, actor)
	if err != nil {
		return nil, 0, err
	}
	return s.quotations.FindApproved(ctx, page, pageSize, sup.ID)
}
