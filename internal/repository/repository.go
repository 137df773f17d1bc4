package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Repositories bundles all repositories for wiring.
type Repositories struct {
	User       *UserRepository
	Department *DepartmentRepository
	Category   *CategoryRepository
	Supplier   *SupplierRepository
	Request    *RequestRepository
	RFQ        *RFQRepository
	Quotation  *QuotationRepository
	Message    *MessageRepository
	Settings   *SettingsRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:       NewUserRepository(db),
		Department: NewDepartmentRepository(db),
		Category:   NewCategoryRepository(db),
		Supplier:   NewSupplierRepository(db),
		Request:    NewRequestRepository(db),
		RFQ:        NewRFQRepository(db),
		Quotation:  NewQuotationRepository(db),
		Message:    NewMessageRepository(db),
		Settings:   NewSettingsRepository(db),
	}
}
