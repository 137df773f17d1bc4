package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supplier vendor profile attached to a supplier-role user.
type Supplier struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	UserID         uint   `json:"user_id" gorm:"uniqueIndex;not null"`
	User           *User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	SupplierNumber string `json:"supplier_number" gorm:"size:32;uniqueIndex;not null"`

	CompanyName   string `json:"company_name" gorm:"size:200;not null"`
	ContactPerson string `json:"contact_person" gorm:"size:128"`
	Phone         string `json:"phone" gorm:"size:32"`
	Address       string `json:"address" gorm:"size:255"`
	City          string `json:"city" gorm:"size:64"`
	Country       string `json:"country" gorm:"size:64"`
	TaxNumber     string `json:"tax_number" gorm:"size:64"`

	// Comma-joined category names, matched against RFQ category on
	// automatic invitation.
	Categories string `json:"categories" gorm:"size:500"`

	InvitationsSent   int             `json:"invitations_sent" gorm:"default:0"`
	LastInvitedAt     *time.Time      `json:"last_invited_at"`
	TotalAwardedValue decimal.Decimal `json:"total_awarded_value" gorm:"type:decimal(16,2);default:0"`

	IsActive bool `json:"is_active" gorm:"default:true"`

	Documents []SupplierDocument `json:"documents,omitempty" gorm:"foreignKey:SupplierID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Supplier) TableName() string {
	return "suppliers"
}

// SupplierDocument registration paperwork kept in object storage.
type SupplierDocument struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	SupplierID uint   `json:"supplier_id" gorm:"index;not null"`
	Name       string `json:"name" gorm:"size:255;not null"`
	Path       string `json:"path" gorm:"size:500;not null"`

	UploadedAt time.Time `json:"uploaded_at"`
}

func (SupplierDocument) TableName() string {
	return "supplier_documents"
}
