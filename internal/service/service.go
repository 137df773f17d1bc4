package service

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/config"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/entity"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/mailer"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/repository"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/storage"
)

// Actor identifies the authenticated caller inside service methods.
// Ownership checks (HOD department, supplier identity) happen here, not
// in handlers.
type Actor struct {
	ID           uint
	Role         entity.Role
	DepartmentID *uint
}

// IsSuper reports whether the actor bypasses ownership checks.
func (a Actor) IsSuper() bool {
	return a.Role == entity.RoleSuperAdmin
}

// Services bundles the service layer for wiring.
type Services struct {
	Auth      *AuthService
	Request   *RequestService
	RFQ       *RFQService
	Quotation *QuotationService
	Supplier  *SupplierService
	Admin     *AdminService
	Message   *MessageService
	PO        *POService
}

func NewServices(repos *repository.Repositories, db *gorm.DB, store storage.Store, mail mailer.Mailer, cfg *config.Config, logger *zap.Logger) *Services {
	notifier := NewNotifier(mail, repos.User, logger)
	msg := NewMessageService(repos.Message, repos.User)
	return &Services{
		Auth:      NewAuthService(repos.User, cfg.JWT),
		Request:   NewRequestService(repos.Request, repos.Department, repos.Supplier, repos.RFQ, db, notifier),
		RFQ:       NewRFQService(repos.RFQ, repos.Supplier, db, cfg.RFQ, notifier, logger),
		Quotation: NewQuotationService(repos.Quotation, repos.RFQ, repos.Supplier, repos.Request, db, store, msg, notifier),
		Supplier:  NewSupplierService(repos.Supplier, repos.User, repos.Category, repos.RFQ, repos.Quotation, db, store),
		Admin:     NewAdminService(repos.User, repos.Department, repos.Category, repos.Supplier, repos.Request, repos.RFQ, repos.Settings, store),
		Message:   msg,
		PO:        NewPOService(repos.Quotation, repos.Settings),
	}
}
