package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/entity"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/policy"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/repository"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/storage"
)

// QuotationService bid submission, finance routing, the award
// transaction, and delivery tracking.
type QuotationService struct {
	quotations *repository.QuotationRepository
	rfqs       *repository.RFQRepository
	suppliers  *repository.SupplierRepository
	requests   *repository.RequestRepository
	db         *gorm.DB
	store      storage.Store
	messages   *MessageService
	notifier   *Notifier
}

func NewQuotationService(
	quotations *repository.QuotationRepository,
	rfqs *repository.RFQRepository,
	suppliers *repository.SupplierRepository,
	requests *repository.RequestRepository,
	db *gorm.DB,
	store storage.Store,
	messages *MessageService,
	notifier *Notifier,
) *QuotationService {
	return &QuotationService{
		quotations: quotations,
		rfqs:       rfqs,
		suppliers:  suppliers,
		requests:   requests,
		db:         db,
		store:      store,
		messages:   messages,
		notifier:   notifier,
	}
}

// Upload carries one multipart file into the service layer.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// SubmitInput supplier bid, multipart fields plus optional attachment.
type SubmitInput struct {
	Amount       decimal.Decimal
	TaxAmount    decimal.Decimal
	Currency     string
	LeadTimeDays int
	ValidityDays int
	Notes        string
	Attachment   *Upload
}

// Submit records a bid against an open RFQ. First submission seals the
// RFQ until the deadline passes.
func (s *QuotationService) Submit(ctx context.Context, actor Actor, rfqID uint, in SubmitInput) (*entity.Quotation, error) {
	if actor.Role != entity.RoleSupplier {
		return nil, fmt.Errorf("%w: supplier role required", ErrForbidden)
	}
	sup, err := s.suppliers.FindByUserID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: no supplier profile", ErrForbidden)
	}

	rfq, err := s.rfqs.FindByID(ctx, rfqID)
	if err != nil {
		return nil, err
	}
	if rfq.Status != entity.RFQOpen {
		return nil, fmt.Errorf("%w: RFQ %s is %s, quotations are only accepted while open",
			ErrConflict, rfq.RFQNumber, rfq.Status)
	}
	if !time.Now().Before(rfq.Deadline) {
		return nil, fmt.Errorf("%w: RFQ %s deadline has passed", ErrConflict, rfq.RFQNumber)
	}

	inv, err := s.rfqs.FindInvitation(ctx, rfq.ID, sup.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: supplier is not invited to this RFQ", ErrForbidden)
		}
		return nil, err
	}

	if _, err := s.quotations.FindBySupplierAndRFQ(ctx, sup.ID, rfq.ID); err == nil {
		return nil, fmt.Errorf("%w: a quotation has already been submitted for this RFQ", ErrConflict)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if in.TaxAmount.IsNegative() {
		return nil, fmt.Errorf("%w: tax amount cannot be negative", ErrValidation)
	}
	if in.Currency == "" {
		in.Currency = rfq.Currency
	}

	var attachmentPath, attachmentName string
	if in.Attachment != nil {
		attachmentPath = storage.ObjectName("quotations", in.Attachment.Filename)
		attachmentName = in.Attachment.Filename
		if err := s.store.Put(ctx, attachmentPath, in.Attachment.Reader, in.Attachment.Size, in.Attachment.ContentType); err != nil {
			return nil, fmt.Errorf("store attachment: %w", err)
		}
	}

	now := time.Now()
	quote := &entity.Quotation{
		RFQID:          rfq.ID,
		SupplierID:     sup.ID,
		Amount:         in.Amount,
		TaxAmount:      in.TaxAmount,
		Currency:       in.Currency,
		LeadTimeDays:   in.LeadTimeDays,
		ValidityDays:   in.ValidityDays,
		Notes:          in.Notes,
		AttachmentPath: attachmentPath,
		AttachmentName: attachmentName,
		Status:         entity.QuotationSubmitted,
		SubmittedAt:    now,
		DeliveryStatus: entity.DeliveryPending,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txQuotes := repository.NewQuotationRepository(tx)
		txRFQs := repository.NewRFQRepository(tx)

		if err := txQuotes.Create(ctx, quote); err != nil {
			return err
		}
		inv.Status = entity.InvitationResponded
		inv.RespondedAt = &now
		if err := tx.Save(inv).Error; err != nil {
			return err
		}
		if !rfq.ResponseLocked {
			rfq.ResponseLocked = true
			if err := txRFQs.Update(ctx, rfq); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// ListByRFQ enforces the sealed-bid window: while responses are locked
// and the deadline is live, only finance and super admins see bids.
// Suppliers always see their own.
func (s *QuotationService) ListByRFQ(ctx context.Context, actor Actor, rfqID uint) ([]entity.Quotation, error) {
	rfq, err := s.rfqs.FindByID(ctx, rfqID)
	if err != nil {
		return nil, err
	}

	if actor.Role == entity.RoleSupplier {
		sup, err := s.suppliers.FindByUserID(ctx, actor.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: no supplier profile", ErrForbidden)
		}
		quote, err := s.quotations.FindBySupplierAndRFQ(ctx, sup.ID, rfqID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return []entity.Quotation{}, nil
			}
			return nil, err
		}
		return []entity.Quotation{*quote}, nil
	}

	if !policy.Allows(actor.Role, policy.CapViewAllRFQs) {
		return nil, fmt.Errorf("%w: role cannot view quotations", ErrForbidden)
	}
	if rfq.QuotationsSealed(time.Now()) && !policy.Allows(actor.Role, policy.CapUnsealQuotations) {
		return nil, fmt.Errorf("%w: quotations are sealed until the deadline passes", ErrForbidden)
	}
	return s.quotations.FindByRFQ(ctx, rfqID)
}

// RequestFinanceApproval routes a quotation through finance with a
// mandatory justification.
func (s *QuotationService) RequestFinanceApproval(ctx context.Context, actor Actor, id uint, justification string) (*entity.Quotation, error) {
	if !policy.Allows(actor.Role, policy.CapReviewQuotation) {
		return nil, fmt.Errorf("%w: procurement role required", ErrForbidden)
	}
	if justification == "" {
		return nil, fmt.Errorf("%w: a justification is required", ErrValidation)
	}

	quote, err := s.quotations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote.Status == entity.QuotationApproved {
		return nil, fmt.Errorf("%w: quotation is already approved", ErrConflict)
	}
	if quote.Status == entity.QuotationPendingFinance {
		return nil, fmt.Errorf("%w: finance approval is already pending", ErrConflict)
	}

	if err := quote.Transition(entity.QuotationPendingFinance); err != nil {
		return nil, err
	}
	now := time.Now()
	quote.Justification = justification
	quote.FinanceApprovalRequestedAt = &now
	quote.FinanceApprovalRequestedBy = &actor.ID

	if err := s.quotations.Update(ctx, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

// ApproveInput award decision. The override justification is mandatory
// when the bid total exceeds the RFQ budget.
type ApproveInput struct {
	BudgetOverrideJustification string `json:"budget_override_justification"`
}

// Approve awards the RFQ to this quotation. Atomically rejects sibling
// bids, settles invitations, closes the RFQ as awarded, credits the
// supplier, and completes the source request.
func (s *QuotationService) Approve(ctx context.Context, actor Actor, id uint, in ApproveInput) (*entity.Quotation, error) {
	if !policy.Allows(actor.Role, policy.CapReviewQuotation) {
		return nil, fmt.Errorf("%w: procurement or finance role required", ErrForbidden)
	}

	quote, err := s.quotations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote.Status == entity.QuotationApproved {
		return quote, nil
	}
	if quote.Status == entity.QuotationPendingFinance && !policy.Allows(actor.Role, policy.CapFinanceQuotation) {
		return nil, fmt.Errorf("%w: quotations pending finance approval require a finance decision", ErrForbidden)
	}

	rfq, err := s.rfqs.FindByID(ctx, quote.RFQID)
	if err != nil {
		return nil, err
	}

	if quote.ExceedsBudget(rfq.Budget) {
		// A justification recorded when the quotation was routed to finance
		// carries over; only a first-time override demands a fresh one.
		if in.BudgetOverrideJustification == "" && quote.Justification == "" {
			return nil, fmt.Errorf("%w: bid total %s exceeds the RFQ budget %s, a budget override justification is required",
				ErrValidation, quote.Total().StringFixed(2), rfq.Budget.StringFixed(2))
		}
		if !policy.Allows(actor.Role, policy.CapFinanceQuotation) {
			return nil, fmt.Errorf("%w: only finance may authorize a budget override", ErrForbidden)
		}
	} else if in.BudgetOverrideJustification != "" && !policy.Allows(actor.Role, policy.CapFinanceQuotation) {
		return nil, fmt.Errorf("%w: only finance may record a budget override justification", ErrForbidden)
	}

	if existing, err := s.quotations.FindApprovedByRFQ(ctx, rfq.ID); err == nil && existing.ID != quote.ID {
		return nil, fmt.Errorf("%w: another quotation has already been approved for RFQ %s", ErrConflict, rfq.RFQNumber)
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	cameViaFinance := quote.Status == entity.QuotationPendingFinance

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txQuotes := repository.NewQuotationRepository(tx)
		txRFQs := repository.NewRFQRepository(tx)
		txRequests := repository.NewRequestRepository(tx)
		txSuppliers := repository.NewSupplierRepository(tx)

		// Re-check the winner inside the transaction.
		if existing, err := txQuotes.FindApprovedByRFQ(ctx, rfq.ID); err == nil && existing.ID != quote.ID {
			return fmt.Errorf("%w: another quotation has already been approved for RFQ %s", ErrConflict, rfq.RFQNumber)
		} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		now := time.Now()
		if err := quote.Transition(entity.QuotationApproved); err != nil {
			return err
		}
		quote.ApprovedAt = &now
		quote.ApprovedBy = &actor.ID
		if in.BudgetOverrideJustification != "" {
			quote.Justification = in.BudgetOverrideJustification
		}
		if cameViaFinance && quote.Justification != "" {
			quote.Justification = "[Finance Approval]: " + quote.Justification
		}
		if err := txQuotes.Update(ctx, quote); err != nil {
			return err
		}

		siblings, err := txQuotes.FindByRFQ(ctx, rfq.ID)
		if err != nil {
			return err
		}
		for i := range siblings {
			sib := &siblings[i]
			if sib.ID == quote.ID || sib.Status == entity.QuotationRejected {
				continue
			}
			if err := sib.Transition(entity.QuotationRejected); err != nil {
				return err
			}
			sib.RejectedAt = &now
			sib.RejectedBy = &actor.ID
			if err := txQuotes.Update(ctx, sib); err != nil {
				return err
			}
		}

		for i := range rfq.Invitations {
			inv := &rfq.Invitations[i]
			if inv.SupplierID == quote.SupplierID {
				inv.Status = entity.InvitationAwarded
			} else {
				inv.Status = entity.InvitationNotSelected
			}
			if err := tx.Save(inv).Error; err != nil {
				return err
			}
		}

		if err := rfq.Transition(entity.RFQAwarded); err != nil {
			return err
		}
		rfq.ResponseLocked = false
		if err := txRFQs.Update(ctx, rfq); err != nil {
			return err
		}

		sup, err := txSuppliers.FindByID(ctx, quote.SupplierID)
		if err != nil {
			return err
		}
		sup.TotalAwardedValue = sup.TotalAwardedValue.Add(quote.Total())
		if err := txSuppliers.Update(ctx, sup); err != nil {
			return err
		}

		if rfq.RequestID != nil {
			pr, err := txRequests.FindByID(ctx, *rfq.RequestID)
			if err != nil {
				return err
			}
			if err := pr.Transition(entity.RequestCompleted); err != nil {
				return err
			}
			if err := txRequests.Update(ctx, pr); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Tell the RFQ owner the award went through.
	s.messages.systemSend(ctx, actor.ID, rfq.CreatedByID,
		"RFQ awarded: "+rfq.RFQNumber,
		fmt.Sprintf("RFQ %s has been awarded for %s %s.", rfq.RFQNumber, quote.Total().StringFixed(2), quote.Currency),
		&rfq.ID)
	s.notifier.NotifyUser(ctx, rfq.CreatedByID,
		"RFQ awarded: "+rfq.RFQNumber,
		fmt.Sprintf("RFQ %s has been awarded. Winning bid total: %s %s.",
			rfq.RFQNumber, quote.Total().StringFixed(2), quote.Currency))

	return quote, nil
}

// Reject declines a quotation with a recorded reason.
func (s *QuotationService) Reject(ctx context.Context, actor Actor, id uint, reason string) (*entity.Quotation, error) {
	if !policy.Allows(actor.Role, policy.CapReviewQuotation) {
		return nil, fmt.Errorf("%w: procurement or finance role required", ErrForbidden)
	}

	quote, err := s.quotations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote.Status == entity.QuotationPendingFinance && !policy.Allows(actor.Role, policy.CapFinanceQuotation) {
		return nil, fmt.Errorf("%w: quotations pending finance approval require a finance decision", ErrForbidden)
	}

	if err := quote.Transition(entity.QuotationRejected); err != nil {
		return nil, err
	}
	now := time.Now()
	quote.RejectedAt = &now
	quote.RejectedBy = &actor.ID
	if reason != "" {
		quote.Notes = reason
	}

	if err := s.quotations.Update(ctx, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

// MarkDeliveredInput delivery confirmation with mandatory note file.
type MarkDeliveredInput struct {
	DeliveryDate time.Time
	Note         *Upload
}

func (s *QuotationService) MarkDelivered(ctx context.Context, actor Actor, id uint, in MarkDeliveredInput) (*entity.Quotation, error) {
	if !policy.Allows(actor.Role, policy.CapMarkDelivered) {
		return nil, fmt.Errorf("%w: procurement role required", ErrForbidden)
	}
	if in.Note == nil {
		return nil, fmt.Errorf("%w: a delivery note file is required", ErrValidation)
	}

	quote, err := s.quotations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote.Status != entity.QuotationApproved {
		return nil, fmt.Errorf("%w: only approved quotations can be marked delivered", ErrConflict)
	}
	if quote.DeliveryStatus == entity.DeliveryDelivered {
		return nil, fmt.Errorf("%w: quotation is already marked delivered", ErrConflict)
	}
	if quote.ApprovedAt != nil && in.DeliveryDate.Before(*quote.ApprovedAt) {
		return nil, fmt.Errorf("%w: delivery date cannot precede the approval date", ErrValidation)
	}

	notePath := storage.ObjectName("delivery-notes", in.Note.Filename)
	if err := s.store.Put(ctx, notePath, in.Note.Reader, in.Note.Size, in.Note.ContentType); err != nil {
		return nil, fmt.Errorf("store delivery note: %w", err)
	}

	now := time.Now()
	quote.DeliveryStatus = entity.DeliveryDelivered
	quote.DeliveredAt = &now
	quote.DeliveryDate = &in.DeliveryDate
	quote.DeliveryNotePath = notePath
	quote.DeliveryNoteName = in.Note.Filename
	quote.MarkedDeliveredBy = &actor.ID

	if err := s.quotations.Update(ctx, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

// Attachment streams a stored quotation attachment to the caller.
// Owning suppliers and reviewer roles only.
func (s *QuotationService) Attachment(ctx context.Context, actor Actor, id uint) (io.ReadCloser, string, error) {
	quote, err := s.quotations.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if quote.AttachmentPath == "" {
		return nil, "", repository.ErrNotFound
	}
	if err := s.canViewFiles(ctx, actor, quote); err != nil {
		return nil, "", err
	}
	rc, err := s.store.Get(ctx, quote.AttachmentPath)
	return rc, quote.AttachmentName, err
}

// DeliveryNote streams the stored delivery note.
func (s *QuotationService) DeliveryNote(ctx context.Context, actor Actor, id uint) (io.ReadCloser, string, error) {
	quote, err := s.quotations.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if quote.DeliveryNotePath == "" {
		return nil, "", repository.ErrNotFound
	}
	if err := s.canViewFiles(ctx, actor, quote); err != nil {
		return nil, "", err
	}
	rc, err := s.store.Get(ctx, quote.DeliveryNotePath)
	return rc, quote.DeliveryNoteName, err
}

func (s *QuotationService) canViewFiles(ctx context.Context, actor Actor, quote *entity.Quotation) error {
	if policy.AllowsAny(actor.Role, policy.CapReviewQuotation, policy.CapUnsealQuotations) {
		return nil
	}
	if actor.Role == entity.RoleSupplier {
		sup, err := s.suppliers.FindByUserID(ctx, actor.ID)
		if err == nil && sup.ID == quote.SupplierID {
			return nil
		}
	}
	return fmt.Errorf("%w: not permitted to access this file", ErrForbidden)
}
