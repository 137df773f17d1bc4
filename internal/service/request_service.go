package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/entity"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/policy"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/repository"
)

// RequestService purchase request workflow: creation, the three review
// stages, and supplier invitation.
type RequestService struct {
	requests    *repository.RequestRepository
	departments *repository.DepartmentRepository
	suppliers   *repository.SupplierRepository
	rfqs        *repository.RFQRepository
	db          *gorm.DB
	notifier    *Notifier
}

func NewRequestService(
	requests *repository.RequestRepository,
	departments *repository.DepartmentRepository,
	suppliers *repository.SupplierRepository,
	rfqs *repository.RFQRepository,
	db *gorm.DB,
	notifier *Notifier,
) *RequestService {
	return &RequestService{
		requests:    requests,
		departments: departments,
		suppliers:   suppliers,
		rfqs:        rfqs,
		db:          db,
		notifier:    notifier,
	}
}

// CreateRequestInput new purchase request payload.
type CreateRequestInput struct {
	Title          string          `json:"title" binding:"required"`
	Description    string          `json:"description"`
	Category       string          `json:"category"`
	Quantity       int             `json:"quantity" binding:"required,gt=0"`
	ProposedAmount decimal.Decimal `json:"proposed_amount"`
	Currency       string          `json:"currency"`
	NeededBy       time.Time       `json:"needed_by" binding:"required"`
	Priority       string          `json:"priority"`
	DepartmentID   uint            `json:"department_id" binding:"required"`
}

func (s *RequestService) Create(ctx context.Context, actor Actor, in CreateRequestInput) (*entity.PurchaseRequest, error) {
	if !policy.Allows(actor.Role, policy.CapCreateRequest) {
		return nil, fmt.Errorf("%w: only requesters may raise purchase requests", ErrForbidden)
	}
	if !in.NeededBy.After(time.Now()) {
		return nil, fmt.Errorf("%w: needed-by date must be in the future", ErrValidation)
	}
	if in.ProposedAmount.IsNegative() {
		return nil, fmt.Errorf("%w: proposed amount cannot be negative", ErrValidation)
	}
	if _, err := s.departments.FindByID(ctx, in.DepartmentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: department does not exist", ErrValidation)
		}
		return nil, err
	}

	if in.Currency == "" {
		in.Currency = "ZMW"
	}
	if in.Priority == "" {
		in.Priority = entity.PriorityMedium
	}
	switch in.Priority {
	case entity.PriorityLow, entity.PriorityMedium, entity.PriorityHigh, entity.PriorityUrgent:
	default:
		return nil, fmt.Errorf("%w: unknown priority %q", ErrValidation, in.Priority)
	}

	number, err := s.requests.GenerateNumber(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	pr := &entity.PurchaseRequest{
		RequestNumber:  number,
		Title:          in.Title,
		Description:    in.Description,
		Category:       in.Category,
		Quantity:       in.Quantity,
		Priority:       in.Priority,
		ProposedAmount: in.ProposedAmount,
		Currency:       in.Currency,
		NeededBy:       in.NeededBy,
		Status:         entity.RequestPendingHOD,
		DepartmentID:   in.DepartmentID,
		RequesterID:    actor.ID,
	}
	if err := s.requests.Create(ctx, pr); err != nil {
		return nil, err
	}
	return pr, nil
}

// List applies role scoping: requesters see their own, HODs their
// department, reviewer roles everything.
func (s *RequestService) List(ctx context.Context, actor Actor, page, pageSize int, filters map[string]string) ([]entity.PurchaseRequest, int64, error) {
	if filters == nil {
		filters = map[string]string{}
	}
	switch {
	case policy.Allows(actor.Role, policy.CapViewAllRequests):
	case actor.Role == entity.RoleHeadOfDepartment:
		if actor.DepartmentID == nil {
			return nil, 0, fmt.Errorf("%w: no department assigned", ErrForbidden)
		}
		filters["department_id"] = fmt.Sprintf("%d", *actor.DepartmentID)
	case actor.Role == entity.RoleRequester:
		filters["requester_id"] = fmt.Sprintf("%d", actor.ID)
	default:
		return nil, 0, fmt.Errorf("%w: role cannot view purchase requests", ErrForbidden)
	}
	return s.requests.FindAll(ctx, page, pageSize, filters)
}

func (s *RequestService) Get(ctx context.Context, actor Actor, id uint) (*entity.PurchaseRequest, error) {
	pr, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.canView(actor, pr); err != nil {
		return nil, err
	}
	return pr, nil
}

func (s *RequestService) canView(actor Actor, pr *entity.PurchaseRequest) error {
	if policy.Allows(actor.Role, policy.CapViewAllRequests) {
		return nil
	}
	if actor.Role == entity.RoleRequester && pr.RequesterID == actor.ID {
		return nil
	}
	if actor.Role == entity.RoleHeadOfDepartment && actor.DepartmentID != nil && pr.DepartmentID == *actor.DepartmentID {
		return nil
	}
	return fmt.Errorf("%w: not permitted to view this request", ErrForbidden)
}

// HODReviewInput department head decision. Approvals may adjust the
// request before forwarding.
type HODReviewInput struct {
	Notes          string           `json:"notes"`
	Reason         string           `json:"reason"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Quantity       int              `json:"quantity"`
	ProposedAmount *decimal.Decimal `json:"proposed_amount"`
	NeededBy       *time.Time       `json:"needed_by"`
}

func (s *RequestService) HODApprove(ctx context.Context, actor Actor, id uint, in HODReviewInput) (*entity.PurchaseRequest, error) {
	pr, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkHOD(ctx, actor, pr); err != nil {
		return nil, err
	}

	if in.Title != "" {
		pr.Title = in.Title
	}
	if in.Description != "" {
		pr.Description = in.Description
	}
	if in.Quantity > 0 {
		pr.Quantity = in.Quantity
	}
	if in.ProposedAmount != nil {
		if in.ProposedAmount.IsNegative() {
			return nil, fmt.Errorf("%w: proposed amount cannot be negative", ErrValidation)
		}
		pr.ProposedAmount = *in.ProposedAmount
	}
	if in.NeededBy != nil {
		if !in.NeededBy.After(time.Now()) {
			return nil, fmt.Errorf("%w: needed-by date must be in the future", ErrValidation)
		}
		pr.NeededBy = *in.NeededBy
	}

	if err := pr.Transition(entity.RequestPendingProcurement); err != nil {
		return nil, err
	}
	now := time.Now()
	pr.HODNotes = in.Notes
	pr.HODReviewerID = &actor.ID
	pr.HODReviewedAt = &now

	if err := s.requests.Update(ctx, pr); err != nil {
		return nil, err
	}
	s.notifier.NotifyUser(ctx, pr.RequesterID,
		"Purchase request approved by department head",
		requestDecisionBody(pr.RequestNumber, "approved by your head of department", in.Notes))
	return pr, nil
}

func (s *RequestService) HODReject(ctx context.Context, actor Actor, id uint, in HODReviewInput) (*entity.PurchaseRequest, error) {
	pr, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkHOD(ctx, actor, pr); err != nil {
		return nil, err
	}
	if in.Reason == "" {
		return nil, fmt.Errorf("%w: a rejection reason is required", ErrValidation)
	}

	if err := pr.Transition(entity.RequestRejectedByHOD); err != nil {
		return nil, err
	}
	now := time.Now()
	pr.RejectionReason = in.Reason
	pr.HODReviewerID = &actor.ID
	pr.HODReviewedAt = &now

	if err := s.requests.Update(ctx, pr); err != nil {
		return nil, err
	}
	s.notifier.NotifyUser(ctx, pr.RequesterID,
		"Purchase request rejected by department head",
		requestDecisionBody(pr.RequestNumber, "rejected", in.Reason))
	return pr, nil
}

// checkHOD enforces that the reviewer is the designated head of the
// request's department, not merely a head-of-department user assigned to it.
func (s *RequestService) checkHOD(ctx context.Context, actor Actor, pr *entity.PurchaseRequest) error {
	if actor.IsSuper() {
		return nil
	}
	if actor.Role != entity.RoleHeadOfDepartment {
		return fmt.Errorf("%w: head of department role required", ErrForbidden)
	}
	dept, err := s.departments.FindByID(ctx, pr.DepartmentID)
	if err != nil {
		return err
	}
	if dept.HeadUserID == nil || *dept.HeadUserID != actor.ID {
		return fmt.Errorf("%w: only the head of the %s department may review this request", ErrForbidden, dept.Name)
	}
	return nil
}

// ProcurementReviewInput procurement decision. Approval sets the budget
// handed to finance.
type ProcurementReviewInput struct {
	BudgetAmount   *decimal.Decimal `json:"budget_amount"`
	BudgetCurrency string           `json:"budget_currency"`
	Notes          string           `json:"notes"`
	Reason         string           `json:"reason"`
}

func (s *RequestService) ProcurementApprove(ctx context.Context, actor Actor, id uint, in ProcurementReviewInput) (*entity.PurchaseRequest, error) {
	if !policy.Allows(actor.Role, policy.CapProcurementReview) {
		return nil, fmt.Errorf("%w: procurement role required", ErrForbidden)
	}
	pr, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.BudgetAmount == nil || !in.BudgetAmount.IsPositive() {
		return nil, fmt.Errorf("%w: a positive budget amount is required", ErrValidation)
	}
	if in.BudgetCurrency == "" {
		return nil, fmt.Errorf("%w: budget currency is required", ErrValidation)
	}

	if err := pr.Transition(entity.RequestPendingFinance); err != nil {
		return nil, err
	}
	now := time.Now()
	pr.BudgetAmount = in.BudgetAmount
	pr.BudgetCurrency = in.BudgetCurrency
	pr.ProcNotes = in.Notes
	pr.ProcReviewerID = &actor.ID
	pr.ProcReviewedAt = &now

	if err := s.requests.Update(ctx, pr); err != nil {
		return nil, err
	}
	s.notifier.NotifyUser(ctx, pr.RequesterID,
		"Purchase request forwarded to finance",
		requestDecisionBody(pr.RequestNumber, "approved by procurement and forwarded for finance approval", in.Notes))
	return pr, nil
}

func (s *RequestService) ProcurementReject(ctx context.Context, actor Actor, id uint, in ProcurementReviewInput) (*entity.PurchaseRequest, error) {
	if !policy.Allows(actor.Role, policy.CapProcurementReview) {
		return nil, fmt.Errorf("%w: procurement role required", ErrForbidden)
	}
	pr, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reason := in.Reason
	if reason == "" {
		reason = "Request denied by procurement"
	}
	if err := pr.Transition(entity.RequestRejectedByProcurement); err != nil {
		return nil, err
	}
	now := time.Now()
	pr.RejectionReason = reason
	pr.ProcReviewerID = &actor.ID
	pr.ProcReviewedAt = &now

	if err := s.requests.Update(ctx, pr); err != nil {
		return nil, err
	}
	s.notifier.NotifyUser(ctx, pr.RequesterID,
		"Purchase request rejected by procurement",
		requestDecisionBody(pr.RequestNumber, "rejected by procurement", reason))
	return pr, nil
}

// FinanceReviewInput finance decision. An override replaces the
// procurement budget and must be justified.
type FinanceReviewInput struct {
	OverrideAmount   *decimal.Decimal `json:"override_amount"`
	OverrideCurrency string           `json:"override_currency"`
	OverrideReason   string           `json:"override_reason"`
	Notes            string           `json:"notes"`
	Reason           string           `json:"reason"`
}

func (s *RequestService) FinanceApprove(ctx context.Context, actor Actor, id uint, in FinanceReviewInput) (*entity.PurchaseRequest, error) {
	if !policy.Allows(actor.Role, policy.CapFinanceReview) {
		return nil, fmt.Errorf("%w: finance role required", ErrForbidden)
	}
	pr, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pr.BudgetAmount == nil {
		return nil, fmt.Errorf("%w: no proposed budget on file", ErrConflict)
	}

	if in.OverrideAmount != nil {
		if !in.OverrideAmount.IsPositive() {
			return nil, fmt.Errorf("%w: override amount must be positive", ErrValidation)
		}
		if in.OverrideReason == "" {
			return nil, fmt.Errorf("%w: a budget override requires a justification", ErrValidation)
		}
		pr.BudgetAmount = in.OverrideAmount
		if in.OverrideCurrency != "" {
			pr.BudgetCurrency = in.OverrideCurrency
		}
		pr.BudgetOverrideReason = in.OverrideReason
	}

	if err := pr.Transition(entity.RequestFinanceApproved); err != nil {
		return nil, err
	}
	now := time.Now()
	pr.FinanceNotes = in.Notes
	pr.FinanceReviewerID = &actor.ID
	pr.FinanceReviewedAt = &now

	if err := s.requests.Update(ctx, pr); err != nil {
		return nil, err
	}
	s.notifier.NotifyUser(ctx, pr.RequesterID,
		"Purchase request approved by finance",
		requestDecisionBody(pr.RequestNumber, "approved by finance", in.Notes))
	return pr, nil
}

func (s *RequestService) FinanceReject(ctx context.Context, actor Actor, id uint, in FinanceReviewInput) (*entity.PurchaseRequest, error) {
	if !policy.Allows(actor.Role, policy.CapFinanceReview) {
		return nil, fmt.Errorf("%w: finance role required", ErrForbidden)
	}
	pr, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Reason == "" {
		return nil, fmt.Errorf("%w: a rejection reason is required", ErrValidation)
	}

	if err := pr.Transition(entity.RequestRejectedByFinance); err != nil {
		return nil, err
	}
	now := time.Now()
	pr.RejectionReason = in.Reason
	pr.FinanceReviewerID = &actor.ID
	pr.FinanceReviewedAt = &now

	if err := s.requests.Update(ctx, pr); err != nil {
		return nil, err
	}
	s.notifier.NotifyUser(ctx, pr.RequesterID,
		"Purchase request rejected by finance",
		requestDecisionBody(pr.RequestNumber, "rejected by finance", in.Reason))
	return pr, nil
}

// InviteSuppliersInput opens an RFQ against an approved request.
type InviteSuppliersInput struct {
	SupplierIDs []uint    `json:"supplier_ids" binding:"required,min=1"`
	Deadline    time.Time `json:"deadline" binding:"required"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
}

// InviteSuppliers creates (or extends) the RFQ for a finance-approved
// request and invites the given suppliers atomically.
func (s *RequestService) InviteSuppliers(ctx context.Context, actor Actor, id uint, in InviteSuppliersInput) (*entity.RFQ, error) {
	if !policy.Allows(actor.Role, policy.CapInviteSuppliers) {
		return nil, fmt.Errorf("%w: procurement role required", ErrForbidden)
	}
	if !in.Deadline.After(time.Now()) {
		return nil, fmt.Errorf("%w: deadline must be in the future", ErrValidation)
	}

	pr, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pr.Status != entity.RequestFinanceApproved {
		return nil, fmt.Errorf("%w: request %s is %s, suppliers can only be invited once finance approved",
			entity.ErrInvalidTransition, pr.RequestNumber, pr.Status)
	}

	suppliers, err := s.suppliers.FindByIDs(ctx, in.SupplierIDs)
	if err != nil {
		return nil, err
	}
	if len(suppliers) != len(in.SupplierIDs) {
		return nil, fmt.Errorf("%w: one or more suppliers do not exist", ErrValidation)
	}
	for _, sup := range suppliers {
		if !sup.IsActive {
			return nil, fmt.Errorf("%w: supplier %s is inactive", ErrValidation, sup.SupplierNumber)
		}
	}

	var rfq *entity.RFQ
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRFQs := repository.NewRFQRepository(tx)
		txSuppliers := repository.NewSupplierRepository(tx)
		txRequests := repository.NewRequestRepository(tx)

		now := time.Now()
		existing, err := txRFQs.FindByRequestID(ctx, pr.ID)
		switch {
		case err == nil:
			rfq = existing
		case errors.Is(err, repository.ErrNotFound):
			number, err := txRFQs.GenerateNumber(ctx, now)
			if err != nil {
				return err
			}
			title := in.Title
			if title == "" {
				title = pr.Title
			}
			desc := in.Description
			if desc == "" {
				desc = pr.Description
			}
			rfq = &entity.RFQ{
				RFQNumber:   number,
				Title:       title,
				Description: desc,
				Category:    pr.Category,
				Budget:      pr.EffectiveBudget(),
				Currency:    pr.EffectiveCurrency(),
				Deadline:    in.Deadline,
				Status:      entity.RFQOpen,
				RequestID:   &pr.ID,
				CreatedByID: actor.ID,
			}
			if err := txRFQs.Create(ctx, rfq); err != nil {
				return err
			}
		default:
			return err
		}

		invited := 0
		for i := range suppliers {
			sup := &suppliers[i]
			if _, err := txRFQs.FindInvitation(ctx, rfq.ID, sup.ID); err == nil {
				continue
			} else if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			inv := &entity.Invitation{
				RFQID:      rfq.ID,
				SupplierID: sup.ID,
				Status:     entity.InvitationInvited,
				InvitedAt:  now,
			}
			if err := tx.Create(inv).Error; err != nil {
				return err
			}
			sup.InvitationsSent++
			sup.LastInvitedAt = &now
			if err := txSuppliers.Update(ctx, sup); err != nil {
				return err
			}
			invited++
		}
		if invited == 0 {
			return fmt.Errorf("%w: all selected suppliers are already invited", ErrConflict)
		}

		if err := pr.Transition(entity.RequestRFQIssued); err != nil {
			return err
		}
		pr.RFQInvitedAt = &now
		return txRequests.Update(ctx, pr)
	})
	if err != nil {
		return nil, err
	}

	for _, sup := range suppliers {
		if sup.User != nil {
			s.notifier.NotifyEmail(sup.User.Email,
				"Invitation to quote: "+rfq.Title,
				fmt.Sprintf("You have been invited to quote on RFQ %s. Deadline: %s.",
					rfq.RFQNumber, rfq.Deadline.Format("2006-01-02 15:04")))
		}
	}
	return rfq, nil
}
