package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus is the closed set of purchase request states.
type RequestStatus string

const (
	RequestPendingHOD            RequestStatus = "pending_hod"
	RequestRejectedByHOD         RequestStatus = "rejected_by_hod"
	RequestPendingProcurement    RequestStatus = "pending_procurement"
	RequestRejectedByProcurement RequestStatus = "rejected_by_procurement"
	RequestPendingFinance        RequestStatus = "pending_finance_approval"
	RequestRejectedByFinance     RequestStatus = "rejected_by_finance"
	RequestFinanceApproved       RequestStatus = "finance_approved"
	RequestRFQIssued             RequestStatus = "rfq_issued"
	RequestCompleted             RequestStatus = "completed"
)

// ValidRequestTransitions drives every request status change.
var ValidRequestTransitions = map[RequestStatus][]RequestStatus{
	RequestPendingHOD:         {RequestPendingProcurement, RequestRejectedByHOD},
	RequestPendingProcurement: {RequestPendingFinance, RequestRejectedByProcurement},
	RequestPendingFinance:     {RequestFinanceApproved, RequestRejectedByFinance},
	RequestFinanceApproved:    {RequestRFQIssued},
	RequestRFQIssued:          {RequestCompleted},
}

// Priority levels for purchase requests.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// PurchaseRequest internal demand raised by a department.
type PurchaseRequest struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	RequestNumber string `json:"request_number" gorm:"size:32;uniqueIndex;not null"`
	Title         string `json:"title" gorm:"size:200;not null"`
	Description   string `json:"description" gorm:"type:text"`
	Category      string `json:"category" gorm:"size:128"`
	Quantity      int    `json:"quantity" gorm:"not null"`
	Priority      string `json:"priority" gorm:"size:20;default:medium"`

	ProposedAmount decimal.Decimal `json:"proposed_amount" gorm:"type:decimal(14,2);default:0"`
	Currency       string          `json:"currency" gorm:"size:8;default:ZMW"`
	NeededBy       time.Time       `json:"needed_by"`

	Status RequestStatus `json:"status" gorm:"size:32;index;default:pending_hod"`

	DepartmentID uint        `json:"department_id" gorm:"index;not null"`
	Department   *Department `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
	RequesterID  uint        `json:"requester_id" gorm:"index;not null"`
	Requester    *User       `json:"requester,omitempty" gorm:"foreignKey:RequesterID"`

	// HOD review trail
	HODNotes      string     `json:"hod_notes" gorm:"type:text"`
	HODReviewerID *uint      `json:"hod_reviewer_id"`
	HODReviewedAt *time.Time `json:"hod_reviewed_at"`

	// Procurement review trail, budget set on approval
	BudgetAmount    *decimal.Decimal `json:"budget_amount" gorm:"type:decimal(14,2)"`
	BudgetCurrency  string           `json:"budget_currency" gorm:"size:8"`
	ProcReviewerID  *uint            `json:"proc_reviewer_id"`
	ProcReviewedAt  *time.Time       `json:"proc_reviewed_at"`
	ProcNotes       string           `json:"proc_notes" gorm:"type:text"`
	RejectionReason string           `json:"rejection_reason" gorm:"type:text"`

	// Finance review trail, override replaces procurement budget
	FinanceReviewerID    *uint      `json:"finance_reviewer_id"`
	FinanceReviewedAt    *time.Time `json:"finance_reviewed_at"`
	FinanceNotes         string     `json:"finance_notes" gorm:"type:text"`
	BudgetOverrideReason string     `json:"budget_override_reason" gorm:"type:text"`

	// Set once suppliers have been invited, guards re-issue
	RFQInvitedAt *time.Time `json:"rfq_invited_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PurchaseRequest) TableName() string {
	return "purchase_requests"
}

// CanTransition reports whether moving to the given status is allowed.
func (r *PurchaseRequest) CanTransition(to RequestStatus) bool {
	for _, s := range ValidRequestTransitions[r.Status] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition moves the request to the given status or fails with the
// current status named in the error.
func (r *PurchaseRequest) Transition(to RequestStatus) error {
	if !r.CanTransition(to) {
		return fmt.Errorf("%w: request %s cannot move from %s to %s",
			ErrInvalidTransition, r.RequestNumber, r.Status, to)
	}
	r.Status = to
	return nil
}

// EffectiveBudget is the amount an RFQ inherits: the finance-approved
// budget when set, otherwise the requester's proposed amount.
func (r *PurchaseRequest) EffectiveBudget() decimal.Decimal {
	if r.BudgetAmount != nil {
		return *r.BudgetAmount
	}
	return r.ProposedAmount
}

// EffectiveCurrency pairs with EffectiveBudget.
func (r *PurchaseRequest) EffectiveCurrency() string {
	if r.BudgetAmount != nil && r.BudgetCurrency != "" {
		return r.BudgetCurrency
	}
	return r.Currency
}
