package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// QuotationStatus is the closed set of quotation states.
type QuotationStatus string

const (
	QuotationSubmitted      QuotationStatus = "submitted"
	QuotationPendingFinance QuotationStatus = "pending_finance_approval"
	QuotationApproved       QuotationStatus = "approved"
	QuotationRejected       QuotationStatus = "rejected"
)

// ValidQuotationTransitions drives every quotation status change.
var ValidQuotationTransitions = map[QuotationStatus][]QuotationStatus{
	QuotationSubmitted:      {QuotationPendingFinance, QuotationApproved, QuotationRejected},
	QuotationPendingFinance: {QuotationApproved, QuotationRejected},
}

// Delivery states for awarded quotations.
const (
	DeliveryPending   = "pending"
	DeliveryDelivered = "delivered"
)

// Quotation supplier bid against an RFQ.
type Quotation struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	RFQID      uint      `json:"rfq_id" gorm:"index:idx_quote_rfq_supplier,unique;not null"`
	RFQ        *RFQ      `json:"rfq,omitempty" gorm:"foreignKey:RFQID"`
	SupplierID uint      `json:"supplier_id" gorm:"index:idx_quote_rfq_supplier,unique;not null"`
	Supplier   *Supplier `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`

	Amount       decimal.Decimal `json:"amount" gorm:"type:decimal(14,2);not null"`
	TaxAmount    decimal.Decimal `json:"tax_amount" gorm:"type:decimal(14,2);default:0"`
	Currency     string          `json:"currency" gorm:"size:8;default:ZMW"`
	LeadTimeDays int             `json:"lead_time_days"`
	ValidityDays int             `json:"validity_days"`
	Notes        string          `json:"notes" gorm:"type:text"`

	// Recorded when approval needed a budget override or came through
	// the finance path.
	Justification string `json:"justification" gorm:"type:text"`

	AttachmentPath string `json:"attachment_path" gorm:"size:500"`
	AttachmentName string `json:"attachment_name" gorm:"size:255"`

	Status QuotationStatus `json:"status" gorm:"size:32;index;default:submitted"`

	SubmittedAt time.Time  `json:"submitted_at"`
	ApprovedAt  *time.Time `json:"approved_at"`
	ApprovedBy  *uint      `json:"approved_by"`
	RejectedAt  *time.Time `json:"rejected_at"`
	RejectedBy  *uint      `json:"rejected_by"`

	FinanceApprovalRequestedAt *time.Time `json:"finance_approval_requested_at"`
	FinanceApprovalRequestedBy *uint      `json:"finance_approval_requested_by"`

	DeliveryStatus    string     `json:"delivery_status" gorm:"size:16;default:pending"`
	DeliveredAt       *time.Time `json:"delivered_at"`
	DeliveryDate      *time.Time `json:"delivery_date"`
	DeliveryNotePath  string     `json:"delivery_note_path" gorm:"size:500"`
	DeliveryNoteName  string     `json:"delivery_note_name" gorm:"size:255"`
	MarkedDeliveredBy *uint      `json:"marked_delivered_by"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Quotation) TableName() string {
	return "quotations"
}

func (q *Quotation) CanTransition(to QuotationStatus) bool {
	for _, s := range ValidQuotationTransitions[q.Status] {
		if s == to {
			return true
		}
	}
	return false
}

func (q *Quotation) Transition(to QuotationStatus) error {
	if !q.CanTransition(to) {
		return fmt.Errorf("%w: quotation %d cannot move from %s to %s",
			ErrInvalidTransition, q.ID, q.Status, to)
	}
	q.Status = to
	return nil
}

// Total is the amount including tax, the figure compared against budget.
func (q *Quotation) Total() decimal.Decimal {
	return q.Amount.Add(q.TaxAmount)
}

// ExceedsBudget reports whether awarding this quotation would spend more
// than the RFQ budget. A zero budget never blocks.
func (q *Quotation) ExceedsBudget(budget decimal.Decimal) bool {
	return budget.IsPositive() && q.Total().GreaterThan(budget)
}
