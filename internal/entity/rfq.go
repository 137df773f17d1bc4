package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RFQStatus is the closed set of RFQ states.
type RFQStatus string

const (
	RFQDraft   RFQStatus = "draft"
	RFQOpen    RFQStatus = "open"
	RFQClosed  RFQStatus = "closed"
	RFQAwarded RFQStatus = "awarded"
)

// ValidRFQTransitions drives every RFQ status change.
var ValidRFQTransitions = map[RFQStatus][]RFQStatus{
	RFQDraft: {RFQOpen},
	RFQOpen:  {RFQClosed, RFQAwarded},
}

// Invitation statuses.
const (
	InvitationInvited     = "invited"
	InvitationResponded   = "responded"
	InvitationAwarded     = "awarded"
	InvitationNotSelected = "not_selected"
)

// RFQ request for quotation issued to suppliers.
type RFQ struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	RFQNumber   string `json:"rfq_number" gorm:"size:32;uniqueIndex;not null"`
	Title       string `json:"title" gorm:"size:200;not null"`
	Description string `json:"description" gorm:"type:text"`
	Category    string `json:"category" gorm:"size:128"`

	Budget   decimal.Decimal `json:"budget" gorm:"type:decimal(14,2);default:0"`
	Currency string          `json:"currency" gorm:"size:8;default:ZMW"`
	Deadline time.Time       `json:"deadline"`

	Status RFQStatus `json:"status" gorm:"size:16;index;default:draft"`

	// Sealed-bid window: set on first quotation, cleared when the
	// deadline sweep closes the RFQ.
	ResponseLocked bool `json:"response_locked" gorm:"default:false"`

	// Officer-created drafts pick suppliers automatically on approval.
	InvitationBatchSize int `json:"invitation_batch_size" gorm:"default:0"`

	RequestID *uint            `json:"request_id" gorm:"index"`
	Request   *PurchaseRequest `json:"request,omitempty" gorm:"foreignKey:RequestID"`

	CreatedByID uint  `json:"created_by_id" gorm:"index;not null"`
	CreatedBy   *User `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`

	Invitations []Invitation `json:"invitations,omitempty" gorm:"foreignKey:RFQID"`
	Quotations  []Quotation  `json:"quotations,omitempty" gorm:"foreignKey:RFQID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RFQ) TableName() string {
	return "rfqs"
}

func (q *RFQ) CanTransition(to RFQStatus) bool {
	for _, s := range ValidRFQTransitions[q.Status] {
		if s == to {
			return true
		}
	}
	return false
}

func (q *RFQ) Transition(to RFQStatus) error {
	if !q.CanTransition(to) {
		return fmt.Errorf("%w: RFQ %s cannot move from %s to %s",
			ErrInvalidTransition, q.RFQNumber, q.Status, to)
	}
	q.Status = to
	return nil
}

// QuotationsSealed reports whether quotation contents are hidden from
// procurement viewers. Finance and super admins bypass the seal.
func (q *RFQ) QuotationsSealed(now time.Time) bool {
	return q.ResponseLocked && now.Before(q.Deadline)
}

// Invitation links a supplier to an RFQ. One row per pair.
type Invitation struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	RFQID      uint      `json:"rfq_id" gorm:"index:idx_rfq_supplier,unique;not null"`
	SupplierID uint      `json:"supplier_id" gorm:"index:idx_rfq_supplier,unique;not null"`
	Supplier   *Supplier `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`

	Status      string     `json:"status" gorm:"size:16;default:invited"`
	InvitedAt   time.Time  `json:"invited_at"`
	RespondedAt *time.Time `json:"responded_at"`
}

func (Invitation) TableName() string {
	return "rfq_invitations"
}
