package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/entity"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/policy"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/repository"
)

// POService purchase orders, a read model over approved quotations.
type POService struct {
	quotations *repository.QuotationRepository
	settings   *repository.SettingsRepository
}

func NewPOService(quotations *repository.QuotationRepository, settings *repository.SettingsRepository) *POService {
	return &POService{quotations: quotations, settings: settings}
}

// PurchaseOrder derived view over an approved quotation.
type PurchaseOrder struct {
	PONumber       string     `json:"po_number"`
	QuotationID    uint       `json:"quotation_id"`
	RFQNumber      string     `json:"rfq_number"`
	RFQTitle       string     `json:"rfq_title"`
	SupplierName   string     `json:"supplier_name"`
	Amount         string     `json:"amount"`
	TaxAmount      string     `json:"tax_amount"`
	Total          string     `json:"total"`
	Currency       string     `json:"currency"`
	ApprovedAt     *time.Time `json:"approved_at"`
	DeliveryStatus string     `json:"delivery_status"`
}

// PONumber derives PONNNNN_MMYYYY from the quotation and its approval
// date.
func PONumber(q *entity.Quotation) string {
	ref := q.SubmittedAt
	if q.ApprovedAt != nil {
		ref = *q.ApprovedAt
	}
	return fmt.Sprintf("PO%05d_%s", q.ID, ref.Format("012006"))
}

func toPurchaseOrder(q *entity.Quotation) PurchaseOrder {
	po := PurchaseOrder{
		PONumber:       PONumber(q),
		QuotationID:    q.ID,
		Amount:         q.Amount.StringFixed(2),
		TaxAmount:      q.TaxAmount.StringFixed(2),
		Total:          q.Total().StringFixed(2),
		Currency:       q.Currency,
		ApprovedAt:     q.ApprovedAt,
		DeliveryStatus: q.DeliveryStatus,
	}
	if q.RFQ != nil {
		po.RFQNumber = q.RFQ.RFQNumber
		po.RFQTitle = q.RFQ.Title
	}
	if q.Supplier != nil {
		po.SupplierName = q.Supplier.CompanyName
	}
	return po
}

// List returns purchase orders visible to reviewer roles.
func (s *POService) List(ctx context.Context, actor Actor, page, pageSize int) ([]PurchaseOrder, int64, error) {
	if !policy.Allows(actor.Role, policy.CapViewPurchaseOrders) {
		return nil, 0, fmt.Errorf("%w: role cannot view purchase orders", ErrForbidden)
	}
	quotes, total, err := s.quotations.FindApproved(ctx, page, pageSize, 0)
	if err != nil {
		return nil, 0, err
	}
	orders := make([]PurchaseOrder, 0, len(quotes))
	for i := range quotes {
		orders = append(orders, toPurchaseOrder(&quotes[i]))
	}
	return orders, total, nil
}

// ToOrders converts awarded quotations for the supplier portal.
func ToOrders(quotes []entity.Quotation) []PurchaseOrder {
	orders := make([]PurchaseOrder, 0, len(quotes))
	for i := range quotes {
		orders = append(orders, toPurchaseOrder(&quotes[i]))
	}
	return orders
}

// RenderPDF produces the purchase order document. Reviewer roles and
// the owning supplier only.
func (s *POService) RenderPDF(ctx context.Context, actor Actor, quotationID uint, supplierID uint) ([]byte, string, error) {
	quote, err := s.quotations.FindByID(ctx, quotationID)
	if err != nil {
		return nil, "", err
	}
	if quote.Status != entity.QuotationApproved {
		return nil, "", fmt.Errorf("%w: purchase orders exist only for approved quotations", ErrConflict)
	}
	if !policy.Allows(actor.Role, policy.CapViewPurchaseOrders) {
		if actor.Role != entity.RoleSupplier || supplierID == 0 || quote.SupplierID != supplierID {
			return nil, "", fmt.Errorf("%w: not permitted to download this purchase order", ErrForbidden)
		}
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, "", err
	}

	poNumber := PONumber(quote)
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	company := settings.CompanyName
	if company == "" {
		company = "ProcureHub"
	}
	pdf.Cell(0, 10, company)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range []string{settings.Address, settings.City, settings.Country, settings.Phone, settings.Email} {
		if line != "" {
			pdf.Cell(0, 5, line)
			pdf.Ln(5)
		}
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "PURCHASE ORDER "+poNumber)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)
	row := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(50, 7, label)
		pdf.SetFont("Helvetica", "", 11)
		pdf.Cell(0, 7, value)
		pdf.Ln(7)
	}
	if quote.Supplier != nil {
		row("Supplier:", quote.Supplier.CompanyName)
		row("Supplier No:", quote.Supplier.SupplierNumber)
	}
	if quote.RFQ != nil {
		row("RFQ:", fmt.Sprintf("%s - %s", quote.RFQ.RFQNumber, quote.RFQ.Title))
	}
	if quote.ApprovedAt != nil {
		row("Approved:", quote.ApprovedAt.Format("2 January 2006"))
	}
	row("Amount:", fmt.Sprintf("%s %s", quote.Amount.StringFixed(2), quote.Currency))
	row("Tax:", fmt.Sprintf("%s %s", quote.TaxAmount.StringFixed(2), quote.Currency))
	row("Total:", fmt.Sprintf("%s %s", quote.Total().StringFixed(2), quote.Currency))
	if quote.LeadTimeDays > 0 {
		row("Lead time:", fmt.Sprintf("%d days", quote.LeadTimeDays))
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "This purchase order was generated electronically and is valid without a signature.", "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("render PDF: %w", err)
	}
	return buf.Bytes(), poNumber + ".pdf", nil
}
