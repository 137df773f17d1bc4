package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestRequestTransitions(t *testing.T) {
	allowed := []struct {
		from, to RequestStatus
	}{
		{RequestPendingHOD, RequestPendingProcurement},
		{RequestPendingHOD, RequestRejectedByHOD},
		{RequestPendingProcurement, RequestPendingFinance},
		{RequestPendingProcurement, RequestRejectedByProcurement},
		{RequestPendingFinance, RequestFinanceApproved},
		{RequestPendingFinance, RequestRejectedByFinance},
		{RequestFinanceApproved, RequestRFQIssued},
		{RequestRFQIssued, RequestCompleted},
	}
	for _, tc := range allowed {
		r := PurchaseRequest{Status: tc.from}
		if !r.CanTransition(tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct {
		from, to RequestStatus
	}{
		{RequestPendingHOD, RequestPendingFinance},
		{RequestPendingHOD, RequestFinanceApproved},
		{RequestPendingProcurement, RequestRFQIssued},
		{RequestRejectedByHOD, RequestPendingProcurement},
		{RequestCompleted, RequestPendingHOD},
		{RequestFinanceApproved, RequestCompleted},
	}
	for _, tc := range denied {
		r := PurchaseRequest{Status: tc.from}
		if r.CanTransition(tc.to) {
			t.Errorf("expected %s -> %s to be denied", tc.from, tc.to)
		}
	}
}

func TestRequestTransitionError(t *testing.T) {
	r := PurchaseRequest{Status: RequestPendingHOD}
	if err := r.Transition(RequestFinanceApproved); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if r.Status != RequestPendingHOD {
		t.Fatalf("status changed on rejected transition: %s", r.Status)
	}

	if err := r.Transition(RequestPendingProcurement); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Status != RequestPendingProcurement {
		t.Fatalf("expected pending_procurement, got %s", r.Status)
	}
}

func TestEffectiveBudget(t *testing.T) {
	proposed := decimal.NewFromInt(1000)
	r := PurchaseRequest{ProposedAmount: proposed, Currency: "ZMW"}

	if got := r.EffectiveBudget(); !got.Equal(proposed) {
		t.Fatalf("expected proposed amount %s, got %s", proposed, got)
	}

	budget := decimal.NewFromInt(800)
	r.BudgetAmount = &budget
	r.BudgetCurrency = "USD"
	if got := r.EffectiveBudget(); !got.Equal(budget) {
		t.Fatalf("expected finance budget %s, got %s", budget, got)
	}
	if got := r.EffectiveCurrency(); got != "USD" {
		t.Fatalf("expected USD, got %s", got)
	}
}

func TestRFQTransitions(t *testing.T) {
	rfq := RFQ{Status: RFQDraft}
	if err := rfq.Transition(RFQAwarded); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("draft -> awarded should fail, got %v", err)
	}
	if err := rfq.Transition(RFQOpen); err != nil {
		t.Fatalf("draft -> open failed: %v", err)
	}
	if err := rfq.Transition(RFQAwarded); err != nil {
		t.Fatalf("open -> awarded failed: %v", err)
	}
	if rfq.CanTransition(RFQOpen) {
		t.Fatal("awarded is terminal")
	}
}

func TestQuotationsSealed(t *testing.T) {
	now := time.Now()
	rfq := RFQ{ResponseLocked: true, Deadline: now.Add(time.Hour)}
	if !rfq.QuotationsSealed(now) {
		t.Fatal("expected sealed before deadline")
	}
	if rfq.QuotationsSealed(now.Add(2 * time.Hour)) {
		t.Fatal("expected unsealed after deadline")
	}
	rfq.ResponseLocked = false
	if rfq.QuotationsSealed(now) {
		t.Fatal("expected unsealed without lock")
	}
}

func TestQuotationTotalsAndBudget(t *testing.T) {
	q := Quotation{
		Amount:    decimal.NewFromInt(900),
		TaxAmount: decimal.NewFromInt(150),
	}
	if got := q.Total(); !got.Equal(decimal.NewFromInt(1050)) {
		t.Fatalf("expected total 1050, got %s", got)
	}

	if !q.ExceedsBudget(decimal.NewFromInt(1000)) {
		t.Fatal("expected over budget at 1000")
	}
	if q.ExceedsBudget(decimal.NewFromInt(1050)) {
		t.Fatal("expected within budget at 1050")
	}
	// No budget on file means nothing to exceed.
	if q.ExceedsBudget(decimal.Zero) {
		t.Fatal("expected zero budget to disable the check")
	}
}

func TestQuotationTransitions(t *testing.T) {
	q := Quotation{Status: QuotationSubmitted}
	if err := q.Transition(QuotationPendingFinance); err != nil {
		t.Fatalf("submitted -> pending_finance_approval failed: %v", err)
	}
	if err := q.Transition(QuotationApproved); err != nil {
		t.Fatalf("pending_finance_approval -> approved failed: %v", err)
	}
	if err := q.Transition(QuotationRejected); !errors.Is(err, ErrInvalidTransition) {
		t.Fatal("approved is terminal")
	}
}
