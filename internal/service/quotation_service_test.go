package service_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/entity"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/service"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/testutil"
)

// biddingScenario is a finance-approved request with an open RFQ and
// two invited suppliers.
type biddingScenario struct {
	env         *testutil.Env
	request     *entity.PurchaseRequest
	rfq         *entity.RFQ
	procurement *entity.User
	finance     *entity.User
	supplierA   *entity.Supplier
	supplierB   *entity.Supplier
	userA       *entity.User
	userB       *entity.User
}

func setupBidding(t *testing.T) *biddingScenario {
	t.Helper()
	e := testutil.SetupEnv(t)
	ctx := context.Background()

	requester, hod, procurement, finance, dept := seedWorkflowUsers(e)
	pr := createRequest(t, e, requester, dept)
	approveThroughFinance(t, e, pr.ID, hod, procurement, finance)

	supplierA, _ := e.SeedSupplier("supa", "Alpha Supplies Ltd")
	supplierB, _ := e.SeedSupplier("supb", "Beta Traders")

	rfq, err := e.Services.Request.InviteSuppliers(ctx, actorFor(procurement), pr.ID, service.InviteSuppliersInput{
		SupplierIDs: []uint{supplierA.ID, supplierB.ID},
		Deadline:    time.Now().Add(7 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("InviteSuppliers failed: %v", err)
	}

	return &biddingScenario{
		env:         e,
		request:     pr,
		rfq:         rfq,
		procurement: procurement,
		finance:     finance,
		supplierA:   supplierA,
		supplierB:   supplierB,
		userA:       supplierA.User,
		userB:       supplierB.User,
	}
}

func submitQuote(t *testing.T, sc *biddingScenario, user *entity.User, amount int64) *entity.Quotation {
	t.Helper()
	quote, err := sc.env.Services.Quotation.Submit(context.Background(), actorFor(user), sc.rfq.ID, service.SubmitInput{
		Amount:       decimal.NewFromInt(amount),
		LeadTimeDays: 14,
		ValidityDays: 30,
		Attachment: &service.Upload{
			Filename:    "quote.pdf",
			ContentType: "application/pdf",
			Size:        4,
			Reader:      bytes.NewReader([]byte("%PDF")),
		},
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	return quote
}

func TestSubmitQuotation(t *testing.T) {
	sc := setupBidding(t)
	e := sc.env
	ctx := context.Background()

	quote := submitQuote(t, sc, sc.userA, 40000)
	if quote.Status != entity.QuotationSubmitted {
		t.Fatalf("status = %s", quote.Status)
	}
	if quote.Currency != "ZMW" {
		t.Fatalf("currency should default to the RFQ currency, got %s", quote.Currency)
	}
	if quote.AttachmentPath == "" {
		t.Fatal("attachment not stored")
	}

	// First submission seals the RFQ.
	rfq, err := e.Repos.RFQ.FindByID(ctx, sc.rfq.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if !rfq.ResponseLocked {
		t.Fatal("RFQ should be locked after the first bid")
	}

	inv, err := e.Repos.RFQ.FindInvitation(ctx, sc.rfq.ID, sc.supplierA.ID)
	if err != nil {
		t.Fatalf("FindInvitation failed: %v", err)
	}
	if inv.Status != entity.InvitationResponded {
		t.Fatalf("invitation status = %s", inv.Status)
	}

	// Duplicate bid from the same supplier.
	_, err = e.Services.Quotation.Submit(ctx, actorFor(sc.userA), sc.rfq.ID, service.SubmitInput{
		Amount: decimal.NewFromInt(39000),
	})
	if !errors.Is(err, service.ErrConflict) {
		t.Fatalf("expected conflict on duplicate bid, got %v", err)
	}

	// An uninvited supplier is turned away.
	stranger, _ := e.SeedSupplier("supc", "Gamma Services")
	_, err = e.Services.Quotation.Submit(ctx, actorFor(stranger.User), sc.rfq.ID, service.SubmitInput{
		Amount: decimal.NewFromInt(100),
	})
	if !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected forbidden for uninvited supplier, got %v", err)
	}

	// Zero amount is invalid.
	_, err = e.Services.Quotation.Submit(ctx, actorFor(sc.userB), sc.rfq.ID, service.SubmitInput{})
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected validation error for zero amount, got %v", err)
	}

	// Bids after the deadline bounce.
	e.DB.Model(&entity.RFQ{}).Where("id = ?", sc.rfq.ID).Update("deadline", time.Now().Add(-time.Hour))
	_, err = e.Services.Quotation.Submit(ctx, actorFor(sc.userB), sc.rfq.ID, service.SubmitInput{
		Amount: decimal.NewFromInt(100),
	})
	if !errors.Is(err, service.ErrConflict) {
		t.Fatalf("expected conflict after deadline, got %v", err)
	}
}

func TestSealedBidsHiddenUntilDeadline(t *testing.T) {
	sc := setupBidding(t)
	e := sc.env
	ctx := context.Background()

	submitQuote(t, sc, sc.userA, 40000)

	// Procurement cannot peek while sealed.
	_, err := e.Services.Quotation.ListByRFQ(ctx, actorFor(sc.procurement), sc.rfq.ID)
	if !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected sealed window to block procurement, got %v", err)
	}

	// Finance can.
	quotes, err := e.Services.Quotation.ListByRFQ(ctx, actorFor(sc.finance), sc.rfq.ID)
	if err != nil {
		t.Fatalf("ListByRFQ failed for finance: %v", err)
	}
	if len(quotes) != 1 {
		t.Fatalf("finance sees %d quotes", len(quotes))
	}

	// The bidding supplier sees only their own.
	quotes, err = e.Services.Quotation.ListByRFQ(ctx, actorFor(sc.userA), sc.rfq.ID)
	if err != nil {
		t.Fatalf("ListByRFQ failed for supplier: %v", err)
	}
	if len(quotes) != 1 || quotes[0].SupplierID != sc.supplierA.ID {
		t.Fatal("supplier scope broken")
	}

	// A non-bidding invited supplier sees nothing, not an error.
	quotes, err = e.Services.Quotation.ListByRFQ(ctx, actorFor(sc.userB), sc.rfq.ID)
	if err != nil {
		t.Fatalf("ListByRFQ failed: %v", err)
	}
	if len(quotes) != 0 {
		t.Fatalf("non-bidder sees %d quotes", len(quotes))
	}

	// Past the deadline the seal lifts for procurement.
	e.DB.Model(&entity.RFQ{}).Where("id = ?", sc.rfq.ID).Update("deadline", time.Now().Add(-time.Minute))
	if _, err := e.Services.Quotation.ListByRFQ(ctx, actorFor(sc.procurement), sc.rfq.ID); err != nil {
		t.Fatalf("expected unsealed list after deadline, got %v", err)
	}
}

func TestAwardTransaction(t *testing.T) {
	sc := setupBidding(t)
	e := sc.env
	ctx := context.Background()

	winner := submitQuote(t, sc, sc.userA, 40000)
	loser := submitQuote(t, sc, sc.userB, 42000)

	approved, err := e.Services.Quotation.Approve(ctx, actorFor(sc.procurement), winner.ID, service.ApproveInput{})
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if approved.Status != entity.QuotationApproved {
		t.Fatalf("status = %s", approved.Status)
	}

	// Sibling bids are rejected.
	got, err := e.Repos.Quotation.FindByID(ctx, loser.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got.Status != entity.QuotationRejected {
		t.Fatalf("sibling status = %s", got.Status)
	}

	// Invitations settle to awarded / not_selected.
	invA, _ := e.Repos.RFQ.FindInvitation(ctx, sc.rfq.ID, sc.supplierA.ID)
	invB, _ := e.Repos.RFQ.FindInvitation(ctx, sc.rfq.ID, sc.supplierB.ID)
	if invA.Status != entity.InvitationAwarded || invB.Status != entity.InvitationNotSelected {
		t.Fatalf("invitation statuses = %s / %s", invA.Status, invB.Status)
	}

	// RFQ is awarded and unlocked.
	rfq, _ := e.Repos.RFQ.FindByID(ctx, sc.rfq.ID)
	if rfq.Status != entity.RFQAwarded || rfq.ResponseLocked {
		t.Fatalf("rfq status = %s locked = %v", rfq.Status, rfq.ResponseLocked)
	}

	// The winner is credited.
	sup, _ := e.Repos.Supplier.FindByID(ctx, sc.supplierA.ID)
	if !sup.TotalAwardedValue.Equal(decimal.NewFromInt(40000)) {
		t.Fatalf("total awarded = %s", sup.TotalAwardedValue)
	}

	// The source request completes.
	pr, _ := e.Repos.Request.FindByID(ctx, sc.request.ID)
	if pr.Status != entity.RequestCompleted {
		t.Fatalf("request status = %s", pr.Status)
	}

	// Approving the winner again is a no-op.
	if _, err := e.Services.Quotation.Approve(ctx, actorFor(sc.procurement), winner.ID, service.ApproveInput{}); err != nil {
		t.Fatalf("re-approval should be idempotent, got %v", err)
	}

	// Approving the loser now conflicts.
	_, err = e.Services.Quotation.Approve(ctx, actorFor(sc.procurement), loser.ID, service.ApproveInput{})
	if err == nil {
		t.Fatal("expected error approving a second quotation")
	}
}

func TestBudgetOverrideNeedsFinance(t *testing.T) {
	sc := setupBidding(t)
	e := sc.env
	ctx := context.Background()

	// Budget is 45000; this bid exceeds it.
	over := submitQuote(t, sc, sc.userA, 48000)

	// No justification at all.
	_, err := e.Services.Quotation.Approve(ctx, actorFor(sc.finance), over.ID, service.ApproveInput{})
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected validation error without justification, got %v", err)
	}

	// Procurement cannot authorize the override even with one.
	_, err = e.Services.Quotation.Approve(ctx, actorFor(sc.procurement), over.ID, service.ApproveInput{
		BudgetOverrideJustification: "Sole supplier in region",
	})
	if !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected forbidden for procurement override, got %v", err)
	}

	// Finance can.
	approved, err := e.Services.Quotation.Approve(ctx, actorFor(sc.finance), over.ID, service.ApproveInput{
		BudgetOverrideJustification: "Sole supplier in region",
	})
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if approved.Justification != "Sole supplier in region" {
		t.Fatalf("justification = %q", approved.Justification)
	}
}

func TestRoutedOverrideKeepsJustification(t *testing.T) {
	sc := setupBidding(t)
	e := sc.env
	ctx := context.Background()

	// Over budget (45000) and routed to finance with a justification on record.
	over := submitQuote(t, sc, sc.userA, 48000)
	_, err := e.Services.Quotation.RequestFinanceApproval(ctx, actorFor(sc.procurement), over.ID, "Urgent replacement, sole regional stockist")
	if err != nil {
		t.Fatalf("RequestFinanceApproval failed: %v", err)
	}

	// Finance approves without retyping the justification.
	approved, err := e.Services.Quotation.Approve(ctx, actorFor(sc.finance), over.ID, service.ApproveInput{})
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if approved.Justification != "[Finance Approval]: Urgent replacement, sole regional stockist" {
		t.Fatalf("justification = %q", approved.Justification)
	}
}

func TestFinanceApprovalRouting(t *testing.T) {
	sc := setupBidding(t)
	e := sc.env
	ctx := context.Background()

	quote := submitQuote(t, sc, sc.userA, 40000)

	// The justification is mandatory.
	_, err := e.Services.Quotation.RequestFinanceApproval(ctx, actorFor(sc.procurement), quote.ID, "")
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	routed, err := e.Services.Quotation.RequestFinanceApproval(ctx, actorFor(sc.procurement), quote.ID, "Preferred supplier, above internal threshold")
	if err != nil {
		t.Fatalf("RequestFinanceApproval failed: %v", err)
	}
	if routed.Status != entity.QuotationPendingFinance {
		t.Fatalf("status = %s", routed.Status)
	}

	// Routing twice is a conflict.
	_, err = e.Services.Quotation.RequestFinanceApproval(ctx, actorFor(sc.procurement), quote.ID, "again")
	if !errors.Is(err, service.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// Once pending finance, procurement may neither approve nor reject.
	_, err = e.Services.Quotation.Approve(ctx, actorFor(sc.procurement), quote.ID, service.ApproveInput{})
	if !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	_, err = e.Services.Quotation.Reject(ctx, actorFor(sc.procurement), quote.ID, "too pricey")
	if !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	// Finance decides, and the trail marks the finance path.
	approved, err := e.Services.Quotation.Approve(ctx, actorFor(sc.finance), quote.ID, service.ApproveInput{})
	if err != nil {
		t.Fatalf("finance Approve failed: %v", err)
	}
	if !strings.HasPrefix(approved.Justification, "[Finance Approval]: ") {
		t.Fatalf("justification = %q", approved.Justification)
	}
}

func TestMarkDelivered(t *testing.T) {
	sc := setupBidding(t)
	e := sc.env
	ctx := context.Background()

	quote := submitQuote(t, sc, sc.userA, 40000)

	note := func() *service.Upload {
		return &service.Upload{
			Filename:    "note.pdf",
			ContentType: "application/pdf",
			Size:        4,
			Reader:      bytes.NewReader([]byte("%PDF")),
		}
	}

	// Unapproved quotations cannot be delivered.
	_, err := e.Services.Quotation.MarkDelivered(ctx, actorFor(sc.procurement), quote.ID, service.MarkDeliveredInput{
		DeliveryDate: time.Now(),
		Note:         note(),
	})
	if !errors.Is(err, service.ErrConflict) {
		t.Fatalf("expected conflict for unapproved quotation, got %v", err)
	}

	if _, err := e.Services.Quotation.Approve(ctx, actorFor(sc.procurement), quote.ID, service.ApproveInput{}); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	// The note file is mandatory.
	_, err = e.Services.Quotation.MarkDelivered(ctx, actorFor(sc.procurement), quote.ID, service.MarkDeliveredInput{
		DeliveryDate: time.Now(),
	})
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected validation error without note, got %v", err)
	}

	// Delivery cannot predate the approval.
	_, err = e.Services.Quotation.MarkDelivered(ctx, actorFor(sc.procurement), quote.ID, service.MarkDeliveredInput{
		DeliveryDate: time.Now().Add(-48 * time.Hour),
		Note:         note(),
	})
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected validation error for early delivery date, got %v", err)
	}

	delivered, err := e.Services.Quotation.MarkDelivered(ctx, actorFor(sc.procurement), quote.ID, service.MarkDeliveredInput{
		DeliveryDate: time.Now().Add(time.Hour),
		Note:         note(),
	})
	if err != nil {
		t.Fatalf("MarkDelivered failed: %v", err)
	}
	if delivered.DeliveryStatus != entity.DeliveryDelivered || delivered.DeliveryNotePath == "" {
		t.Fatalf("delivery not recorded: %+v", delivered)
	}

	// Twice is a conflict.
	_, err = e.Services.Quotation.MarkDelivered(ctx, actorFor(sc.procurement), quote.ID, service.MarkDeliveredInput{
		DeliveryDate: time.Now().Add(2 * time.Hour),
		Note:         note(),
	})
	if !errors.Is(err, service.ErrConflict) {
		t.Fatalf("expected conflict on double delivery, got %v", err)
	}
}
