package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/entity"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/service"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/testutil"
)

func actorFor(u *entity.User) service.Actor {
	return service.Actor{ID: u.ID, Role: u.Role, DepartmentID: u.DepartmentID}
}

// seedWorkflowUsers builds the standard cast for approval tests: a
// department with its head, a requester in it, plus procurement and
// finance reviewers.
func seedWorkflowUsers(e *testutil.Env) (requester, hod, procurement, finance *entity.User, dept *entity.Department) {
	hod, _ = e.SeedUser("hod", entity.RoleHeadOfDepartment, nil)
	dept = e.SeedDepartment("Engineering", &hod.ID)
	hod.DepartmentID = &dept.ID
	requester, _ = e.SeedUser("requester", entity.RoleRequester, &dept.ID)
	procurement, _ = e.SeedUser("procurement", entity.RoleProcurement, nil)
	finance, _ = e.SeedUser("finance", entity.RoleFinance, nil)
	return
}

func createRequest(t *testing.T, e *testutil.Env, requester *entity.User, dept *entity.Department) *entity.PurchaseRequest {
	t.Helper()
	pr, err := e.Services.Request.Create(context.Background(), actorFor(requester), service.CreateRequestInput{
		Title:          "Ten laptops",
		Description:    "Replacement hardware for the engineering team",
		Category:       "IT Equipment",
		Quantity:       10,
		ProposedAmount: decimal.NewFromInt(50000),
		NeededBy:       time.Now().Add(30 * 24 * time.Hour),
		DepartmentID:   dept.ID,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return pr
}

func TestRequestApprovalChain(t *testing.T) {
	e := testutil.SetupEnv(t)
	ctx := context.Background()
	requester, hod, procurement, finance, dept := seedWorkflowUsers(e)

	pr := createRequest(t, e, requester, dept)
	if pr.Status != entity.RequestPendingHOD {
		t.Fatalf("new request status = %s", pr.Status)
	}
	if pr.RequestNumber == "" {
		t.Fatal("request number not assigned")
	}
	if pr.Currency != "ZMW" {
		t.Fatalf("expected default currency ZMW, got %s", pr.Currency)
	}
	if pr.Priority != entity.PriorityMedium {
		t.Fatalf("expected default priority medium, got %s", pr.Priority)
	}

	// HOD approval moves it to procurement.
	pr, err := e.Services.Request.HODApprove(ctx, actorFor(hod), pr.ID, service.HODReviewInput{Notes: "Approved"})
	if err != nil {
		t.Fatalf("HODApprove failed: %v", err)
	}
	if pr.Status != entity.RequestPendingProcurement {
		t.Fatalf("after HOD approval status = %s", pr.Status)
	}

	// Procurement approval requires a budget and routes to finance.
	budget := decimal.NewFromInt(45000)
	pr, err = e.Services.Request.ProcurementApprove(ctx, actorFor(procurement), pr.ID, service.ProcurementReviewInput{
		BudgetAmount:   &budget,
		BudgetCurrency: "ZMW",
	})
	if err != nil {
		t.Fatalf("ProcurementApprove failed: %v", err)
	}
	if pr.Status != entity.RequestPendingFinance {
		t.Fatalf("after procurement approval status = %s", pr.Status)
	}

	// Finance signs off.
	pr, err = e.Services.Request.FinanceApprove(ctx, actorFor(finance), pr.ID, service.FinanceReviewInput{})
	if err != nil {
		t.Fatalf("FinanceApprove failed: %v", err)
	}
	if pr.Status != entity.RequestFinanceApproved {
		t.Fatalf("after finance approval status = %s", pr.Status)
	}
	if !pr.EffectiveBudget().Equal(budget) {
		t.Fatalf("effective budget = %s, want %s", pr.EffectiveBudget(), budget)
	}
}

func TestRequestApprovalOrderEnforced(t *testing.T) {
	e := testutil.SetupEnv(t)
	ctx := context.Background()
	requester, hod, procurement, finance, dept := seedWorkflowUsers(e)

	pr := createRequest(t, e, requester, dept)

	// Procurement cannot jump the HOD step.
	budget := decimal.NewFromInt(100)
	_, err := e.Services.Request.ProcurementApprove(ctx, actorFor(procurement), pr.ID, service.ProcurementReviewInput{
		BudgetAmount:   &budget,
		BudgetCurrency: "ZMW",
	})
	if !errors.Is(err, entity.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	// Finance cannot act before procurement set a budget.
	_, err = e.Services.Request.FinanceApprove(ctx, actorFor(finance), pr.ID, service.FinanceReviewInput{})
	if !errors.Is(err, service.ErrConflict) {
		t.Fatalf("expected conflict without a budget on file, got %v", err)
	}

	// Double HOD approval is rejected.
	if _, err := e.Services.Request.HODApprove(ctx, actorFor(hod), pr.ID, service.HODReviewInput{}); err != nil {
		t.Fatalf("HODApprove failed: %v", err)
	}
	_, err = e.Services.Request.HODApprove(ctx, actorFor(hod), pr.ID, service.HODReviewInput{})
	if !errors.Is(err, entity.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition on second approval, got %v", err)
	}
}

func TestHODOwnDepartmentOnly(t *testing.T) {
	e := testutil.SetupEnv(t)
	ctx := context.Background()
	requester, _, _, _, dept := seedWorkflowUsers(e)

	otherHOD, _ := e.SeedUser("other-hod", entity.RoleHeadOfDepartment, nil)
	otherDept := e.SeedDepartment("Operations", &otherHOD.ID)
	otherHOD.DepartmentID = &otherDept.ID

	pr := createRequest(t, e, requester, dept)

	_, err := e.Services.Request.HODApprove(ctx, actorFor(otherHOD), pr.ID, service.HODReviewInput{})
	if !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected forbidden for foreign department head, got %v", err)
	}

	// A head-of-department user merely assigned to the department is not
	// its designated head and may not review either.
	deputy, _ := e.SeedUser("deputy-hod", entity.RoleHeadOfDepartment, &dept.ID)
	_, err = e.Services.Request.HODApprove(ctx, actorFor(deputy), pr.ID, service.HODReviewInput{})
	if !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected forbidden for non-designated head, got %v", err)
	}
	_, err = e.Services.Request.HODReject(ctx, actorFor(deputy), pr.ID, service.HODReviewInput{Reason: "not mine to call"})
	if !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected forbidden for non-designated head, got %v", err)
	}
}

func TestRejectionsRequireReason(t *testing.T) {
	e := testutil.SetupEnv(t)
	ctx := context.Background()
	requester, hod, procurement, finance, dept := seedWorkflowUsers(e)

	pr := createRequest(t, e, requester, dept)

	_, err := e.Services.Request.HODReject(ctx, actorFor(hod), pr.ID, service.HODReviewInput{})
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected validation error without reason, got %v", err)
	}

	pr, err = e.Services.Request.HODReject(ctx, actorFor(hod), pr.ID, service.HODReviewInput{Reason: "Not budgeted this quarter"})
	if err != nil {
		t.Fatalf("HODReject failed: %v", err)
	}
	if pr.Status != entity.RequestRejectedByHOD {
		t.Fatalf("status = %s", pr.Status)
	}

	// A fresh request rejected by procurement gets the default reason.
	pr2 := createRequest(t, e, requester, dept)
	if _, err := e.Services.Request.HODApprove(ctx, actorFor(hod), pr2.ID, service.HODReviewInput{}); err != nil {
		t.Fatalf("HODApprove failed: %v", err)
	}
	pr2, err = e.Services.Request.ProcurementReject(ctx, actorFor(procurement), pr2.ID, service.ProcurementReviewInput{})
	if err != nil {
		t.Fatalf("ProcurementReject failed: %v", err)
	}
	if pr2.Status != entity.RequestRejectedByProcurement {
		t.Fatalf("status = %s", pr2.Status)
	}
	if pr2.RejectionReason != "Request denied by procurement" {
		t.Fatalf("default reason missing, got %q", pr2.RejectionReason)
	}

	// Finance rejections always need an explicit reason.
	pr3 := createRequest(t, e, requester, dept)
	if _, err := e.Services.Request.HODApprove(ctx, actorFor(hod), pr3.ID, service.HODReviewInput{}); err != nil {
		t.Fatalf("HODApprove failed: %v", err)
	}
	budget := decimal.NewFromInt(10)
	if _, err := e.Services.Request.ProcurementApprove(ctx, actorFor(procurement), pr3.ID, service.ProcurementReviewInput{BudgetAmount: &budget, BudgetCurrency: "ZMW"}); err != nil {
		t.Fatalf("ProcurementApprove failed: %v", err)
	}
	_, err = e.Services.Request.FinanceReject(ctx, actorFor(finance), pr3.ID, service.FinanceReviewInput{})
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected validation error without reason, got %v", err)
	}
}

func TestListScoping(t *testing.T) {
	e := testutil.SetupEnv(t)
	ctx := context.Background()
	requester, hod, procurement, _, dept := seedWorkflowUsers(e)

	createRequest(t, e, requester, dept)

	// A second requester in another department.
	otherHOD, _ := e.SeedUser("hod2", entity.RoleHeadOfDepartment, nil)
	dept2 := e.SeedDepartment("Operations", &otherHOD.ID)
	requester2, _ := e.SeedUser("requester2", entity.RoleRequester, &dept2.ID)
	createRequest(t, e, requester2, dept2)

	// Procurement sees both.
	_, total, err := e.Services.Request.List(ctx, actorFor(procurement), 1, 20, nil)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("procurement sees %d requests, want 2", total)
	}

	// The HOD sees only their department.
	items, total, err := e.Services.Request.List(ctx, actorFor(hod), 1, 20, nil)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || items[0].DepartmentID != dept.ID {
		t.Fatalf("HOD scope broken: total=%d", total)
	}

	// A requester sees only their own.
	items, total, err = e.Services.Request.List(ctx, actorFor(requester2), 1, 20, nil)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || items[0].RequesterID != requester2.ID {
		t.Fatalf("requester scope broken: total=%d", total)
	}
}

func TestInviteSuppliersIssuesRFQ(t *testing.T) {
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
	if rfq.Status != entity.RFQOpen {
		t.Fatalf("rfq status = %s", rfq.Status)
	}
	if rfq.RequestID == nil || *rfq.RequestID != pr.ID {
		t.Fatal("rfq not linked to request")
	}
	if !rfq.Budget.Equal(decimal.NewFromInt(45000)) {
		t.Fatalf("rfq budget = %s, want finance budget 45000", rfq.Budget)
	}

	got, err := e.Services.Request.Get(ctx, actorFor(procurement), pr.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != entity.RequestRFQIssued {
		t.Fatalf("request status = %s, want rfq_issued", got.Status)
	}

	var invCount int64
	e.DB.Model(&entity.Invitation{}).Where("rfq_id = ?", rfq.ID).Count(&invCount)
	if invCount != 2 {
		t.Fatalf("invitation count = %d", invCount)
	}

	// Re-inviting the same suppliers is a conflict, not a duplicate.
	_, err = e.Services.Request.InviteSuppliers(ctx, actorFor(procurement), pr.ID, service.InviteSuppliersInput{
		SupplierIDs: []uint{supplierA.ID},
		Deadline:    time.Now().Add(7 * 24 * time.Hour),
	})
	if !errors.Is(err, service.ErrConflict) {
		t.Fatalf("expected conflict on duplicate invitation, got %v", err)
	}
}

func TestInviteSuppliersValidation(t *testing.T) {
	e := testutil.SetupEnv(t)
	ctx := context.Background()
	requester, hod, procurement, finance, dept := seedWorkflowUsers(e)

	pr := createRequest(t, e, requester, dept)
	supplier, _ := e.SeedSupplier("sup", "Gamma Ltd")

	// Not finance approved yet.
	_, err := e.Services.Request.InviteSuppliers(ctx, actorFor(procurement), pr.ID, service.InviteSuppliersInput{
		SupplierIDs: []uint{supplier.ID},
		Deadline:    time.Now().Add(24 * time.Hour),
	})
	if !errors.Is(err, entity.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	approveThroughFinance(t, e, pr.ID, hod, procurement, finance)

	// Unknown supplier.
	_, err = e.Services.Request.InviteSuppliers(ctx, actorFor(procurement), pr.ID, service.InviteSuppliersInput{
		SupplierIDs: []uint{supplier.ID, 9999},
		Deadline:    time.Now().Add(24 * time.Hour),
	})
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// Inactive supplier.
	e.DB.Model(&entity.Supplier{}).Where("id = ?", supplier.ID).Update("is_active", false)
	_, err = e.Services.Request.InviteSuppliers(ctx, actorFor(procurement), pr.ID, service.InviteSuppliersInput{
		SupplierIDs: []uint{supplier.ID},
		Deadline:    time.Now().Add(24 * time.Hour),
	})
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected validation error for inactive supplier, got %v", err)
	}

	// Past deadline.
	e.DB.Model(&entity.Supplier{}).Where("id = ?", supplier.ID).Update("is_active", true)
	_, err = e.Services.Request.InviteSuppliers(ctx, actorFor(procurement), pr.ID, service.InviteSuppliersInput{
		SupplierIDs: []uint{supplier.ID},
		Deadline:    time.Now().Add(-time.Hour),
	})
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected validation error for past deadline, got %v", err)
	}
}

// approveThroughFinance walks a fresh request to finance_approved with a
// 45000 ZMW budget.
func approveThroughFinance(t *testing.T, e *testutil.Env, id uint, hod, procurement, finance *entity.User) {
	t.Helper()
	ctx := context.Background()
	if _, err := e.Services.Request.HODApprove(ctx, actorFor(hod), id, service.HODReviewInput{}); err != nil {
		t.Fatalf("HODApprove failed: %v", err)
	}
	budget := decimal.NewFromInt(45000)
	if _, err := e.Services.Request.ProcurementApprove(ctx, actorFor(procurement), id, service.ProcurementReviewInput{
		BudgetAmount:   &budget,
		BudgetCurrency: "ZMW",
	}); err != nil {
		t.Fatalf("ProcurementApprove failed: %v", err)
	}
	if _, err := e.Services.Request.FinanceApprove(ctx, actorFor(finance), id, service.FinanceReviewInput{}); err != nil {
		t.Fatalf("FinanceApprove failed: %v", err)
	}
}
