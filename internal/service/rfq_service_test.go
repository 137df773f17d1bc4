package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/entity"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/repository"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/service"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/testutil"
)

func seedCategorySupplier(t *testing.T, e *testutil.Env, username, company, categories string) *entity.Supplier {
	t.Helper()
	sup, _ := e.SeedSupplier(username, company)
	if err := e.DB.Model(&entity.Supplier{}).Where("id = ?", sup.ID).
		Update("categories", categories).Error; err != nil {
		t.Fatalf("set categories: %v", err)
	}
	sup.Categories = categories
	return sup
}

func TestDraftRFQLifecycle(t *testing.T) {
	e := testutil.SetupEnv(t)
	ctx := context.Background()

	officer, _ := e.SeedUser("officer", entity.RoleProcurementOfficer, nil)
	procurement, _ := e.SeedUser("procurement", entity.RoleProcurement, nil)

	seedCategorySupplier(t, e, "supa", "Alpha Supplies Ltd", "IT Equipment,Stationery")
	seedCategorySupplier(t, e, "supb", "Beta Traders", "IT Equipment")
	seedCategorySupplier(t, e, "supc", "Gamma Services", "Catering")

	draft, err := e.Services.RFQ.CreateDraft(ctx, actorFor(officer), service.CreateDraftInput{
		Title:    "Office laptops",
		Category: "IT Equipment",
		Budget:   decimal.NewFromInt(90000),
		Deadline: time.Now().Add(14 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateDraft failed: %v", err)
	}
	if draft.Status != entity.RFQDraft {
		t.Fatalf("status = %s", draft.Status)
	}
	if draft.InvitationBatchSize != 25 {
		t.Fatalf("batch size should default from config, got %d", draft.InvitationBatchSize)
	}

	// The officer cannot approve their own draft.
	_, err = e.Services.RFQ.ApproveDraft(ctx, actorFor(officer), draft.ID)
	if !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected forbidden for officer approval, got %v", err)
	}

	// Approval opens the RFQ and auto-invites the category suppliers.
	rfq, err := e.Services.RFQ.ApproveDraft(ctx, actorFor(procurement), draft.ID)
	if err != nil {
		t.Fatalf("ApproveDraft failed: %v", err)
	}
	if rfq.Status != entity.RFQOpen {
		t.Fatalf("status = %s", rfq.Status)
	}
	if len(rfq.Invitations) != 2 {
		t.Fatalf("expected 2 auto-invitations, got %d", len(rfq.Invitations))
	}

	// Second approval is rejected.
	_, err = e.Services.RFQ.ApproveDraft(ctx, actorFor(procurement), draft.ID)
	if !errors.Is(err, entity.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	// Open RFQs cannot be discarded.
	if err := e.Services.RFQ.DeleteDraft(ctx, actorFor(procurement), draft.ID); !errors.Is(err, service.ErrConflict) {
		t.Fatalf("expected conflict deleting an open RFQ, got %v", err)
	}
}

func TestDraftRFQDiscard(t *testing.T) {
	e := testutil.SetupEnv(t)
	ctx := context.Background()

	procurement, _ := e.SeedUser("procurement", entity.RoleProcurement, nil)

	draft, err := e.Services.RFQ.CreateDraft(ctx, actorFor(procurement), service.CreateDraftInput{
		Title:    "Cleaning contract",
		Category: "Facilities",
		Deadline: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateDraft failed: %v", err)
	}

	second, err := e.Services.RFQ.CreateDraft(ctx, actorFor(procurement), service.CreateDraftInput{
		Title:    "Security contract",
		Category: "Facilities",
		Deadline: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateDraft failed: %v", err)
	}

	if err := e.Services.RFQ.DeleteDraft(ctx, actorFor(procurement), draft.ID); err != nil {
		t.Fatalf("DeleteDraft failed: %v", err)
	}
	if _, err := e.Repos.RFQ.FindByID(ctx, draft.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("draft still present: %v", err)
	}

	// numbering keeps advancing past discarded drafts
	third, err := e.Services.RFQ.CreateDraft(ctx, actorFor(procurement), service.CreateDraftInput{
		Title:    "Catering contract",
		Category: "Facilities",
		Deadline: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateDraft after discard failed: %v", err)
	}
	if third.RFQNumber == draft.RFQNumber || third.RFQNumber == second.RFQNumber {
		t.Fatalf("rfq number reused: %s (previous %s, %s)", third.RFQNumber, draft.RFQNumber, second.RFQNumber)
	}
}

func TestApproveDraftWithoutCandidates(t *testing.T) {
	e := testutil.SetupEnv(t)
	ctx := context.Background()

	procurement, _ := e.SeedUser("procurement", entity.RoleProcurement, nil)

	draft, err := e.Services.RFQ.CreateDraft(ctx, actorFor(procurement), service.CreateDraftInput{
		Title:    "Specialist drilling",
		Category: "Mining",
		Deadline: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateDraft failed: %v", err)
	}

	_, err = e.Services.RFQ.ApproveDraft(ctx, actorFor(procurement), draft.ID)
	if !errors.Is(err, service.ErrConflict) {
		t.Fatalf("expected conflict with no candidate suppliers, got %v", err)
	}
}

func TestRFQVisibility(t *testing.T) {
	e := testutil.SetupEnv(t)
	ctx := context.Background()

	procurement, _ := e.SeedUser("procurement", entity.RoleProcurement, nil)
	supA := seedCategorySupplier(t, e, "supa", "Alpha Supplies Ltd", "IT Equipment")
	outsider, _ := e.SeedSupplier("supb", "Beta Traders")

	draft, err := e.Services.RFQ.CreateDraft(ctx, actorFor(procurement), service.CreateDraftInput{
		Title:    "Office laptops",
		Category: "IT Equipment",
		Deadline: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateDraft failed: %v", err)
	}

	// Drafts are invisible to suppliers.
	if _, err := e.Services.RFQ.Get(ctx, actorFor(supA.User), draft.ID); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected forbidden on draft, got %v", err)
	}

	if _, err := e.Services.RFQ.ApproveDraft(ctx, actorFor(procurement), draft.ID); err != nil {
		t.Fatalf("ApproveDraft failed: %v", err)
	}

	// The invited supplier sees the open RFQ, the outsider does not.
	if _, err := e.Services.RFQ.Get(ctx, actorFor(supA.User), draft.ID); err != nil {
		t.Fatalf("invited supplier blocked: %v", err)
	}
	if _, err := e.Services.RFQ.Get(ctx, actorFor(outsider.User), draft.ID); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected forbidden for uninvited supplier, got %v", err)
	}

	// Supplier list shows only invited RFQs.
	items, total, err := e.Services.RFQ.List(ctx, actorFor(supA.User), 1, 20, nil)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || items[0].ID != draft.ID {
		t.Fatalf("supplier list broken: total=%d", total)
	}
	_, total, err = e.Services.RFQ.List(ctx, actorFor(outsider.User), 1, 20, nil)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 0 {
		t.Fatalf("outsider sees %d RFQs", total)
	}
}

func TestCloseExpired(t *testing.T) {
	e := testutil.SetupEnv(t)
	ctx := context.Background()

	procurement, _ := e.SeedUser("procurement", entity.RoleProcurement, nil)
	seedCategorySupplier(t, e, "supa", "Alpha Supplies Ltd", "IT Equipment")

	draft, err := e.Services.RFQ.CreateDraft(ctx, actorFor(procurement), service.CreateDraftInput{
		Title:    "Office laptops",
		Category: "IT Equipment",
		Deadline: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateDraft failed: %v", err)
	}
	if _, err := e.Services.RFQ.ApproveDraft(ctx, actorFor(procurement), draft.ID); err != nil {
		t.Fatalf("ApproveDraft failed: %v", err)
	}

	// Nothing expired yet.
	n, err := e.Services.RFQ.CloseExpired(ctx)
	if err != nil {
		t.Fatalf("CloseExpired failed: %v", err)
	}
	if n != 0 {
		t.Fatalf("closed %d, want 0", n)
	}

	// Push the deadline into the past and lock responses.
	e.DB.Model(&entity.RFQ{}).Where("id = ?", draft.ID).
		Updates(map[string]interface{}{
			"deadline":        time.Now().Add(-time.Minute),
			"response_locked": true,
		})

	n, err = e.Services.RFQ.CloseExpired(ctx)
	if err != nil {
		t.Fatalf("CloseExpired failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("closed %d, want 1", n)
	}

	rfq, err := e.Repos.RFQ.FindByID(ctx, draft.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if rfq.Status != entity.RFQClosed {
		t.Fatalf("status = %s", rfq.Status)
	}
	if rfq.ResponseLocked {
		t.Fatal("seal should lift when the RFQ closes")
	}
}
