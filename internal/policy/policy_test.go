package policy

import (
	"testing"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/entity"
)

func TestRoleCapabilities(t *testing.T) {
	cases := []struct {
		role entity.Role
		cap  Capability
		want bool
	}{
		{entity.RoleRequester, CapCreateRequest, true},
		{entity.RoleRequester, CapHODReview, false},
		{entity.RoleHeadOfDepartment, CapHODReview, true},
		{entity.RoleHeadOfDepartment, CapFinanceReview, false},
		{entity.RoleProcurement, CapProcurementReview, true},
		{entity.RoleProcurement, CapInviteSuppliers, true},
		{entity.RoleProcurement, CapFinanceQuotation, false},
		{entity.RoleFinance, CapFinanceReview, true},
		{entity.RoleFinance, CapFinanceQuotation, true},
		{entity.RoleSupplier, CapSubmitQuotation, true},
		{entity.RoleSupplier, CapViewAllRequests, false},
		{entity.RoleProcurementOfficer, CapCreateDraftRFQ, true},
	}

	for _, tc := range cases {
		if got := Allows(tc.role, tc.cap); got != tc.want {
			t.Errorf("Allows(%s, %s) = %v, want %v", tc.role, tc.cap, got, tc.want)
		}
	}
}

func TestSuperAdminHasEverything(t *testing.T) {
	caps := []Capability{
		CapCreateRequest, CapHODReview, CapProcurementReview,
		CapFinanceReview, CapInviteSuppliers, CapReviewQuotation,
		CapFinanceQuotation, CapManageUsers, CapManageSettings,
		CapViewAnalytics, CapUnsealQuotations, CapMarkDelivered,
	}
	for _, c := range caps {
		if !Allows(entity.RoleSuperAdmin, c) {
			t.Errorf("super_admin should hold %s", c)
		}
	}
}

func TestAllowsAny(t *testing.T) {
	if !AllowsAny(entity.RoleHeadOfDepartment, CapFinanceReview, CapHODReview) {
		t.Fatal("expected any-match to pass")
	}
	if AllowsAny(entity.RoleSupplier, CapHODReview, CapFinanceReview) {
		t.Fatal("expected supplier to fail both")
	}
}
