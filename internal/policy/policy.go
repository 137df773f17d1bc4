// Package policy centralizes role-to-capability mapping. Handlers and
// services ask for capabilities, never for raw role strings, so the
// authorization surface lives in one table. Ownership rules (an HOD may
// only act on their own department, a supplier only on their own data)
// stay with the operations that need them.
package policy

import "github.com/Hillarymukuka/Procurehub-sub000/internal/entity"

// Capability names a single permitted action class.
type Capability string

const (
	CapCreateRequest      Capability = "request:create"
	CapViewAllRequests    Capability = "request:view_all"
	CapHODReview          Capability = "request:hod_review"
	CapProcurementReview  Capability = "request:procurement_review"
	CapFinanceReview      Capability = "request:finance_review"
	CapInviteSuppliers    Capability = "rfq:invite_suppliers"
	CapCreateDraftRFQ     Capability = "rfq:create_draft"
	CapApproveDraftRFQ    Capability = "rfq:approve_draft"
	CapViewAllRFQs        Capability = "rfq:view_all"
	CapSubmitQuotation    Capability = "quotation:submit"
	CapReviewQuotation    Capability = "quotation:review"
	CapFinanceQuotation   Capability = "quotation:finance_approve"
	CapUnsealQuotations   Capability = "quotation:view_sealed"
	CapMarkDelivered      Capability = "quotation:mark_delivered"
	CapViewPurchaseOrders Capability = "po:view"
	CapManageUsers        Capability = "admin:users"
	CapManageDepartments  Capability = "admin:departments"
	CapManageCategories   Capability = "admin:categories"
	CapManageSuppliers    Capability = "admin:suppliers"
	CapManageSettings     Capability = "admin:settings"
	CapViewAnalytics      Capability = "admin:analytics"
)

var roleCapabilities = map[entity.Role][]Capability{
	entity.RoleSuperAdmin: {
		CapCreateRequest, CapViewAllRequests, CapHODReview,
		CapProcurementReview, CapFinanceReview, CapInviteSuppliers,
		CapCreateDraftRFQ, CapApproveDraftRFQ, CapViewAllRFQs,
		CapReviewQuotation, CapFinanceQuotation, CapUnsealQuotations,
		CapMarkDelivered, CapViewPurchaseOrders,
		CapManageUsers, CapManageDepartments, CapManageCategories,
		CapManageSuppliers, CapManageSettings, CapViewAnalytics,
	},
	entity.RoleProcurement: {
		CapViewAllRequests, CapProcurementReview, CapInviteSuppliers,
		CapCreateDraftRFQ, CapApproveDraftRFQ, CapViewAllRFQs,
		CapReviewQuotation, CapMarkDelivered, CapViewPurchaseOrders,
		CapManageCategories, CapViewAnalytics,
	},
	entity.RoleProcurementOfficer: {
		CapViewAllRequests, CapCreateDraftRFQ, CapViewAllRFQs,
		CapViewPurchaseOrders,
	},
	entity.RoleHeadOfDepartment: {
		CapHODReview,
	},
	entity.RoleRequester: {
		CapCreateRequest,
	},
	entity.RoleFinance: {
		CapViewAllRequests, CapFinanceReview, CapViewAllRFQs,
		CapReviewQuotation, CapFinanceQuotation, CapUnsealQuotations,
		CapViewPurchaseOrders, CapViewAnalytics,
	},
	entity.RoleSupplier: {
		CapSubmitQuotation,
	},
}

// Allows reports whether the role carries the capability.
func Allows(role entity.Role, cap Capability) bool {
	for _, c := range roleCapabilities[role] {
		if c == cap {
			return true
		}
	}
	return false
}

// AllowsAny reports whether the role carries at least one capability.
func AllowsAny(role entity.Role, caps ...Capability) bool {
	for _, c := range caps {
		if Allows(role, c) {
			return true
		}
	}
	return false
}
