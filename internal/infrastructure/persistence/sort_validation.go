package persistence

import (
	"strings"

	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// applySort orders the query by a whitelisted column.
// Unknown columns fall back to created_at to keep user input out of SQL.
func applySort(query *gorm.DB, orderBy, orderDir string, allowedFields map[string]bool) *gorm.DB {
	field := ValidateSortField(orderBy, allowedFields, "created_at")
	return query.Order(field + " " + ValidateSortOrder(orderDir))
}

// applyPagination applies page-based offset and limit when both are set
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if page > 0 && pageSize > 0 {
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}
	return query
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"invoice_number": true,
	"customer_name":  true,
	"invoice_date":   true,
	"due_date":       true,
	"total_amount":   true,
	"balance_due":    true,
	"status":         true,
}

// PaymentSortFields contains allowed sort fields for customer payments
var PaymentSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"payment_number":     true,
	"customer_name":      true,
	"payment_date":       true,
	"amount":             true,
	"unallocated_amount": true,
	"status":             true,
}

// CreditNoteSortFields contains allowed sort fields for credit notes
var CreditNoteSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"credit_note_number": true,
	"customer_name":      true,
	"credit_date":        true,
	"total_amount":       true,
	"balance":            true,
	"status":             true,
}

// CustomerCreditSortFields contains allowed sort fields for credit records
var CustomerCreditSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"customer_name":   true,
	"credit_limit":    true,
	"current_balance": true,
	"credit_score":    true,
	"risk_level":      true,
}
