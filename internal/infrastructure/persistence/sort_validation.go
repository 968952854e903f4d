package persistence

import (
	"fmt"
	"strings"
)

// ValidateSortOrder normalizes the sort direction to ASC or DESC (default)
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField maps a requested sort key onto a whitelisted column.
// Unknown keys fall back to defaultField.
func ValidateSortField(sortField string, allowed map[string]string, defaultField string) string {
	if col, ok := allowed[strings.TrimSpace(sortField)]; ok {
		return col
	}
	return defaultField
}

func orderClause(column, dir string) string {
	return fmt.Sprintf("%s %s", column, ValidateSortOrder(dir))
}

// ProductSortFields maps product sort keys to columns
var ProductSortFields = map[string]string{
	"price":      "price",
	"rating":     "rating",
	"name":       "name",
	"newest":     "created_at",
	"created_at": "created_at",
}

// OrderSortFields maps order sort keys to columns
var OrderSortFields = map[string]string{
	"created_at": "created_at",
	"total":      "total",
	"status":     "status",
}

// PaymentSortFields maps payment sort keys to columns
var PaymentSortFields = map[string]string{
	"paid_at": "paid_at",
	"amount":  "amount",
}

// UserSortFields maps user sort keys to columns
var UserSortFields = map[string]string{
	"created_at":    "created_at",
	"email":         "email",
	"name":          "name",
	"last_login_at": "last_login_at",
}

func likePattern(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
	return "%" + s + "%"
}
