package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC, DESC by default.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when it is whitelisted, defaultField otherwise.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// BusinessSortFields contains allowed sort fields for businesses
var BusinessSortFields = map[string]bool{
	"created_at":              true,
	"updated_at":              true,
	"name":                    true,
	"island":                  true,
	"industry":                true,
	"employee_count_estimate": true,
	"annual_revenue_estimate": true,
}

// CollectionRunSortFields contains allowed sort fields for collection runs
var CollectionRunSortFields = map[string]bool{
	"started_at":       true,
	"finished_at":      true,
	"source":           true,
	"status":           true,
	"businesses_added": true,
	"errors":           true,
	"duration_seconds": true,
}

// ProspectScoreSortFields contains allowed sort fields for prospect scores
var ProspectScoreSortFields = map[string]bool{
	"score":                true,
	"estimated_deal_value": true,
	"last_analyzed_at":     true,
	"created_at":           true,
}
