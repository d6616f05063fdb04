package business

import "github.com/shopspring/decimal"

// RevenuePerEmployee is the flat USD multiplier used for revenue estimates.
var RevenuePerEmployee = decimal.NewFromInt(150000)

// EstimateAnnualRevenue derives a rough annual revenue from headcount.
// Returns nil when the headcount is unknown.
func EstimateAnnualRevenue(employees *int) *decimal.Decimal {
	if employees == nil || *employees <= 0 {
		return nil
	}
	v := RevenuePerEmployee.Mul(decimal.NewFromInt(int64(*employees)))
	return &v
}
