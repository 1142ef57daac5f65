package features

import "sibyl/internal/domain/market"

// FundamentalMap flattens the known fields of a snapshot into a feature
// map. Unknown fields are omitted rather than defaulted; the consumer
// decides how to treat absence.
func FundamentalMap(snapshot market.FundamentalsSnapshot) map[string]float64 {
	out := make(map[string]float64)
	if snapshot.PE != nil {
		out["pe"] = *snapshot.PE
	}
	if snapshot.ROE != nil {
		out["roe"] = *snapshot.ROE
	}
	if snapshot.DebtToEquity != nil {
		out["debt_to_equity"] = *snapshot.DebtToEquity
	}
	if snapshot.ProfitMargin != nil {
		out["profit_margin"] = *snapshot.ProfitMargin
	}
	if snapshot.RevenueGrowthYoY != nil {
		out["growth_rev_yoy"] = *snapshot.RevenueGrowthYoY
	}
	if snapshot.FilingRecencyDays != nil {
		out["filing_recency_days"] = float64(*snapshot.FilingRecencyDays)
	}
	return out
}
