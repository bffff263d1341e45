package market

import "github.com/haulcore/dispatch-engine/engine/domain"

// DefaultBidPremium is the multiplier over the competitor average used when
// a strategy bids aggressively and the policy does not set its own premium.
const DefaultBidPremium = 1.05

// ApplyStrategy applies a strategy's margin policy to an opportunity in
// place. It is deterministic: given fixed inputs the output is fixed; all
// randomness lives in the market data source that feeds marketRate and
// competitor figures.
//
// Floor enforcement never lowers a rate that already clears the minimum
// margin; aggressive bidding re-anchors on the competitor average only when
// the margin exceeds the target.
func ApplyStrategy(o *domain.LoadOpportunity, s domain.BrokerageStrategy) {
	p := s.Policy
	switch {
	case o.ProfitMargin < p.MinimumMarginPct:
		o.SetRate(o.MarketRate * (1 + p.MinimumMarginPct/100))
	case p.AggressiveBidding && o.ProfitMargin > p.TargetMarginPct:
		premium := p.BidPremium
		if premium == 0 {
			premium = DefaultBidPremium
		}
		o.SetRate(o.Competitors.AverageRate * premium)
	}
	// SetRate recomputes rate-per-mile and margin; when neither branch fired
	// the rate is unchanged and derived fields are already consistent.
}
