// Package ledger centralizes the platform's money rules.
//
// All amounts are int64 values in the smallest currency unit. The two
// percentage rules (10% commission, 90% seller share) are applied with
// round-half-even so repeated settlement runs never drift.
package ledger

// CommissionRatePercent is the platform's cut of a purchase base amount.
const CommissionRatePercent = 10

// PayoutSharePercent is the seller's share of gross sold value.
const PayoutSharePercent = 90

// Commission returns the platform commission for a purchase base amount.
func Commission(amount int64) int64 {
	return mulPercent(amount, CommissionRatePercent)
}

// Total returns the amount a buyer pays for a purchase: base plus commission.
func Total(amount int64) int64 {
	return amount + Commission(amount)
}

// NetPayoutShare returns the seller's 90% share of a gross sold total.
func NetPayoutShare(gross int64) int64 {
	return mulPercent(gross, PayoutSharePercent)
}

// mulPercent computes amount*pct/100 with round-half-even on the remainder.
func mulPercent(amount int64, pct int64) int64 {
	product := amount * pct
	q := product / 100
	r := product % 100
	switch {
	case r > 50:
		q++
	case r == 50 && q%2 != 0:
		q++
	}
	return q
}
