package ledger_test

import (
	"testing"

	"github.com/gamebay/gamebay-api/internal/pkg/ledger"
)

func TestCommission(t *testing.T) {
	cases := []struct {
		amount int64
		want   int64
	}{
		{0, 0},
		{100, 10},
		{500000, 50000},
		{999, 100}, // 99.9 rounds to 100
		{995, 100}, // 99.5 rounds to even 100
		{985, 98},  // 98.5 rounds to even 98
		{10000000, 1000000},
	}
	for _, c := range cases {
		if got := ledger.Commission(c.amount); got != c.want {
			t.Errorf("Commission(%d) = %d, want %d", c.amount, got, c.want)
		}
	}
}

func TestTotalIsAmountPlusCommission(t *testing.T) {
	for _, amount := range []int64{0, 1, 999, 500000, 10000000} {
		total := ledger.Total(amount)
		if total != amount+ledger.Commission(amount) {
			t.Errorf("Total(%d) = %d, want amount+commission", amount, total)
		}
	}
}

func TestNetPayoutShare(t *testing.T) {
	cases := []struct {
		gross int64
		want  int64
	}{
		{0, 0},
		{1000000, 900000},
		{500000, 450000},
		{111, 100}, // 99.9 rounds to 100
		{105, 94},  // 94.5 rounds to even 94
	}
	for _, c := range cases {
		if got := ledger.NetPayoutShare(c.gross); got != c.want {
			t.Errorf("NetPayoutShare(%d) = %d, want %d", c.gross, got, c.want)
		}
	}
}
