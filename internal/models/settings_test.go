package models

import "testing"

func TestPlatformFeeCents(t *testing.T) {
	cases := []struct {
		amount int64
		bps    int
		want   int64
	}{
		{45000, 1000, 4500},  // $450 at 10%
		{60000, 1000, 6000},
		{100, 1000, 10},
		{105, 1000, 11},      // 10.5 rounds up
		{104, 1000, 10},      // 10.4 rounds down
		{1, 1000, 0},         // 0.1 rounds down
		{5, 1000, 1},         // 0.5 rounds up
		{45000, 0, 0},
		{45000, 10000, 45000}, // 100% rate
		{99999, 1500, 15000},  // 14999.85 rounds up
	}
	for _, tc := range cases {
		if got := PlatformFeeCents(tc.amount, tc.bps); got != tc.want {
			t.Errorf("PlatformFeeCents(%d, %d) = %d, want %d", tc.amount, tc.bps, got, tc.want)
		}
	}
}
