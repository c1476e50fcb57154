package feeest

import (
	"testing"

	"rubin.dev/query/mempool"
)

func TestEstimateFeeStopsAtThreshold(t *testing.T) {
	hist := []mempool.FeeBucket{
		{FeeRate: 50, VSize: 600_000},
		{FeeRate: 20, VSize: 600_000},
		{FeeRate: 5, VSize: 600_000},
	}
	got := EstimateFee(hist, 1)
	want := 20 * satPerVByteToBtcPerKB // cumulative crosses 1,000,000 in bucket 2
	if got != want {
		t.Fatalf("EstimateFee(1) = %v, want %v", got, want)
	}
}

func TestEstimateFeeEmptyHistogram(t *testing.T) {
	got := EstimateFee(nil, 1)
	if got != 0 {
		t.Fatalf("EstimateFee with empty histogram = %v, want 0", got)
	}
}

func TestEstimateFeeMultiBlockTarget(t *testing.T) {
	hist := []mempool.FeeBucket{
		{FeeRate: 50, VSize: 1_000_000},
		{FeeRate: 20, VSize: 1_000_000},
		{FeeRate: 5, VSize: 1_000_000},
	}
	got := EstimateFee(hist, 2)
	want := 20 * satPerVByteToBtcPerKB
	if got != want {
		t.Fatalf("EstimateFee(2) = %v, want %v", got, want)
	}
}

func TestGetFeeHistogramUnchanged(t *testing.T) {
	hist := []mempool.FeeBucket{{FeeRate: 1, VSize: 1}}
	got := GetFeeHistogram(hist)
	if len(got) != 1 || got[0] != hist[0] {
		t.Fatalf("GetFeeHistogram altered input: %+v", got)
	}
}
