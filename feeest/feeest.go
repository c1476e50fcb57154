// Package feeest estimates the fee rate required to confirm within a given
// number of blocks, from the mempool's fee-rate histogram.
package feeest

import "rubin.dev/query/mempool"

// vbytesPerBlock is the assumed block capacity used to translate a
// confirmation target in blocks into a vsize threshold.
const vbytesPerBlock = 1_000_000

// satPerVByteToBtcPerKB converts a sat/vbyte fee rate to BTC/kB.
const satPerVByteToBtcPerKB = 1e-5

// EstimateFee returns the estimated fee rate, in BTC/kB, required to confirm
// within the given number of blocks. It walks the fee-rate histogram
// (sorted descending) accumulating vsize until the threshold is crossed,
// then reports the fee rate of the bucket that tipped it; this
// intentionally under-estimates rather than over-promising confirmation
// speed.
func EstimateFee(histogram []mempool.FeeBucket, blocks int) float64 {
	if blocks <= 0 {
		blocks = 1
	}
	target := uint64(blocks) * vbytesPerBlock

	var cumulative uint64
	var lastSeenRate float64
	for _, bucket := range histogram {
		cumulative += bucket.VSize
		lastSeenRate = bucket.FeeRate
		if cumulative >= target {
			break
		}
	}
	return lastSeenRate * satPerVByteToBtcPerKB
}

// GetFeeHistogram returns the histogram unchanged; present so callers go
// through one facade for both operations rather than reaching into mempool
// directly.
func GetFeeHistogram(histogram []mempool.FeeBucket) []mempool.FeeBucket {
	return histogram
}
