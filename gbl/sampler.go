package gbl

import "math/rand"

//biasedCoinFlip returns true with probability rate. A rate of 1.0 always
//wins because Float64 never returns 1.0, a rate of 0.0 never does.
func biasedCoinFlip(rng *rand.Rand, rate float64) bool {
	return rng.Float64() < rate
}

//sampleRows draws one coin flip per example and returns the indices of the
//winners in increasing order.
func sampleRows(rng *rand.Rand, numExamples int, rate float64) []int {
	subset := make([]int, 0, numExamples)
	for eid := 0; eid < numExamples; eid++ {
		if biasedCoinFlip(rng, rate) {
			subset = append(subset, eid)
		}
	}
	return subset
}

//sampleFeatures pre-draws the per-feature inclusion flips for one candidate
//evaluation. Draws are consumed in feature order and empty features consume
//no draw, so the stream position after the call does not depend on how the
//included features are evaluated later. Growth stays reproducible for a
//fixed seed even when evaluation itself runs on a pool.
func sampleFeatures(rng *rand.Rand, ds *DataSet, rate float64) []bool {
	flips := make([]bool, len(ds.Features))
	for fid := range ds.Features {
		if ds.Features[fid].Encoding == EncodingEmpty {
			continue
		}
		flips[fid] = biasedCoinFlip(rng, rate)
	}
	return flips
}
