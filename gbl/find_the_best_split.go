package gbl

import "github.com/eyebp/boosting/logger"

//featureSplit is the outcome of scanning one feature at one candidate.
type featureSplit struct {
	fid       int
	idx       int
	gain      float64
	evaluated bool
}

//bestSplitFromHistogram scans the bin boundaries of a histogram left to
//right and returns the boundary index with the highest gain together with
//that gain. The left side of boundary idx covers bins 0..idx inclusive.
//Boundaries whose left side is still below minLeaf are skipped; the scan
//stops as soon as the right side drops below minLeaf because it only shrinks
//from there. The best gain starts at zero, so a boundary is reported only
//when splitting strictly beats not splitting, and ties keep the lowest
//index. bestIdx is -1 when no boundary qualifies.
func bestSplitFromHistogram(hist *Histogram, minLeaf int) (bestIdx int, bestGain float64) {
	numBins := len(hist.Cnt)
	if numBins < 1 {
		logger.Panicf("a histogram with %d bins cannot be scanned", numBins)
	}

	lossBefore := -(hist.TotalSum * hist.TotalSum) / float64(hist.TotalCnt)

	bestIdx, bestGain = -1, 0.0
	cntLeft, sumLeft := 0, 0.0

	for idx := 0; idx < numBins-1; idx++ {
		cntLeft += hist.Cnt[idx]
		sumLeft += hist.Sum[idx]

		cntRight := hist.TotalCnt - cntLeft
		sumRight := hist.TotalSum - sumLeft

		if cntLeft < minLeaf {
			continue
		}
		if cntRight < minLeaf {
			break
		}

		lossAfter := -(sumLeft*sumLeft)/float64(cntLeft) - (sumRight*sumRight)/float64(cntRight)
		gain := lossBefore - lossAfter
		if gain > bestGain {
			bestGain = gain
			bestIdx = idx
		}
	}
	return bestIdx, bestGain
}

//findTheBestSplit builds a histogram and scans it for every feature whose
//flip won, then keeps the single best feature. The reduction walks results
//in feature order with a strict greater-than comparison, so the winner does
//not depend on how many workers evaluated the features.
func findTheBestSplit(ds *DataSet, subset []int, targets []float64, totalSum float64, flips []bool, threadsNum int) (bestFid, bestIdx int, bestGain float64) {
	results := make([]featureSplit, ds.NumFeatures())
	scan := func(fid int) featureSplit {
		hist := BuildHistogram(&ds.Features[fid], subset, targets, totalSum)
		idx, gain := bestSplitFromHistogram(hist, MinLeafExamples)
		return featureSplit{fid: fid, idx: idx, gain: gain, evaluated: true}
	}

	if threadsNum <= 1 {
		for fid := range ds.Features {
			if flips[fid] {
				results[fid] = scan(fid)
			}
		}
	} else {
		taskPool := NewPool(threadsNum)
		for fid := range ds.Features {
			if !flips[fid] {
				continue
			}
			taskPool.AddTask(&TaskFindBestSplit{results, fid, scan})
		}
		taskPool.Close()
		taskPool.WaitAll()
	}

	bestFid, bestIdx, bestGain = -1, -1, 0.0
	for fid := range results {
		current := &results[fid]
		if !current.evaluated || current.idx < 0 {
			continue
		}
		if current.gain > bestGain {
			bestFid, bestIdx, bestGain = current.fid, current.idx, current.gain
		}
	}
	return bestFid, bestIdx, bestGain
}
