package gbl

import "github.com/eyebp/boosting/logger"

//Histogram accumulates, for one feature over one row subset, the example
//count and the target sum of every bin, together with the subset totals.
type Histogram struct {
	Cnt      []int
	Sum      []float64
	TotalCnt int
	TotalSum float64
}

//BuildHistogram routes every row of the subset into the bin its code names
//and accumulates the row's target there. The cost is linear in the subset
//size. The subset totals are supplied by the caller because they are shared
//by every feature evaluated at the same node.
func BuildHistogram(f *Feature, subset []int, targets []float64, totalSum float64) *Histogram {
	numBins := f.NumBins()
	if numBins < 1 {
		logger.Panicf("a histogram needs at least one bin, got %d", numBins)
	}

	hist := &Histogram{
		Cnt:      make([]int, numBins),
		Sum:      make([]float64, numBins),
		TotalCnt: len(subset),
		TotalSum: totalSum,
	}

	switch f.Encoding {
	case EncodingNarrow:
		codes := f.narrowCodes()
		for _, row := range subset {
			b := codes[row]
			hist.Cnt[b]++
			hist.Sum[b] += targets[row]
		}
	case EncodingWide:
		codes := f.wideCodes()
		for _, row := range subset {
			b := codes[row]
			hist.Cnt[b]++
			hist.Sum[b] += targets[row]
		}
	default:
		logger.Panicf("cannot build a histogram for a feature with encoding %d", f.Encoding)
	}

	return hist
}
