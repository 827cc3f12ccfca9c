package gbl

import (
	"os"
	"sort"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"

	"github.com/eyebp/boosting/logger"
)

//Encoding tells how the per-row bin codes of a feature are stored.
type Encoding int

const (
	//EncodingEmpty marks a feature with fewer than two distinct values. It has
	//no codes and is never considered for splitting.
	EncodingEmpty Encoding = iota
	//EncodingNarrow stores one byte per row, up to 256 bins.
	EncodingNarrow
	//EncodingWide stores two bytes per row, up to 65536 bins.
	EncodingWide
)

//MaxNarrowBins and MaxWideBins bound the bin count of the two encodings.
const (
	MaxNarrowBins = 1 << 8
	MaxWideBins   = 1 << 16
)

//Feature is one encoded column: the ordered bin boundaries and a dense
//tensor of codes, uint8 backed for narrow features and uint16 for wide ones.
//The number of bins is always len(Transitions)+1.
type Feature struct {
	Encoding    Encoding
	Transitions []float64
	Codes       *tensor.Dense
}

//NumBins returns the number of bins of the feature.
func (f *Feature) NumBins() int {
	return len(f.Transitions) + 1
}

//narrowCodes returns the uint8 code plane and aborts on any other encoding.
func (f *Feature) narrowCodes() []uint8 {
	if f.Encoding != EncodingNarrow {
		logger.Panicf("narrow codes requested from a feature with encoding %d", f.Encoding)
	}
	codes, ok := f.Codes.Data().([]uint8)
	if !ok {
		logger.Panicf("a narrow feature carries a %T code plane", f.Codes.Data())
	}
	return codes
}

//wideCodes returns the uint16 code plane and aborts on any other encoding.
func (f *Feature) wideCodes() []uint16 {
	if f.Encoding != EncodingWide {
		logger.Panicf("wide codes requested from a feature with encoding %d", f.Encoding)
	}
	codes, ok := f.Codes.Data().([]uint16)
	if !ok {
		logger.Panicf("a wide feature carries a %T code plane", f.Codes.Data())
	}
	return codes
}

//NewEmptyFeature creates a feature that is always skipped during growth.
func NewEmptyFeature() Feature {
	return Feature{Encoding: EncodingEmpty}
}

//NewNarrowFeature creates a narrow feature from its transitions and codes.
func NewNarrowFeature(transitions []float64, codes []uint8) Feature {
	if len(transitions)+1 > MaxNarrowBins {
		logger.Panicf("%d transitions do not fit the narrow encoding", len(transitions))
	}
	return Feature{
		Encoding:    EncodingNarrow,
		Transitions: transitions,
		Codes:       tensor.New(tensor.WithShape(len(codes)), tensor.WithBacking(codes)),
	}
}

//NewWideFeature creates a wide feature from its transitions and codes.
func NewWideFeature(transitions []float64, codes []uint16) Feature {
	if len(transitions)+1 > MaxWideBins {
		logger.Panicf("%d transitions do not fit the wide encoding", len(transitions))
	}
	return Feature{
		Encoding:    EncodingWide,
		Transitions: transitions,
		Codes:       tensor.New(tensor.WithShape(len(codes)), tensor.WithBacking(codes)),
	}
}

//DataSet is the columnar encoded view of a training matrix together with the
//raw target column.
type DataSet struct {
	NumExamples int
	Features    []Feature
	Targets     []float64
}

//NumFeatures returns the number of feature columns.
func (ds *DataSet) NumFeatures() int {
	return len(ds.Features)
}

//Code returns the bin code of one row of one feature.
func (ds *DataSet) Code(fid, row int) int {
	f := &ds.Features[fid]
	switch f.Encoding {
	case EncodingNarrow:
		return int(f.narrowCodes()[row])
	case EncodingWide:
		return int(f.wideCodes()[row])
	}
	logger.Panicf("code requested from the empty feature %d", fid)
	return 0
}

//PartitionSubset splits a row subset by a feature and a bin threshold. A row
//goes left iff its code is less than or equal to fv. The two results are
//disjoint and cover the input exactly.
func (ds *DataSet) PartitionSubset(subset []int, fid, fv int) (left, right []int) {
	left = make([]int, 0, len(subset))
	right = make([]int, 0, len(subset))
	switch ds.Features[fid].Encoding {
	case EncodingNarrow:
		codes := ds.Features[fid].narrowCodes()
		for _, row := range subset {
			if int(codes[row]) <= fv {
				left = append(left, row)
			} else {
				right = append(right, row)
			}
		}
	case EncodingWide:
		codes := ds.Features[fid].wideCodes()
		for _, row := range subset {
			if int(codes[row]) <= fv {
				left = append(left, row)
			} else {
				right = append(right, row)
			}
		}
	default:
		logger.Panicf("cannot partition by the empty feature %d", fid)
	}
	return left, right
}

//NewDataSet encodes a raw feature matrix column by column. Bin boundaries are
//midpoints between adjacent distinct values, thinned evenly when a column has
//more than maxBins distinct values. Columns with fewer than two distinct
//values become empty features.
func NewDataSet(raw, target *mat.Dense, maxBins int) (ds *DataSet) {
	h, w := raw.Dims()
	targetH, targetW := target.Dims()
	if targetH != h {
		logger.Panicf("the target height %d is not equal to the data height %d", targetH, h)
	}
	if targetW != 1 {
		logger.Panicf("the width of the target should be 1 not %d", targetW)
	}
	if maxBins < 2 || maxBins > MaxWideBins {
		logger.Panicf("maxBins %d is outside [2, %d]", maxBins, MaxWideBins)
	}

	ds = &DataSet{NumExamples: h, Features: make([]Feature, w), Targets: make([]float64, h)}
	for p := 0; p < h; p++ {
		ds.Targets[p] = target.At(p, 0)
	}

	column := make([]float64, h)
	for q := 0; q < w; q++ {
		for p := 0; p < h; p++ {
			column[p] = raw.At(p, q)
		}
		ds.Features[q] = encodeColumn(column, maxBins)
	}
	return ds
}

//encodeColumn derives the transitions of one raw column and encodes every
//value as the number of transitions below it, so that code <= t holds
//exactly when value <= Transitions[t].
func encodeColumn(column []float64, maxBins int) Feature {
	distinct := distinctSorted(column)
	if len(distinct) < 2 {
		return NewEmptyFeature()
	}

	transitions := make([]float64, len(distinct)-1)
	for i := range transitions {
		transitions[i] = (distinct[i] + distinct[i+1]) / 2.0
	}
	if len(transitions) > maxBins-1 {
		thinned := make([]float64, maxBins-1)
		for i := range thinned {
			thinned[i] = transitions[i*len(transitions)/(maxBins-1)]
		}
		transitions = thinned
	}

	if len(transitions)+1 <= MaxNarrowBins {
		codes := make([]uint8, len(column))
		for p, v := range column {
			codes[p] = uint8(sort.SearchFloat64s(transitions, v))
		}
		return NewNarrowFeature(transitions, codes)
	}

	codes := make([]uint16, len(column))
	for p, v := range column {
		codes[p] = uint16(sort.SearchFloat64s(transitions, v))
	}
	return NewWideFeature(transitions, codes)
}

func distinctSorted(column []float64) []float64 {
	values := make([]float64, len(column))
	copy(values, column)
	sort.Float64s(values)

	distinct := values[:0]
	for i, v := range values {
		if i == 0 || v != distinct[len(distinct)-1] {
			distinct = append(distinct, v)
		}
	}
	return distinct
}

//ReadNpyMatrix reads the content of an npy file into a dense matrix.
func ReadNpyMatrix(fileName string) (denseMat *mat.Dense) {
	f, err := os.Open(fileName)
	if err != nil {
		logger.Fatalf("open %s: %v", fileName, err)
	}
	defer func() { HandleError(f.Close()) }()

	r, err := npyio.NewReader(f)
	if err != nil {
		logger.Fatalf("read npy header of %s: %v", fileName, err)
	}

	denseMat = &mat.Dense{}
	HandleError(r.Read(denseMat))
	return
}

//WriteNpyMatrix writes a dense matrix into an npy file.
func WriteNpyMatrix(fileName string, m *mat.Dense) {
	dst, err := os.Create(fileName)
	HandleError(err)
	defer func() { HandleError(dst.Close()) }()
	HandleError(npyio.Write(dst, m))
}
