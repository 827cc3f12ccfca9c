package gbl

import (
	"path"
	"sort"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNewDataSetEncodesMidpointTransitions(t *testing.T) {
	raw := mat.NewDense(6, 1, []float64{5, 15, 25, 5, 25, 15})
	target := mat.NewDense(6, 1, []float64{1, 2, 3, 4, 5, 6})

	ds := NewDataSet(raw, target, 256)

	feature := &ds.Features[0]
	if feature.Encoding != EncodingNarrow {
		t.Fatalf("encoding = %d, want narrow", feature.Encoding)
	}
	if len(feature.Transitions) != 2 || feature.Transitions[0] != 10 || feature.Transitions[1] != 20 {
		t.Fatalf("transitions = %v, want [10 20]", feature.Transitions)
	}
	if feature.NumBins() != 3 {
		t.Fatalf("bins = %d, want 3", feature.NumBins())
	}

	wantCodes := []int{0, 1, 2, 0, 2, 1}
	for p, want := range wantCodes {
		if got := ds.Code(0, p); got != want {
			t.Fatalf("code of row %d = %d, want %d", p, got, want)
		}
	}
	for p := 0; p < 6; p++ {
		if !almostEqual(ds.Targets[p], target.At(p, 0), 1e-12) {
			t.Fatalf("target of row %d = %g, want %g", p, ds.Targets[p], target.At(p, 0))
		}
	}
}

func TestNewDataSetConstantColumnBecomesEmpty(t *testing.T) {
	raw := mat.NewDense(4, 2, []float64{
		1, 7,
		2, 7,
		3, 7,
		4, 7,
	})
	target := mat.NewDense(4, 1, []float64{0, 0, 1, 1})

	ds := NewDataSet(raw, target, 256)

	if ds.Features[0].Encoding != EncodingNarrow {
		t.Fatalf("a spread column must encode narrow, got %d", ds.Features[0].Encoding)
	}
	if ds.Features[1].Encoding != EncodingEmpty {
		t.Fatalf("a constant column must encode empty, got %d", ds.Features[1].Encoding)
	}
}

func TestNewDataSetWideColumn(t *testing.T) {
	h := 300
	column := make([]float64, h)
	for p := range column {
		column[p] = float64(p)
	}
	raw := mat.NewDense(h, 1, column)
	target := mat.NewDense(h, 1, make([]float64, h))

	ds := NewDataSet(raw, target, 1024)

	feature := &ds.Features[0]
	if feature.Encoding != EncodingWide {
		t.Fatalf("300 bins do not fit the narrow encoding, got encoding %d", feature.Encoding)
	}
	if feature.NumBins() != h {
		t.Fatalf("bins = %d, want %d", feature.NumBins(), h)
	}
	for _, p := range []int{0, 7, 255, 299} {
		if got := ds.Code(0, p); got != p {
			t.Fatalf("code of row %d = %d, want %d", p, got, p)
		}
	}
}

func TestNewDataSetThinsTransitions(t *testing.T) {
	h := 10
	column := make([]float64, h)
	for p := range column {
		column[p] = float64(p)
	}
	raw := mat.NewDense(h, 1, column)
	target := mat.NewDense(h, 1, make([]float64, h))

	ds := NewDataSet(raw, target, 4)

	feature := &ds.Features[0]
	if len(feature.Transitions) != 3 {
		t.Fatalf("thinned transitions = %d, want 3", len(feature.Transitions))
	}
	if !sort.Float64sAreSorted(feature.Transitions) {
		t.Fatalf("thinned transitions are not ordered: %v", feature.Transitions)
	}
	for p := 1; p < len(feature.Transitions); p++ {
		if feature.Transitions[p] == feature.Transitions[p-1] {
			t.Fatalf("thinned transitions repeat: %v", feature.Transitions)
		}
	}
	for p := 0; p < h; p++ {
		if got := ds.Code(0, p); got < 0 || got >= feature.NumBins() {
			t.Fatalf("code of row %d = %d, outside [0, %d)", p, got, feature.NumBins())
		}
	}
}

func TestCodesAgreeWithTransitions(t *testing.T) {
	raw := mat.NewDense(8, 1, []float64{-3, 0.5, 2, 2, 9, -3, 4, 7})
	target := mat.NewDense(8, 1, make([]float64, 8))

	ds := NewDataSet(raw, target, 256)
	feature := &ds.Features[0]

	for p := 0; p < 8; p++ {
		value := raw.At(p, 0)
		code := ds.Code(0, p)
		if code < len(feature.Transitions) && value > feature.Transitions[code] {
			t.Fatalf("row %d: value %g above its own boundary %g", p, value, feature.Transitions[code])
		}
		if code > 0 && value <= feature.Transitions[code-1] {
			t.Fatalf("row %d: value %g below the previous boundary %g", p, value, feature.Transitions[code-1])
		}
	}
}

func TestPartitionSubsetCoversAndStaysDisjoint(t *testing.T) {
	codes := []uint8{0, 2, 1, 0, 1, 2, 0, 2}
	ds := &DataSet{
		NumExamples: len(codes),
		Features:    []Feature{NewNarrowFeature([]float64{10, 20}, codes)},
	}
	subset := []int{0, 1, 2, 3, 4, 5, 6, 7}

	left, right := ds.PartitionSubset(subset, 0, 1)

	if len(left)+len(right) != len(subset) {
		t.Fatalf("partition dropped rows: %d + %d != %d", len(left), len(right), len(subset))
	}
	seen := make(map[int]bool)
	for _, row := range append(append([]int{}, left...), right...) {
		if seen[row] {
			t.Fatalf("row %d landed on both sides", row)
		}
		seen[row] = true
	}
	for _, row := range left {
		if int(codes[row]) > 1 {
			t.Fatalf("row %d with code %d does not belong left of boundary 1", row, codes[row])
		}
	}
	for _, row := range right {
		if int(codes[row]) <= 1 {
			t.Fatalf("row %d with code %d does not belong right of boundary 1", row, codes[row])
		}
	}
}

func TestPartitionSubsetRespectsSubset(t *testing.T) {
	codes := []uint8{0, 1, 0, 1, 0, 1}
	ds := &DataSet{
		NumExamples: len(codes),
		Features:    []Feature{NewNarrowFeature([]float64{5}, codes)},
	}

	left, right := ds.PartitionSubset([]int{1, 2, 5}, 0, 0)

	if len(left) != 1 || left[0] != 2 {
		t.Fatalf("left = %v, want [2]", left)
	}
	if len(right) != 2 || right[0] != 1 || right[1] != 5 {
		t.Fatalf("right = %v, want [1 5]", right)
	}
}

func TestNpyMatrixRoundTrip(t *testing.T) {
	filename := path.Join(t.TempDir(), "matrix.npy")
	original := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6.5})

	WriteNpyMatrix(filename, original)
	restored := ReadNpyMatrix(filename)

	if !mat.Equal(original, restored) {
		t.Fatalf("round trip changed the matrix:\n%v\nvs\n%v", mat.Formatted(original), mat.Formatted(restored))
	}
}
