package gbl

import (
	"encoding/json"
	"os"
	"path"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"
)

//createStepRegression builds a noiseless regression task: the target is a
//step function of feature 0 with four levels, so a tree with three splits
//can fit each stage's residual exactly.
func createStepRegression(h int) (raw, target *mat.Dense) {
	column := make([]float64, h)
	targetColumn := make([]float64, h)
	for p := 0; p < h; p++ {
		level := p % 4
		column[p] = float64(level)
		targetColumn[p] = float64(10 * level)
	}
	return mat.NewDense(h, 1, column), mat.NewDense(h, 1, targetColumn)
}

func TestNewGbmDrivesTrainRmseDown(t *testing.T) {
	defer func(old int) { MinLeafExamples = old }(MinLeafExamples)
	MinLeafExamples = 50

	raw, target := createStepRegression(400)
	ds := NewDataSet(raw, target, 256)

	model := NewGbm(GbmParams{
		Ds:                  ds,
		NumStages:           8,
		NumSplits:           3,
		Shrinkage:           0.5,
		ExampleSamplingRate: 1.0,
		FeatureSamplingRate: 1.0,
		Fun:                 LeastSquaresFun{},
		ThreadsNum:          1,
		Seed:                21,
		Evals:               []EvalSet{{Description: "holdout", Features: raw, Target: target}},
	})

	if len(model.Trees) != 8 {
		t.Fatalf("expected 8 trees, got %d", len(model.Trees))
	}
	if len(model.Curves) != 8 {
		t.Fatalf("expected 8 learning curve rows, got %d", len(model.Curves))
	}
	if len(model.CurveTitles) != 2 || model.CurveTitles[0] != "train" || model.CurveTitles[1] != "holdout" {
		t.Fatalf("curve titles = %v, want [train holdout]", model.CurveTitles)
	}

	first := model.Curves[0][0]
	last := model.Curves[len(model.Curves)-1][0]
	if last >= first {
		t.Fatalf("train rmse did not drop: first %g, last %g", first, last)
	}
	if last > 0.1 {
		t.Fatalf("train rmse after 8 stages = %g, want below 0.1", last)
	}

	// the holdout is the training data read back through raw values, so the
	// two columns must agree
	for stage, row := range model.Curves {
		if !almostEqual(row[0], row[1], 1e-9) {
			t.Fatalf("stage %d: train %g and holdout %g diverge", stage, row[0], row[1])
		}
	}

	if model.Importances[0] <= 0 {
		t.Fatalf("the only feature carries every split, importance = %g", model.Importances[0])
	}

	prediction := model.PredictValue(raw, nil)
	if rmse := Rmse(ds.Targets, mat.Col(nil, 0, prediction)); rmse > 0.1 {
		t.Fatalf("full model rmse = %g, want below 0.1", rmse)
	}
}

func TestNewGbmDefaultsToLeastSquares(t *testing.T) {
	defer func(old int) { MinLeafExamples = old }(MinLeafExamples)
	MinLeafExamples = 50

	raw, target := createStepRegression(400)
	ds := NewDataSet(raw, target, 256)

	model := NewGbm(GbmParams{
		Ds:                  ds,
		NumStages:           1,
		NumSplits:           1,
		Shrinkage:           0.5,
		ExampleSamplingRate: 1.0,
		FeatureSamplingRate: 1.0,
		ThreadsNum:          1,
		Seed:                1,
	})

	if model.Objective != (LeastSquaresFun{}).Name() {
		t.Fatalf("objective = %q, want the least squares default", model.Objective)
	}
	if _, ok := model.Fun().(LeastSquaresFun); !ok {
		t.Fatalf("the model did not map its objective name back")
	}
}

func TestNewGbmRejectsBadParams(t *testing.T) {
	raw, target := createStepRegression(400)
	ds := NewDataSet(raw, target, 256)

	assertPanics := func(name string, params GbmParams) {
		defer func() {
			if recover() == nil {
				t.Fatalf("%s must abort", name)
			}
		}()
		NewGbm(params)
	}

	assertPanics("zero stages", GbmParams{Ds: ds, NumStages: 0, Shrinkage: 0.5})
	assertPanics("zero shrinkage", GbmParams{Ds: ds, NumStages: 1, Shrinkage: 0})
}

func TestModelSaveLoadRoundTrip(t *testing.T) {
	defer func(old int) { MinLeafExamples = old }(MinLeafExamples)
	MinLeafExamples = 50

	raw, target := createStepRegression(400)
	ds := NewDataSet(raw, target, 256)

	model := NewGbm(GbmParams{
		Ds:                  ds,
		NumStages:           3,
		NumSplits:           3,
		Shrinkage:           0.5,
		ExampleSamplingRate: 1.0,
		FeatureSamplingRate: 1.0,
		Fun:                 LeastSquaresFun{},
		ThreadsNum:          1,
		Seed:                21,
	})

	filename := path.Join(t.TempDir(), "model.json")
	model.Save(filename)
	restored := LoadModel(filename)

	if restored.F0 != model.F0 || restored.Shrinkage != model.Shrinkage || restored.Objective != model.Objective {
		t.Fatalf("restored header (%g, %g, %q) differs from (%g, %g, %q)",
			restored.F0, restored.Shrinkage, restored.Objective, model.F0, model.Shrinkage, model.Objective)
	}
	if !reflect.DeepEqual(restored.Trees, model.Trees) {
		t.Fatalf("restored trees differ from the saved ones")
	}
	if !reflect.DeepEqual(restored.Importances, model.Importances) {
		t.Fatalf("restored importances %v differ from %v", restored.Importances, model.Importances)
	}

	original := model.PredictValue(raw, nil)
	reloaded := restored.PredictValue(raw, nil)
	if !mat.Equal(original, reloaded) {
		t.Fatalf("the restored model predicts differently")
	}
}

func TestModelPredictValueTreesNumber(t *testing.T) {
	defer func(old int) { MinLeafExamples = old }(MinLeafExamples)
	MinLeafExamples = 50

	raw, target := createStepRegression(400)
	ds := NewDataSet(raw, target, 256)

	model := NewGbm(GbmParams{
		Ds:                  ds,
		NumStages:           4,
		NumSplits:           3,
		Shrinkage:           0.5,
		ExampleSamplingRate: 1.0,
		FeatureSamplingRate: 1.0,
		Fun:                 LeastSquaresFun{},
		ThreadsNum:          1,
		Seed:                21,
	})

	zero := 0
	constant := model.PredictValue(raw, &zero)
	for p := 0; p < Height(constant); p++ {
		if got := constant.At(p, 0); got != model.F0 {
			t.Fatalf("with no trees row %d predicts %g, want the init score %g", p, got, model.F0)
		}
	}

	one := 1
	stump := model.PredictValue(raw, &one)
	want := model.F0 + model.Shrinkage*model.Trees[0].PredictRaw(raw, 0)
	if got := stump.At(0, 0); !almostEqual(got, want, 1e-12) {
		t.Fatalf("with one tree row 0 predicts %g, want %g", got, want)
	}

	full := model.PredictValue(raw, nil)
	all := len(model.Trees)
	explicit := model.PredictValue(raw, &all)
	if !mat.Equal(full, explicit) {
		t.Fatalf("nil and the full tree count must predict the same")
	}
}

func TestNewGbmLogisticSeparates(t *testing.T) {
	defer func(old int) { MinLeafExamples = old }(MinLeafExamples)
	MinLeafExamples = 50

	h := 400
	column := make([]float64, h)
	targetColumn := make([]float64, h)
	for p := 0; p < h; p++ {
		level := p % 4
		column[p] = float64(level)
		if level >= 2 {
			targetColumn[p] = 1
		}
	}
	raw := mat.NewDense(h, 1, column)
	target := mat.NewDense(h, 1, targetColumn)
	ds := NewDataSet(raw, target, 256)

	model := NewGbm(GbmParams{
		Ds:                  ds,
		NumStages:           5,
		NumSplits:           1,
		Shrinkage:           0.5,
		ExampleSamplingRate: 1.0,
		FeatureSamplingRate: 1.0,
		Fun:                 LogisticFun{},
		ThreadsNum:          1,
		Seed:                9,
	})

	if model.Objective != "logistic" {
		t.Fatalf("objective = %q, want logistic", model.Objective)
	}

	last := model.Curves[len(model.Curves)-1][0]
	if last > 0.3 {
		t.Fatalf("logloss after 5 stages = %g, want below 0.3", last)
	}

	probabilities := model.PredictOutput(raw)
	for p := 0; p < h; p++ {
		prob := probabilities.At(p, 0)
		if prob <= 0 || prob >= 1 {
			t.Fatalf("row %d: probability %g outside (0, 1)", p, prob)
		}
	}
	if negative, positive := probabilities.At(0, 0), probabilities.At(2, 0); negative >= positive {
		t.Fatalf("a negative row scored %g, a positive one %g", negative, positive)
	}
}

func TestDumpLearningCurves(t *testing.T) {
	defer func(old int) { MinLeafExamples = old }(MinLeafExamples)
	MinLeafExamples = 50

	raw, target := createStepRegression(400)
	ds := NewDataSet(raw, target, 256)

	model := NewGbm(GbmParams{
		Ds:                  ds,
		NumStages:           3,
		NumSplits:           3,
		Shrinkage:           0.5,
		ExampleSamplingRate: 1.0,
		FeatureSamplingRate: 1.0,
		Fun:                 LeastSquaresFun{},
		ThreadsNum:          1,
		Seed:                21,
		Evals:               []EvalSet{{Description: "holdout", Features: raw, Target: target}},
	})

	filename := path.Join(t.TempDir(), "curves.json")
	model.DumpLearningCurves(filename)

	rawDump, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("read the dump back: %v", err)
	}
	var dump LearningCurvesDump
	if err := json.Unmarshal(rawDump, &dump); err != nil {
		t.Fatalf("decode the dump: %v", err)
	}

	if len(dump.Titles) != 2 || dump.Titles[0] != "train" || dump.Titles[1] != "holdout" {
		t.Fatalf("dumped titles = %v, want [train holdout]", dump.Titles)
	}
	if len(dump.Values) != 3 {
		t.Fatalf("dumped %d rows, want 3", len(dump.Values))
	}
	for stage, row := range dump.Values {
		if len(row) != 2 {
			t.Fatalf("stage %d dumped %d columns, want 2", stage, len(row))
		}
	}
}
