package gbl

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path"

	"github.com/goccy/go-graphviz"
	"gonum.org/v1/gonum/mat"

	"github.com/eyebp/boosting/logger"
)

//EvalSet is a held out dataset reported on after every stage.
type EvalSet struct {
	Description string
	Features    *mat.Dense
	Target      *mat.Dense
}

//GbmParams collect the arguments required to train a model.
type GbmParams struct {
	Ds                  *DataSet
	NumStages           int
	NumSplits           int
	Shrinkage           float64
	ExampleSamplingRate float64
	FeatureSamplingRate float64
	Fun                 GbmFun
	ThreadsNum          int
	Seed                int64
	Evals               []EvalSet
}

//Model is the trained ensemble: the initial score, the shrinkage every tree
//contribution is scaled by, the trees themselves and the gain based feature
//importances accumulated over the whole run. Curves holds one row per stage,
//first the training metric, then one column per eval set.
type Model struct {
	F0          float64
	Shrinkage   float64
	Objective   string
	Trees       []Tree
	Importances []float64
	CurveTitles []string
	Curves      [][]float64
}

//NewGbm trains a boosted model. Each stage recomputes the pseudo residuals
//from the current scores, grows one tree on them and adds the shrunk tree
//predictions back into the scores. A fixed Seed fixes the whole run.
func NewGbm(params GbmParams) (model *Model) {
	ds := params.Ds
	fun := params.Fun
	if fun == nil {
		fun = LeastSquaresFun{}
	}
	if params.NumStages < 1 {
		logger.Panicf("cannot train %d stages", params.NumStages)
	}
	if params.Shrinkage <= 0 {
		logger.Panicf("the shrinkage must be positive, got %v", params.Shrinkage)
	}

	rng := rand.New(rand.NewSource(params.Seed))

	model = &Model{
		F0:          fun.InitScore(ds.Targets),
		Shrinkage:   params.Shrinkage,
		Objective:   fun.Name(),
		Importances: make([]float64, ds.NumFeatures()),
		CurveTitles: []string{"train"},
	}
	for _, currentEval := range params.Evals {
		model.CurveTitles = append(model.CurveTitles, currentEval.Description)
	}

	scores := make([]float64, ds.NumExamples)
	residuals := make([]float64, ds.NumExamples)
	for p := range scores {
		scores[p] = model.F0
	}

	evalScores := make([][]float64, len(params.Evals))
	evalTargets := make([][]float64, len(params.Evals))
	for e, currentEval := range params.Evals {
		h := Height(currentEval.Target)
		evalScores[e] = make([]float64, h)
		evalTargets[e] = make([]float64, h)
		for p := 0; p < h; p++ {
			evalScores[e][p] = model.F0
			evalTargets[e][p] = currentEval.Target.At(p, 0)
		}
	}

	metricName := "RMSE"
	if _, ok := fun.(LogisticFun); ok {
		metricName = "Logloss"
	}

	for stage := 0; stage < params.NumStages; stage++ {
		logger.Infof("tree number %d", stage+1)
		for p := range residuals {
			residuals[p] = fun.Residual(ds.Targets[p], scores[p])
		}

		regressor := NewTreeRegressor(ds, residuals, fun, params.ThreadsNum)
		tree := regressor.GetTree(params.NumSplits, params.ExampleSamplingRate, params.FeatureSamplingRate, rng, model.Importances)
		model.Trees = append(model.Trees, *tree)

		for p := range scores {
			scores[p] += params.Shrinkage * tree.PredictCode(ds, p)
		}

		curveRow := []float64{metricValue(fun, ds.Targets, scores)}
		logger.Infof("%s for train = %v", metricName, curveRow[0])
		for e, currentEval := range params.Evals {
			for p := range evalScores[e] {
				evalScores[e][p] += params.Shrinkage * tree.PredictRaw(currentEval.Features, p)
			}
			currentValue := metricValue(fun, evalTargets[e], evalScores[e])
			logger.Infof("%s for %s = %v", metricName, currentEval.Description, currentValue)
			curveRow = append(curveRow, currentValue)
		}
		model.Curves = append(model.Curves, curveRow)
	}
	return
}

//metricValue reports the learning curve metric of the objective: logloss in
//probability space for the logistic objective, RMSE in score space
//otherwise.
func metricValue(fun GbmFun, targets, scores []float64) float64 {
	if _, ok := fun.(LogisticFun); ok {
		return Logloss(targets, scores, true)
	}
	return Rmse(targets, scores)
}

//Fun returns the objective the model was trained with.
func (model Model) Fun() GbmFun {
	return FunByName(model.Objective)
}

//PredictValue infers raw scores for a raw feature matrix. A nil treesNumber
//uses every tree, otherwise only the first *treesNumber trees contribute.
func (model Model) PredictValue(features *mat.Dense, treesNumber *int) (prediction *mat.Dense) {
	h, _ := features.Dims()
	prediction = mat.NewDense(h, 1, nil)

	n := len(model.Trees)
	if treesNumber != nil {
		n = *treesNumber
	}

	for p := 0; p < h; p++ {
		score := model.F0
		for treeInd := 0; treeInd < n; treeInd++ {
			score += model.Shrinkage * model.Trees[treeInd].PredictRaw(features, p)
		}
		prediction.Set(p, 0, score)
	}
	return
}

//PredictOutput infers predictions in the output space of the objective, so
//probabilities for the logistic objective and plain scores otherwise.
func (model Model) PredictOutput(features *mat.Dense) (prediction *mat.Dense) {
	fun := model.Fun()
	prediction = model.PredictValue(features, nil)
	h := Height(prediction)
	for p := 0; p < h; p++ {
		prediction.Set(p, 0, fun.Transform(prediction.At(p, 0)))
	}
	return
}

func (model Model) Save(filename string) {
	dest, err := os.Create(filename)
	if err != nil {
		logger.Errorf("can't open file %s to write", filename)
	}
	HandleError(err)
	defer func() { HandleError(dest.Close()) }()

	modelByteRepr, err := json.MarshalIndent(model, "", "  ")
	HandleError(err)

	_, err = dest.Write(modelByteRepr)
	HandleError(err)
}

func LoadModel(filename string) (model Model) {
	source, err := os.Open(filename)
	HandleError(err)
	defer func() { HandleError(source.Close()) }()

	decoder := json.NewDecoder(source)
	HandleError(decoder.Decode(&model))
	return
}

func (model Model) RenderTrees(dumpPrefix, figureType, picturesDirectory string) {
	graphvizType := map[string]graphviz.Format{
		"png": graphviz.PNG,
		"svg": graphviz.SVG,
		"jpg": graphviz.JPG,
	}[figureType]

	for graphInd, currentTree := range model.Trees {
		filename := fmt.Sprintf("%s_%05d.%s", dumpPrefix, graphInd, figureType)
		graphViz, graph := currentTree.DrawGraph()
		HandleError(graphViz.RenderFilename(graph, graphvizType, path.Join(picturesDirectory, filename)))
	}
}

type LearningCurvesDump struct {
	Titles []string
	Values [][]float64
}

func (model Model) DumpLearningCurves(filenameLearningCurves string) {
	destination, err := os.Create(filenameLearningCurves)
	HandleError(err)
	defer func() { HandleError(destination.Close()) }()

	learningCurvesDump := LearningCurvesDump{Titles: model.CurveTitles, Values: model.Curves}

	bytesResult, err := json.MarshalIndent(learningCurvesDump, "", "  ")
	HandleError(err)
	_, err = destination.Write(bytesResult)
	HandleError(err)
}
