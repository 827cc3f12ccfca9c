package main

import (
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/eyebp/boosting/gbl"
	"github.com/eyebp/boosting/logger"
)

//CurvesConfig drives the learning curve export. Without a dataset the
//curves recorded during training are dumped as json; with one the ensemble
//is replayed tree by tree over that dataset and the per-prefix metric is
//written as npy.
type CurvesConfig struct {
	FilenameModel          string `mapstructure:"filename_model"`
	FilenameLearningCurves string `mapstructure:"filename_learning_curves"`
	FilenameFeatures       string `mapstructure:"filename_features"`
	FilenameTarget         string `mapstructure:"filename_target"`
	FilenameCSV            string `mapstructure:"filename_csv"`
	TargetColumn           string `mapstructure:"target_column"`
}

func curvesCmd() *cobra.Command {
	var srcConfig string
	cmd := &cobra.Command{
		Use:   "curves",
		Short: "Export learning curves of a model",
		Long:  `Dump the learning curves recorded during training, or recompute one against a dataset.`,
		Run: func(cmd *cobra.Command, args []string) {
			curves(srcConfig)
		},
	}
	cmd.Flags().StringVarP(&srcConfig, "config", "c", "curves_config.json", "path to the curves config")
	return cmd
}

func curves(srcConfig string) {
	var curvesConfig CurvesConfig
	loadConfig(srcConfig, &curvesConfig)

	model := gbl.LoadModel(curvesConfig.FilenameModel)

	if curvesConfig.FilenameFeatures == "" && curvesConfig.FilenameCSV == "" {
		model.DumpLearningCurves(curvesConfig.FilenameLearningCurves)
		logger.Infof("stored learning curves written to %s", curvesConfig.FilenameLearningCurves)
		return
	}

	features, target, _ := loadMatrices(
		curvesConfig.FilenameCSV, curvesConfig.TargetColumn,
		curvesConfig.FilenameFeatures, curvesConfig.FilenameTarget)
	if target == nil {
		logger.Fatalf("recomputing a learning curve needs a target")
	}
	featuresH, _ := features.Dims()
	if featuresH != gbl.Height(target) {
		logger.Panicf("the feature height %d is not equal to the target height %d", featuresH, gbl.Height(target))
	}

	curve := recomputeCurve(model, features, target)
	gbl.WriteNpyMatrix(curvesConfig.FilenameLearningCurves, curve)
	logger.Infof("recomputed learning curve written to %s", curvesConfig.FilenameLearningCurves)
}

//recomputeCurve replays the ensemble tree by tree over a dataset and
//reports the objective's metric after every prefix of trees.
func recomputeCurve(model gbl.Model, features, target *mat.Dense) *mat.Dense {
	h := gbl.Height(target)
	targets := mat.Col(nil, 0, target)

	scores := make([]float64, h)
	for p := range scores {
		scores[p] = model.F0
	}

	_, logistic := model.Fun().(gbl.LogisticFun)

	curve := mat.NewDense(len(model.Trees), 1, nil)
	for treeInd, currentTree := range model.Trees {
		for p := 0; p < h; p++ {
			scores[p] += model.Shrinkage * currentTree.PredictRaw(features, p)
		}
		if logistic {
			curve.Set(treeInd, 0, gbl.Logloss(targets, scores, true))
		} else {
			curve.Set(treeInd, 0, gbl.Rmse(targets, scores))
		}
	}
	return curve
}
