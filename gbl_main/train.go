package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/eyebp/boosting/gbl"
	"github.com/eyebp/boosting/logger"
)

//EvalConfig names one held out dataset reported on after every stage.
type EvalConfig struct {
	Description      string `mapstructure:"description"`
	FilenameFeatures string `mapstructure:"filename_features"`
	FilenameTarget   string `mapstructure:"filename_target"`
	FilenameCSV      string `mapstructure:"filename_csv"`
}

//TrainConfig drives one training run.
type TrainConfig struct {
	FilenameTrainFeatures string       `mapstructure:"filename_train_features"`
	FilenameTrainTarget   string       `mapstructure:"filename_train_target"`
	FilenameTrainCSV      string       `mapstructure:"filename_train_csv"`
	TargetColumn          string       `mapstructure:"target_column"`
	Evals                 []EvalConfig `mapstructure:"evals"`
	FilenameModel         string       `mapstructure:"filename_model"`
	NumStages             int          `mapstructure:"num_stages"`
	NumSplits             int          `mapstructure:"num_splits"`
	Shrinkage             float64      `mapstructure:"shrinkage"`
	ExampleSamplingRate   float64      `mapstructure:"example_sampling_rate"`
	FeatureSamplingRate   float64      `mapstructure:"feature_sampling_rate"`
	MinLeafExamples       int          `mapstructure:"min_leaf_examples"`
	MaxBins               int          `mapstructure:"max_bins"`
	Objective             string       `mapstructure:"objective"`
	ThreadsNum            int          `mapstructure:"threads_num"`
	Seed                  int64        `mapstructure:"seed"`
}

func trainCmd() *cobra.Command {
	var srcConfig string
	var memprofile string
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a boosted tree model",
		Long:  `Train a gradient boosted tree model according to a config file and save it as json.`,
		Run: func(cmd *cobra.Command, args []string) {
			train(srcConfig)
			if memprofile != "" {
				dumpMemProfile(memprofile)
			}
		},
	}
	cmd.Flags().StringVarP(&srcConfig, "config", "c", "train_config.json", "path to the training config")
	cmd.Flags().StringVar(&memprofile, "memprofile", "", "write a memory profile to `file`")
	return cmd
}

func train(srcConfig string) {
	var trainConfig TrainConfig
	loadConfig(srcConfig, &trainConfig)

	if trainConfig.MinLeafExamples > 0 {
		gbl.MinLeafExamples = trainConfig.MinLeafExamples
	}
	maxBins := trainConfig.MaxBins
	if maxBins == 0 {
		maxBins = gbl.MaxNarrowBins
	}
	if trainConfig.ExampleSamplingRate == 0 {
		trainConfig.ExampleSamplingRate = 1.0
	}
	if trainConfig.FeatureSamplingRate == 0 {
		trainConfig.FeatureSamplingRate = 1.0
	}

	logger.Infof("load train data")
	raw, target, featureNames := loadMatrices(
		trainConfig.FilenameTrainCSV, trainConfig.TargetColumn,
		trainConfig.FilenameTrainFeatures, trainConfig.FilenameTrainTarget)
	if target == nil {
		logger.Fatalf("the training config names no target")
	}
	ds := gbl.NewDataSet(raw, target, maxBins)

	var evals []gbl.EvalSet
	for _, evalConfig := range trainConfig.Evals {
		logger.Infof("load eval data %s", evalConfig.Description)
		evalFeatures, evalTarget, _ := loadMatrices(
			evalConfig.FilenameCSV, trainConfig.TargetColumn,
			evalConfig.FilenameFeatures, evalConfig.FilenameTarget)
		if evalTarget == nil {
			logger.Fatalf("the eval set %s names no target", evalConfig.Description)
		}
		evals = append(evals, gbl.EvalSet{
			Description: evalConfig.Description,
			Features:    evalFeatures,
			Target:      evalTarget,
		})
	}

	model := gbl.NewGbm(gbl.GbmParams{
		Ds:                  ds,
		NumStages:           trainConfig.NumStages,
		NumSplits:           trainConfig.NumSplits,
		Shrinkage:           trainConfig.Shrinkage,
		ExampleSamplingRate: trainConfig.ExampleSamplingRate,
		FeatureSamplingRate: trainConfig.FeatureSamplingRate,
		Fun:                 gbl.FunByName(trainConfig.Objective),
		ThreadsNum:          trainConfig.ThreadsNum,
		Seed:                trainConfig.Seed,
		Evals:               evals,
	})

	printImportances(model.Importances, featureNames)
	model.Save(trainConfig.FilenameModel)
	logger.Infof("model saved to %s", trainConfig.FilenameModel)
}

//printImportances renders the accumulated gain of every feature, strongest
//first. Features loaded from npy files have no names and show up as f_q.
func printImportances(importances []float64, featureNames []string) {
	order := make([]int, len(importances))
	for q := range order {
		order[q] = q
	}
	sort.Slice(order, func(i, j int) bool { return importances[order[i]] > importances[order[j]] })

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("FEATURE IMPORTANCES")
	t.AppendHeader(table.Row{"rank", "feature", "importance"})
	for rank, q := range order {
		name := fmt.Sprintf("f_%d", q)
		if q < len(featureNames) {
			name = featureNames[q]
		}
		t.AppendRow(table.Row{rank + 1, name, fmt.Sprintf("%.4f", importances[q])})
	}
	t.Render()
}

func dumpMemProfile(memprofile string) {
	f, err := os.Create(memprofile)
	gbl.HandleError(err)
	defer func() { gbl.HandleError(f.Close()) }()

	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		logger.Fatalf("could not write memory profile: %v", err)
	}
}
