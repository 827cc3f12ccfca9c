package main

import (
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/eyebp/boosting/gbl"
	"github.com/eyebp/boosting/logger"
)

//PredictConfig drives one inference run. A zero TreesNumber uses the whole
//ensemble; OutputSpace applies the objective transform to the raw scores,
//which for the logistic objective turns them into probabilities.
type PredictConfig struct {
	FilenameFeatures   string `mapstructure:"filename_features"`
	FilenameCSV        string `mapstructure:"filename_csv"`
	FilenameModel      string `mapstructure:"filename_model"`
	FilenamePrediction string `mapstructure:"filename_prediction"`
	TreesNumber        int    `mapstructure:"trees_number"`
	OutputSpace        bool   `mapstructure:"output_space"`
}

func predictCmd() *cobra.Command {
	var srcConfig string
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Apply a trained model to new data",
		Long:  `Load a trained model, run it over a feature matrix and write the predictions as npy.`,
		Run: func(cmd *cobra.Command, args []string) {
			predict(srcConfig)
		},
	}
	cmd.Flags().StringVarP(&srcConfig, "config", "c", "predict_config.json", "path to the prediction config")
	return cmd
}

func predict(srcConfig string) {
	var predictConfig PredictConfig
	loadConfig(srcConfig, &predictConfig)

	features, _, _ := loadMatrices(predictConfig.FilenameCSV, "", predictConfig.FilenameFeatures, "")
	model := gbl.LoadModel(predictConfig.FilenameModel)

	var optionalTreesNumber *int
	if predictConfig.TreesNumber != 0 {
		optionalTreesNumber = &predictConfig.TreesNumber
	}

	var prediction *mat.Dense
	if predictConfig.OutputSpace {
		prediction = model.PredictOutput(features)
	} else {
		prediction = model.PredictValue(features, optionalTreesNumber)
	}

	gbl.WriteNpyMatrix(predictConfig.FilenamePrediction, prediction)
	logger.Infof("%d predictions written to %s", gbl.Height(prediction), predictConfig.FilenamePrediction)
}
