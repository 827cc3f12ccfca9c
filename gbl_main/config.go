package main

import (
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/mat"

	"github.com/eyebp/boosting/gbl"
	"github.com/eyebp/boosting/logger"
)

//loadConfig reads one config file into its struct. The format is whatever
//viper recognizes from the file extension, so json and yml both work.
func loadConfig(srcConfig string, out interface{}) {
	v := viper.New()
	v.SetConfigFile(srcConfig)
	if err := v.ReadInConfig(); err != nil {
		logger.Fatalf("read config %s: %v", srcConfig, err)
	}
	if err := v.Unmarshal(out); err != nil {
		logger.Fatalf("decode config %s: %v", srcConfig, err)
	}
}

//loadMatrices loads a feature matrix and an optional target column. A named
//csv file wins over npy files; without a csv the features come from one npy
//file and the target, when requested, from another. Column names are only
//known for csv input.
func loadMatrices(filenameCSV, targetColumn, filenameFeatures, filenameTarget string) (features, target *mat.Dense, featureNames []string) {
	if filenameCSV != "" {
		return gbl.ReadCSVMatrix(filenameCSV, targetColumn)
	}
	features = gbl.ReadNpyMatrix(filenameFeatures)
	if filenameTarget != "" {
		target = gbl.ReadNpyMatrix(filenameTarget)
	}
	return features, target, nil
}
