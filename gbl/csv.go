package gbl

import (
	"os"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/mat"

	"github.com/eyebp/boosting/logger"
)

//ReadCSVMatrix loads a CSV file with a header row into a raw feature matrix
//and a target column. The target column is picked by name and excluded from
//the features; an empty targetColumn keeps every column as a feature and
//returns a nil target.
func ReadCSVMatrix(filename, targetColumn string) (features, target *mat.Dense, featureNames []string) {
	sourceFile, err := os.Open(filename)
	if err != nil {
		logger.Fatalf("cannot open the csv file %s: %v", filename, err)
	}
	defer func() { HandleError(sourceFile.Close()) }()

	frame := dataframe.ReadCSV(sourceFile)
	if frame.Err != nil {
		logger.Fatalf("cannot parse the csv file %s: %v", filename, frame.Err)
	}

	for _, name := range frame.Names() {
		if name != targetColumn {
			featureNames = append(featureNames, name)
		}
	}
	if targetColumn != "" && len(featureNames) == frame.Ncol() {
		logger.Fatalf("the csv file %s has no column %s", filename, targetColumn)
	}
	if len(featureNames) == 0 {
		logger.Fatalf("the csv file %s has no feature columns", filename)
	}
	h := frame.Nrow()
	if h == 0 {
		logger.Fatalf("the csv file %s has no rows", filename)
	}

	features = mat.NewDense(h, len(featureNames), nil)
	for j, name := range featureNames {
		currentColumn := frame.Col(name)
		for p := 0; p < h; p++ {
			features.Set(p, j, currentColumn.Elem(p).Float())
		}
	}

	if targetColumn != "" {
		target = mat.NewDense(h, 1, nil)
		targetSeries := frame.Col(targetColumn)
		for p := 0; p < h; p++ {
			target.Set(p, 0, targetSeries.Elem(p).Float())
		}
	}
	return
}
