package gbl

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

//HandleError panics on a non-nil error. It is used for operations that can
//only fail on a broken environment, like closing a file or encoding a model.
func HandleError(err error) {
	if err != nil {
		panic(err)
	}
}

//Height returns the number of rows of a dense matrix.
func Height(m *mat.Dense) int {
	h, _ := m.Dims()
	return h
}

//Sigmoid maps a raw score to a probability.
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

//Rmse computes the root mean squared error between targets and predictions.
func Rmse(target, prediction []float64) float64 {
	if len(target) != len(prediction) {
		panic(fmt.Sprintf("the target length %d is not equal to the prediction length %d", len(target), len(prediction)))
	}
	s := 0.0
	for p := range target {
		d := target[p] - prediction[p]
		s += d * d
	}
	return math.Sqrt(s / float64(len(target)))
}

//Logloss computes the negative mean log likelihood of binary targets given
//predictions. When applySigmoid is true the predictions are raw scores and
//are squashed first.
func Logloss(target, prediction []float64, applySigmoid bool) float64 {
	const eps = 1e-15

	if len(target) != len(prediction) {
		panic(fmt.Sprintf("the target length %d is not equal to the prediction length %d", len(target), len(prediction)))
	}
	s := 0.0
	for p := range target {
		prob := prediction[p]
		if applySigmoid {
			prob = Sigmoid(prob)
		}
		if prob < eps {
			prob = eps
		}
		if prob > 1-eps {
			prob = 1 - eps
		}
		if target[p] > 0.5 {
			s -= math.Log(prob)
		} else {
			s -= math.Log(1 - prob)
		}
	}
	return s / float64(len(target))
}
