package gbl

import "math"

//GbmFun is the objective of a boosting run. The tree grower only ever calls
//LeafValue; the other methods drive the outer loop. Implementations are
//stateless.
type GbmFun interface {
	//Name identifies the objective in saved models.
	Name() string
	//InitScore is the constant model the first stage starts from.
	InitScore(targets []float64) float64
	//Residual is the pseudo residual of one example at its current score.
	Residual(target, score float64) float64
	//LeafValue is the value a node predicts from the rows routed to it.
	LeafValue(subset []int, targets []float64) float64
	//Transform maps an accumulated raw score into the output space.
	Transform(score float64) float64
}

//LeastSquaresFun is the squared error objective. Residuals are plain
//differences and a leaf predicts the mean residual of its rows.
type LeastSquaresFun struct{}

func (LeastSquaresFun) Name() string { return "least_squares" }

func (LeastSquaresFun) InitScore(targets []float64) float64 {
	s := 0.0
	for _, y := range targets {
		s += y
	}
	return s / float64(len(targets))
}

func (LeastSquaresFun) Residual(target, score float64) float64 {
	return target - score
}

func (LeastSquaresFun) LeafValue(subset []int, targets []float64) float64 {
	s := 0.0
	for _, row := range subset {
		s += targets[row]
	}
	return s / float64(len(subset))
}

func (LeastSquaresFun) Transform(score float64) float64 { return score }

//LogisticFun is the binary log loss objective for targets in {0, 1}. Scores
//are raw logits; the residual is target minus predicted probability and a
//leaf takes one Newton step.
type LogisticFun struct{}

func (LogisticFun) Name() string { return "logistic" }

func (LogisticFun) InitScore(targets []float64) float64 {
	const eps = 1e-12

	mu := 0.0
	for _, y := range targets {
		mu += y
	}
	mu /= float64(len(targets))
	if mu < eps {
		mu = eps
	}
	if mu > 1-eps {
		mu = 1 - eps
	}
	return math.Log(mu / (1 - mu))
}

func (LogisticFun) Residual(target, score float64) float64 {
	return target - Sigmoid(score)
}

//LeafValue computes sum(r) / sum(|r| * (1 - |r|)) over the subset, the
//Newton step for log loss. A vanishing denominator means the rows are
//already fit perfectly, so the step is zero.
func (LogisticFun) LeafValue(subset []int, targets []float64) float64 {
	const eps = 1e-12

	num, den := 0.0, 0.0
	for _, row := range subset {
		r := targets[row]
		num += r
		den += math.Abs(r) * (1 - math.Abs(r))
	}
	if den < eps {
		return 0.0
	}
	return num / den
}

func (LogisticFun) Transform(score float64) float64 { return Sigmoid(score) }

//FunByName maps a saved objective name back to its implementation.
func FunByName(name string) GbmFun {
	if name == (LogisticFun{}).Name() {
		return LogisticFun{}
	}
	return LeastSquaresFun{}
}
