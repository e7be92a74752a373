package scoring

import "fmt"

// Metric computes a score from aligned truth and prediction vectors. It is
// a pure function; the engine is metric-agnostic.
type Metric func(truth, pred []float64) float64

// Spec bundles a metric with its name and polarity. ToMaximize configures
// every ranking and best-of aggregation in the system.
type Spec struct {
	Name       string
	Fn         Metric
	ToMaximize bool
}

// Accuracy is the fraction of exactly matching predictions.
func Accuracy(truth, pred []float64) float64 {
	if len(truth) == 0 {
		return 0
	}
	correct := 0
	for i := range truth {
		if truth[i] == pred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(truth))
}

// MSE is the mean squared error.
func MSE(truth, pred []float64) float64 {
	if len(truth) == 0 {
		return 0
	}
	var sum float64
	for i := range truth {
		d := truth[i] - pred[i]
		sum += d * d
	}
	return sum / float64(len(truth))
}

// Lookup resolves a configured metric name to its Spec.
func Lookup(name string) (Spec, error) {
	switch name {
	case "accuracy":
		return Spec{Name: "Accuracy", Fn: Accuracy, ToMaximize: true}, nil
	case "mse":
		return Spec{Name: "MSE", Fn: MSE, ToMaximize: false}, nil
	default:
		return Spec{}, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
	}
}
