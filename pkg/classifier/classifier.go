// Package classifier identifies plant diseases from leaf photos. The model runs
// behind a KServe v2 compatible inference server; this package owns labels,
// preprocessing and post-processing.
package classifier

import (
	"context"
	"fmt"
	"math"

	"github.com/kritlunkad/krishi-drishti-backend/pkg/apperrors"
)

type Prediction struct {
	Label      string  `json:"disease"`
	Confidence float64 `json:"confidence"`
}

type Classifier interface {
	Classify(ctx context.Context, image []byte) (Prediction, error)
	// Ready reports whether the model can serve requests.
	Ready(ctx context.Context) error
	Close() error
}

// Unavailable is installed when the model could not be loaded at startup.
// Every call fails with ErrModelUnavailable; the rest of the API stays up.
func Unavailable(cause error) Classifier { return unavailable{cause: cause} }

type unavailable struct{ cause error }

func (u unavailable) Classify(context.Context, []byte) (Prediction, error) {
	return Prediction{}, fmt.Errorf("%w: %v", apperrors.ErrModelUnavailable, u.cause)
}

func (u unavailable) Ready(context.Context) error {
	return fmt.Errorf("%w: %v", apperrors.ErrModelUnavailable, u.cause)
}

func (unavailable) Close() error { return nil }

// Softmax is numerically stable (max-shifted).
func Softmax(logits []float32) []float64 {
	if len(logits) == 0 {
		return nil
	}
	maxv := float64(logits[0])
	for _, v := range logits[1:] {
		maxv = math.Max(maxv, float64(v))
	}
	out := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		out[i] = math.Exp(float64(v) - maxv)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// Argmax returns the first index of the largest value, -1 for empty input.
func Argmax(xs []float64) int {
	best := -1
	for i, v := range xs {
		if best < 0 || v > xs[best] {
			best = i
		}
	}
	return best
}
