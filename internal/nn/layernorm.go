package nn

import (
	"github.com/hush-ml/hush/internal/tensor"
)

// LayerNorm applies Layer Normalization along the last dimension:
//
//	Y = gamma * (X - mean(X)) / sqrt(var(X) + eps) + beta
//
// mean and variance are computed per position across the feature dimension.
// gamma is initialized to ones, beta to zeros.
type LayerNorm[B tensor.Backend] struct {
	Gamma   *Parameter[B] // learnable scale [d_model]
	Beta    *Parameter[B] // learnable shift [d_model]
	Epsilon float32
	backend B
}

// NewLayerNorm creates a LayerNorm over the given feature size.
// epsilon is the usual numerical stability constant (1e-5 typical).
func NewLayerNorm[B tensor.Backend](normalizedShape int, epsilon float32, backend B) *LayerNorm[B] {
	return &LayerNorm[B]{
		Gamma:   NewParameter("gamma", Ones[B](tensor.Shape{normalizedShape}, backend)),
		Beta:    NewParameter("beta", Zeros[B](tensor.Shape{normalizedShape}, backend)),
		Epsilon: epsilon,
		backend: backend,
	}
}

// Forward normalizes x along its last dimension.
// Input and output shapes are identical: [..., d_model].
func (l *LayerNorm[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	mean := x.MeanDim(-1, true)
	xCentered := x.Sub(mean)

	variance := xCentered.Mul(xCentered).MeanDim(-1, true)
	rsqrt := variance.AddScalar(l.Epsilon).Rsqrt()

	xNorm := xCentered.Mul(rsqrt)

	// gamma/beta are [d_model]; unsqueeze to broadcast over leading dims.
	gamma := l.Gamma.Tensor()
	beta := l.Beta.Tensor()
	for i := 0; i < len(x.Shape())-1; i++ {
		gamma = gamma.Unsqueeze(0)
		beta = beta.Unsqueeze(0)
	}

	return xNorm.Mul(gamma).Add(beta)
}

// Parameters returns the learnable parameters (gamma and beta).
func (l *LayerNorm[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{l.Gamma, l.Beta}
}
