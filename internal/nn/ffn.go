package nn

import (
	"github.com/hush-ml/hush/internal/tensor"
)

// FFN implements the position-wise feed-forward block of a transformer
// layer:
//
//	FFN(x) = Linear2(act(Linear1(x)))
//
// Linear1 expands embed_dim to ffn_dim, Linear2 projects back. The inner
// activation is injected so encoder configurations can choose it (the
// enhancement encoder defaults to LeakyReLU).
type FFN[B tensor.Backend] struct {
	Linear1    *Linear[B]
	Linear2    *Linear[B]
	Activation Module[B]
	backend    B
}

// NewFFN creates a feed-forward block with the given inner activation.
// A nil activation defaults to LeakyReLU.
func NewFFN[B tensor.Backend](embedDim, ffnDim int, activation Module[B], backend B) *FFN[B] {
	if activation == nil {
		activation = NewLeakyReLU[B]()
	}
	return &FFN[B]{
		Linear1:    NewLinear[B](embedDim, ffnDim, backend),
		Linear2:    NewLinear[B](ffnDim, embedDim, backend),
		Activation: activation,
		backend:    backend,
	}
}

// Forward computes Linear2(act(Linear1(x))).
// Input may be [batch, embed_dim] or [batch, time, embed_dim]; the output
// has the same shape.
func (f *FFN[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	x = f.Linear1.Forward(x)
	x = f.Activation.Forward(x)
	return f.Linear2.Forward(x)
}

// Parameters returns all trainable parameters (both linear layers).
func (f *FFN[B]) Parameters() []*Parameter[B] {
	params := make([]*Parameter[B], 0, 4)
	params = append(params, f.Linear1.Parameters()...)
	params = append(params, f.Linear2.Parameters()...)
	return params
}
