// Package nn implements the neural network building blocks used by the
// speech-enhancement models: linear layers, layer normalization,
// activations, dropout, multi-head attention, attention masks and the
// encoder-only transformer stack.
//
// Every component exposes Forward and Parameters; modules compose through
// the Module interface and the generic backend parameter B.
package nn

import (
	"github.com/hush-ml/hush/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules can be composed to build complex architectures; modules without
// trainable parameters (activations) return an empty Parameters slice.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module,
	// including nested module parameters.
	Parameters() []*Parameter[B]
}
