package nn

import (
	"fmt"
	"math/rand"

	"github.com/hush-ml/hush/internal/tensor"
)

// Dropout randomly zeroes elements of its input with probability P during
// training, scaling the survivors by 1/(1-P) (inverted dropout) so that
// the expected activation is unchanged. In eval mode it is the identity.
//
// Modules are created in eval mode; call SetTraining(true) to enable.
type Dropout[B tensor.Backend] struct {
	P        float32
	training bool
}

// NewDropout creates a Dropout module with drop probability p in [0, 1).
func NewDropout[B tensor.Backend](p float32) *Dropout[B] {
	if p < 0 || p >= 1 {
		panic(fmt.Sprintf("Dropout: p must be in [0, 1), got %f", p))
	}
	return &Dropout[B]{P: p}
}

// SetTraining toggles between training (dropout active) and eval mode.
func (d *Dropout[B]) SetTraining(training bool) {
	d.training = training
}

// Training reports whether dropout is active.
func (d *Dropout[B]) Training() bool {
	return d.training
}

// Forward applies dropout in training mode and is the identity otherwise.
func (d *Dropout[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !d.training || d.P == 0 {
		return input
	}

	out := input.Clone()
	data := out.Data()
	scale := 1.0 / (1.0 - d.P)
	for i := range data {
		//nolint:gosec // math/rand is fine for dropout sampling
		if rand.Float32() < d.P {
			data[i] = 0
		} else {
			data[i] *= scale
		}
	}
	return out
}

// Parameters returns nil (Dropout has no trainable parameters).
func (d *Dropout[B]) Parameters() []*Parameter[B] {
	return nil
}
