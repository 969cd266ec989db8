package nn

import (
	"github.com/hush-ml/hush/internal/tensor"
)

// Backends advertise activation support through capability interfaces;
// activation modules discover them with type assertions at call time.

// ReLUBackend is implemented by backends that support ReLU.
type ReLUBackend interface {
	ReLU(*tensor.RawTensor) *tensor.RawTensor
}

// LeakyReLUBackend is implemented by backends that support LeakyReLU.
type LeakyReLUBackend interface {
	LeakyReLU(x *tensor.RawTensor, slope float32) *tensor.RawTensor
}

// SigmoidBackend is implemented by backends that support Sigmoid.
type SigmoidBackend interface {
	Sigmoid(*tensor.RawTensor) *tensor.RawTensor
}

// ReLU is a Rectified Linear Unit activation module: f(x) = max(0, x).
//
// It is the default output activation of the enhancement head, which keeps
// predicted spectral magnitudes non-negative.
type ReLU[B tensor.Backend] struct{}

// NewReLU creates a new ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return &ReLU[B]{}
}

// Forward applies ReLU element-wise.
func (r *ReLU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := input.Backend()
	if rb, ok := any(backend).(ReLUBackend); ok {
		return tensor.New[float32, B](rb.ReLU(input.Raw()), backend)
	}
	panic("ReLU: backend must implement the ReLU operation")
}

// Parameters returns nil (ReLU has no trainable parameters).
func (r *ReLU[B]) Parameters() []*Parameter[B] {
	return nil
}

// DefaultLeakySlope is the slope applied to negative inputs by LeakyReLU
// when none is configured.
const DefaultLeakySlope float32 = 0.01

// LeakyReLU applies f(x) = x for x > 0 and slope*x otherwise.
//
// Used inside the encoder feed-forward blocks, where a small negative slope
// avoids dead units.
type LeakyReLU[B tensor.Backend] struct {
	Slope float32
}

// NewLeakyReLU creates a LeakyReLU with the default negative slope.
func NewLeakyReLU[B tensor.Backend]() *LeakyReLU[B] {
	return &LeakyReLU[B]{Slope: DefaultLeakySlope}
}

// Forward applies LeakyReLU element-wise.
func (l *LeakyReLU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := input.Backend()
	if lb, ok := any(backend).(LeakyReLUBackend); ok {
		return tensor.New[float32, B](lb.LeakyReLU(input.Raw(), l.Slope), backend)
	}
	panic("LeakyReLU: backend must implement the LeakyReLU operation")
}

// Parameters returns nil (LeakyReLU has no trainable parameters).
func (l *LeakyReLU[B]) Parameters() []*Parameter[B] {
	return nil
}

// Sigmoid applies f(x) = 1/(1+exp(-x)), squashing values to (0, 1).
// Useful as an output activation when the head predicts spectral masks
// instead of magnitudes.
type Sigmoid[B tensor.Backend] struct{}

// NewSigmoid creates a new Sigmoid activation module.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return &Sigmoid[B]{}
}

// Forward applies Sigmoid element-wise.
func (s *Sigmoid[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := input.Backend()
	if sb, ok := any(backend).(SigmoidBackend); ok {
		return tensor.New[float32, B](sb.Sigmoid(input.Raw()), backend)
	}
	panic("Sigmoid: backend must implement the Sigmoid operation")
}

// Parameters returns nil (Sigmoid has no trainable parameters).
func (s *Sigmoid[B]) Parameters() []*Parameter[B] {
	return nil
}

// Identity passes its input through unchanged. It stands in for optional
// activations and embedding modules that are not configured.
type Identity[B tensor.Backend] struct{}

// NewIdentity creates a new Identity module.
func NewIdentity[B tensor.Backend]() *Identity[B] {
	return &Identity[B]{}
}

// Forward returns the input unchanged.
func (i *Identity[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input
}

// Parameters returns nil (Identity has no trainable parameters).
func (i *Identity[B]) Parameters() []*Parameter[B] {
	return nil
}
