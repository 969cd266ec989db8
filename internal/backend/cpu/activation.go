package cpu

import (
	"math"

	"github.com/hush-ml/hush/internal/tensor"
)

// Activation ops are not part of the tensor.Backend contract; the nn package
// discovers them through capability interfaces.

// ReLU computes max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("relu", x, func(v float64) float64 {
		if v > 0 {
			return v
		}
		return 0
	})
}

// LeakyReLU computes x for x > 0 and slope*x otherwise, element-wise.
func (cpu *CPUBackend) LeakyReLU(x *tensor.RawTensor, slope float32) *tensor.RawTensor {
	s := float64(slope)
	return cpu.unary("leakyrelu", x, func(v float64) float64 {
		if v > 0 {
			return v
		}
		return s * v
	})
}

// Sigmoid computes 1/(1+exp(-x)) element-wise.
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("sigmoid", x, func(v float64) float64 {
		return 1.0 / (1.0 + math.Exp(-v))
	})
}
