package cpu

import (
	"fmt"

	"github.com/hush-ml/hush/internal/tensor"
)

// MulScalar multiplies every element by a scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	s := scalarToFloat64("mulscalar", scalar)
	return cpu.unary("mulscalar", x, func(v float64) float64 { return v * s })
}

// AddScalar adds a scalar to every element.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	s := scalarToFloat64("addscalar", scalar)
	return cpu.unary("addscalar", x, func(v float64) float64 { return v + s })
}

// scalarToFloat64 widens a numeric scalar to float64.
func scalarToFloat64(name string, scalar any) float64 {
	switch s := scalar.(type) {
	case float32:
		return float64(s)
	case float64:
		return s
	case int:
		return float64(s)
	default:
		panic(fmt.Sprintf("%s: unsupported scalar type %T", name, scalar))
	}
}
