package cpu

import (
	"fmt"
	"math"

	"github.com/hush-ml/hush/internal/tensor"
)

// Softmax computes softmax along the given dimension.
// Negative dims count from the end.
//
// The implementation is numerically stable: the row maximum is subtracted
// before exponentiation.
func (cpu *CPUBackend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)
	if dim < 0 {
		dim += ndim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("softmax: dim out of range for shape %v", shape))
	}

	result, err := tensor.NewRaw(shape, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("softmax: failed to create result tensor: %v", err))
	}

	outer, n, inner := splitDims(shape, dim)

	switch x.DType() {
	case tensor.Float32:
		softmaxRows(result.AsFloat32(), x.AsFloat32(), outer, n, inner)
	case tensor.Float64:
		softmaxRows(result.AsFloat64(), x.AsFloat64(), outer, n, inner)
	default:
		panic(fmt.Sprintf("softmax: unsupported dtype %s", x.DType()))
	}

	return result
}

// softmaxRows applies softmax along the middle dimension of an
// (outer, n, inner) view of the data.
func softmaxRows[T float32 | float64](dst, src []T, outer, n, inner int) {
	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			base := o*n*inner + in

			// Row maximum for numerical stability. -inf entries
			// (masked positions) are handled naturally.
			maxVal := math.Inf(-1)
			for i := 0; i < n; i++ {
				v := float64(src[base+i*inner])
				if v > maxVal {
					maxVal = v
				}
			}

			sum := 0.0
			for i := 0; i < n; i++ {
				e := math.Exp(float64(src[base+i*inner]) - maxVal)
				dst[base+i*inner] = T(e)
				sum += e
			}

			for i := 0; i < n; i++ {
				dst[base+i*inner] = T(float64(dst[base+i*inner]) / sum)
			}
		}
	}
}

// splitDims factors a shape around dim into (outer, n, inner) extents.
func splitDims(shape tensor.Shape, dim int) (outer, n, inner int) {
	outer, inner = 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	n = shape[dim]
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	return outer, n, inner
}
