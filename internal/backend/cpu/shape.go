package cpu

import (
	"fmt"

	"github.com/hush-ml/hush/internal/tensor"
)

// Reshape returns a view of t with a new shape. No data is moved.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if err := newShape.Validate(); err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	if newShape.NumElements() != t.NumElements() {
		panic(fmt.Sprintf("reshape: cannot reshape %v (%d elements) to %v (%d elements)",
			t.Shape(), t.NumElements(), newShape, newShape.NumElements()))
	}
	return t.View(newShape)
}

// Unsqueeze returns a view of t with a dimension of size 1 inserted at dim.
func (cpu *CPUBackend) Unsqueeze(t *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := t.Shape()
	if dim < 0 {
		dim += len(shape) + 1
	}
	if dim < 0 || dim > len(shape) {
		panic(fmt.Sprintf("unsqueeze: dim %d out of range for shape %v", dim, shape))
	}

	newShape := make(tensor.Shape, 0, len(shape)+1)
	newShape = append(newShape, shape[:dim]...)
	newShape = append(newShape, 1)
	newShape = append(newShape, shape[dim:]...)

	return t.View(newShape)
}

// Transpose permutes the dimensions of t, materializing the result.
// With no axes given, all dimensions are reversed.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: got %d axes for %dD tensor", len(axes), ndim))
	}

	seen := make([]bool, ndim)
	outShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		if ax < 0 || ax >= ndim || seen[ax] {
			panic(fmt.Sprintf("transpose: invalid permutation %v for shape %v", axes, shape))
		}
		seen[ax] = true
		outShape[i] = shape[ax]
	}

	result, err := tensor.NewRaw(outShape, t.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("transpose: failed to create result tensor: %v", err))
	}

	// Source strides permuted into the output's dimension order.
	srcStrides := shape.ComputeStrides()
	permStrides := make([]int, ndim)
	for i, ax := range axes {
		permStrides[i] = srcStrides[ax]
	}

	switch t.DType() {
	case tensor.Float32:
		permuteCopy(result.AsFloat32(), t.AsFloat32(), outShape, permStrides)
	case tensor.Float64:
		permuteCopy(result.AsFloat64(), t.AsFloat64(), outShape, permStrides)
	case tensor.Bool:
		permuteCopy(result.AsBool(), t.AsBool(), outShape, permStrides)
	default:
		panic(fmt.Sprintf("transpose: unsupported dtype %s", t.DType()))
	}

	return result
}

// permuteCopy walks the output in row-major order, reading the source
// through permuted strides.
func permuteCopy[T any](dst, src []T, outShape tensor.Shape, srcStrides []int) {
	ndim := len(outShape)
	idx := make([]int, ndim)
	srcOff := 0

	for i := range dst {
		dst[i] = src[srcOff]

		for d := ndim - 1; d >= 0; d-- {
			idx[d]++
			srcOff += srcStrides[d]
			if idx[d] < outShape[d] {
				break
			}
			idx[d] = 0
			srcOff -= srcStrides[d] * outShape[d]
		}
	}
}
