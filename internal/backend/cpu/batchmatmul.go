package cpu

import (
	"fmt"

	"github.com/hush-ml/hush/internal/tensor"
)

// BatchMatMul performs batched matrix multiplication over the trailing two
// dimensions of 3D or 4D tensors:
//
//	[B, M, K]    @ [B, K, N]    -> [B, M, N]
//	[B, H, M, K] @ [B, H, K, N] -> [B, H, M, N]
//
// Each batch is an independent GEMM call.
func (cpu *CPUBackend) BatchMatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()

	if len(aShape) != len(bShape) {
		panic(fmt.Sprintf("batchmatmul: rank mismatch %dD vs %dD", len(aShape), len(bShape)))
	}
	if len(aShape) != 3 && len(aShape) != 4 {
		panic(fmt.Sprintf("batchmatmul: only 3D/4D tensors supported, got %dD", len(aShape)))
	}

	// All leading (batch) dimensions must match.
	batch := 1
	for i := 0; i < len(aShape)-2; i++ {
		if aShape[i] != bShape[i] {
			panic(fmt.Sprintf("batchmatmul: batch dimension mismatch %v vs %v", aShape, bShape))
		}
		batch *= aShape[i]
	}

	m, k := aShape[len(aShape)-2], aShape[len(aShape)-1]
	kAlt, n := bShape[len(bShape)-2], bShape[len(bShape)-1]
	if k != kAlt {
		panic(fmt.Sprintf("batchmatmul: inner dimension mismatch %v @ %v", aShape, bShape))
	}

	outShape := aShape.Clone()
	outShape[len(outShape)-1] = n

	result, err := tensor.NewRaw(outShape, a.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("batchmatmul: failed to create result tensor: %v", err))
	}

	switch a.DType() {
	case tensor.Float32:
		aData, bData, cData := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()
		for i := 0; i < batch; i++ {
			gemmFloat32(cData[i*m*n:(i+1)*m*n], aData[i*m*k:(i+1)*m*k], bData[i*k*n:(i+1)*k*n], m, k, n)
		}
	case tensor.Float64:
		aData, bData, cData := a.AsFloat64(), b.AsFloat64(), result.AsFloat64()
		for i := 0; i < batch; i++ {
			gemmFloat64(cData[i*m*n:(i+1)*m*n], aData[i*m*k:(i+1)*m*k], bData[i*k*n:(i+1)*k*n], m, k, n)
		}
	default:
		panic(fmt.Sprintf("batchmatmul: unsupported dtype %s", a.DType()))
	}

	return result
}
