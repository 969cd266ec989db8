package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hush-ml/hush/internal/backend/cpu"
	"github.com/hush-ml/hush/internal/tensor"
)

func TestMultiHeadAttention_SelfAttentionShapes(t *testing.T) {
	backend := cpu.New()

	mha := NewMultiHeadAttention[*cpu.CPUBackend](16, 4, backend)

	x := tensor.Randn[float32](tensor.Shape{2, 5, 16}, backend)
	output, weights := mha.ForwardWithWeights(x, x, x, nil)

	assert.Equal(t, tensor.Shape{2, 5, 16}, output.Shape())
	assert.Equal(t, tensor.Shape{2, 4, 5, 5}, weights.Shape())
}

func TestMultiHeadAttention_WithLookaheadMask(t *testing.T) {
	backend := cpu.New()

	mha := NewMultiHeadAttention[*cpu.CPUBackend](8, 2, backend)

	x := tensor.Randn[float32](tensor.Shape{1, 4, 8}, backend)
	mask := LookaheadMask(x)

	_, weights := mha.ForwardWithWeights(x, x, x, mask)

	// Every head obeys the causal structure.
	w := weights.Data()
	seqLen := 4
	for head := 0; head < 2; head++ {
		for i := 0; i < seqLen; i++ {
			for j := i + 1; j < seqLen; j++ {
				idx := head*seqLen*seqLen + i*seqLen + j
				assert.Equal(t, float32(0), w[idx])
			}
		}
	}
}

func TestMultiHeadAttention_InvalidConfig(t *testing.T) {
	backend := cpu.New()

	assert.Panics(t, func() { NewMultiHeadAttention[*cpu.CPUBackend](10, 3, backend) })
	assert.Panics(t, func() { NewMultiHeadAttention[*cpu.CPUBackend](8, 0, backend) })
}

func TestMultiHeadAttention_Parameters(t *testing.T) {
	backend := cpu.New()

	mha := NewMultiHeadAttention[*cpu.CPUBackend](8, 2, backend)
	require.Len(t, mha.Parameters(), 8) // 4 projections, weight + bias each
}

func TestFFN_Shapes(t *testing.T) {
	backend := cpu.New()

	ffn := NewFFN[*cpu.CPUBackend](8, 32, nil, backend)

	x := tensor.Randn[float32](tensor.Shape{2, 5, 8}, backend)
	y := ffn.Forward(x)

	assert.Equal(t, tensor.Shape{2, 5, 8}, y.Shape())
	assert.Len(t, ffn.Parameters(), 4)
}
