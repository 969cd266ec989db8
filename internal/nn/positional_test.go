package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hush-ml/hush/internal/backend/cpu"
	"github.com/hush-ml/hush/internal/tensor"
)

func TestSinusoidalPositionalEncoding_Values(t *testing.T) {
	backend := cpu.New()

	pe := NewSinusoidalPositionalEncoding[*cpu.CPUBackend](10, 4, backend)

	out := pe.Forward(3)
	require.Equal(t, tensor.Shape{1, 3, 4}, out.Shape())

	data := out.Data()
	// Position 0: sin(0)=0 on even dims, cos(0)=1 on odd dims.
	assert.InDelta(t, 0.0, data[0], 1e-6)
	assert.InDelta(t, 1.0, data[1], 1e-6)
	assert.InDelta(t, 0.0, data[2], 1e-6)
	assert.InDelta(t, 1.0, data[3], 1e-6)

	// Position 1, dim 0: sin(1).
	assert.InDelta(t, math.Sin(1), data[4], 1e-5)
}

func TestSinusoidalPositionalEncoding_ExceedsMaxLen(t *testing.T) {
	backend := cpu.New()

	pe := NewSinusoidalPositionalEncoding[*cpu.CPUBackend](5, 4, backend)
	assert.Panics(t, func() { pe.Forward(6) })
}

func TestSinusoidalPositionalEncoding_NoParameters(t *testing.T) {
	backend := cpu.New()

	pe := NewSinusoidalPositionalEncoding[*cpu.CPUBackend](5, 4, backend)
	assert.Nil(t, pe.Parameters())
}
