package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hush-ml/hush/internal/backend/cpu"
	"github.com/hush-ml/hush/internal/tensor"
)

func TestReLU(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{-3, -0.5, 0, 2}, tensor.Shape{4}, backend)
	require.NoError(t, err)

	y := NewReLU[*cpu.CPUBackend]().Forward(x)
	assert.Equal(t, []float32{0, 0, 0, 2}, y.Data())
}

func TestLeakyReLU(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{-1, 0, 1}, tensor.Shape{3}, backend)
	require.NoError(t, err)

	y := NewLeakyReLU[*cpu.CPUBackend]().Forward(x)
	data := y.Data()
	assert.InDelta(t, -0.01, data[0], 1e-6)
	assert.Equal(t, float32(0), data[1])
	assert.Equal(t, float32(1), data[2])
}

func TestSigmoid(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{0}, tensor.Shape{1}, backend)
	require.NoError(t, err)

	y := NewSigmoid[*cpu.CPUBackend]().Forward(x)
	assert.InDelta(t, 0.5, y.Data()[0], 1e-6)
}

func TestIdentity(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{1, -2, 3}, tensor.Shape{3}, backend)
	require.NoError(t, err)

	y := NewIdentity[*cpu.CPUBackend]().Forward(x)
	assert.Equal(t, x.Data(), y.Data())
}

func TestDropout_EvalIsIdentity(t *testing.T) {
	backend := cpu.New()

	d := NewDropout[*cpu.CPUBackend](0.5)
	require.False(t, d.Training())

	x := tensor.Randn[float32](tensor.Shape{10, 10}, backend)
	y := d.Forward(x)

	assert.Equal(t, x.Data(), y.Data())
}

func TestDropout_TrainingDropsAndScales(t *testing.T) {
	backend := cpu.New()

	d := NewDropout[*cpu.CPUBackend](0.5)
	d.SetTraining(true)

	x := tensor.Ones[float32](tensor.Shape{1000}, backend)
	y := d.Forward(x)

	// Survivors are scaled by 1/(1-p); dropped elements are zero.
	zeros := 0
	for _, v := range y.Data() {
		switch v {
		case 0:
			zeros++
		case 2:
		default:
			t.Fatalf("unexpected value %v, want 0 or 2", v)
		}
	}
	// With p=0.5 over 1000 elements, the drop count stays well inside
	// these bounds.
	assert.Greater(t, zeros, 300)
	assert.Less(t, zeros, 700)

	// The input itself must stay untouched.
	assert.Equal(t, float32(1), x.Data()[0])
}

func TestDropout_InvalidP(t *testing.T) {
	assert.Panics(t, func() { NewDropout[*cpu.CPUBackend](1.0) })
	assert.Panics(t, func() { NewDropout[*cpu.CPUBackend](-0.1) })
}
