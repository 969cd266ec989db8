package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRaw(t *testing.T) {
	raw, err := NewRaw(Shape{2, 3}, Float32, CPU)
	require.NoError(t, err)

	assert.Equal(t, Shape{2, 3}, raw.Shape())
	assert.Equal(t, Float32, raw.DType())
	assert.Equal(t, CPU, raw.Device())
	assert.Equal(t, 6, raw.NumElements())
	assert.Equal(t, 24, raw.ByteSize())
}

func TestNewRaw_InvalidShape(t *testing.T) {
	_, err := NewRaw(Shape{2, 0}, Float32, CPU)
	require.Error(t, err)
}

func TestRawTensor_View_SharesMemory(t *testing.T) {
	raw, err := NewRaw(Shape{2, 3}, Float32, CPU)
	require.NoError(t, err)

	data := raw.AsFloat32()
	data[0] = 42

	view := raw.View(Shape{3, 2})
	assert.Equal(t, Shape{3, 2}, view.Shape())
	assert.Equal(t, float32(42), view.AsFloat32()[0])

	// Writes through the view are visible in the original.
	view.AsFloat32()[5] = 7
	assert.Equal(t, float32(7), data[5])
}

func TestRawTensor_View_WrongSize(t *testing.T) {
	raw, err := NewRaw(Shape{2, 3}, Float32, CPU)
	require.NoError(t, err)

	assert.Panics(t, func() { raw.View(Shape{4, 2}) })
}

func TestRawTensor_Clone_Independent(t *testing.T) {
	raw, err := NewRaw(Shape{4}, Float64, CPU)
	require.NoError(t, err)
	raw.AsFloat64()[2] = 3.5

	clone := raw.Clone()
	clone.AsFloat64()[2] = -1

	assert.Equal(t, 3.5, raw.AsFloat64()[2])
	assert.Equal(t, -1.0, clone.AsFloat64()[2])
}

func TestDataType_Size(t *testing.T) {
	assert.Equal(t, 4, Float32.Size())
	assert.Equal(t, 8, Float64.Size())
	assert.Equal(t, 1, Bool.Size())
}
