package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hush-ml/hush/internal/backend/cpu"
	"github.com/hush-ml/hush/internal/tensor"
)

func testEncoderConfig() EncoderConfig[*cpu.CPUBackend] {
	return EncoderConfig[*cpu.CPUBackend]{
		InputSize: 16,
		NumHeads:  4,
		NumLayers: 2,
		FFNDim:    32,
		Dropout:   0.1,
	}
}

func TestTransformerEncoderLayer_Shapes(t *testing.T) {
	backend := cpu.New()

	layer := NewTransformerEncoderLayer(testEncoderConfig(), backend)

	x := tensor.Randn[float32](tensor.Shape{2, 5, 16}, backend)
	out, weights := layer.Forward(x, nil)

	assert.Equal(t, tensor.Shape{2, 5, 16}, out.Shape())
	assert.Equal(t, tensor.Shape{2, 4, 5, 5}, weights.Shape())
}

func TestTransformerEncoder_Shapes(t *testing.T) {
	backend := cpu.New()

	enc := NewTransformerEncoder(testEncoderConfig(), backend)

	x := tensor.Randn[float32](tensor.Shape{2, 7, 16}, backend)
	out, attentions := enc.Forward(x, nil, nil)

	assert.Equal(t, tensor.Shape{2, 7, 16}, out.Shape())
	require.Len(t, attentions, 2)
	for _, attn := range attentions {
		assert.Equal(t, tensor.Shape{2, 4, 7, 7}, attn.Shape())
	}
}

func TestTransformerEncoder_CausalMask(t *testing.T) {
	backend := cpu.New()

	enc := NewTransformerEncoder(testEncoderConfig(), backend)

	x := tensor.Randn[float32](tensor.Shape{1, 4, 16}, backend)
	mask := LookaheadMask(x)
	_, attentions := enc.Forward(x, mask, nil)

	for _, attn := range attentions {
		w := attn.Data()
		for head := 0; head < 4; head++ {
			for i := 0; i < 4; i++ {
				for j := i + 1; j < 4; j++ {
					assert.Equal(t, float32(0), w[head*16+i*4+j])
				}
			}
		}
	}
}

func TestTransformerEncoder_PaddingMaskZeroesKeys(t *testing.T) {
	backend := cpu.New()

	enc := NewTransformerEncoder(testEncoderConfig(), backend)

	x := tensor.Randn[float32](tensor.Shape{1, 4, 16}, backend)
	padMask, err := tensor.FromSlice(
		[]bool{false, false, true, true},
		tensor.Shape{1, 4}, backend,
	)
	require.NoError(t, err)

	_, attentions := enc.Forward(x, nil, padMask)

	// First layer: no query attends to the padded keys 2 and 3.
	w := attentions[0].Data()
	for head := 0; head < 4; head++ {
		for q := 0; q < 4; q++ {
			assert.Equal(t, float32(0), w[head*16+q*4+2])
			assert.Equal(t, float32(0), w[head*16+q*4+3])
		}
	}
}

func TestTransformerEncoder_PositionalEncodingChangesOutput(t *testing.T) {
	backend := cpu.New()

	config := testEncoderConfig()
	config.Dropout = 0
	plain := NewTransformerEncoder(config, backend)

	config.PositionalEncoding = true
	config.MaxLen = 100
	withPos := NewTransformerEncoder(config, backend)
	require.NotNil(t, withPos.Pos)
	assert.Nil(t, plain.Pos)

	x := tensor.Randn[float32](tensor.Shape{1, 5, 16}, backend)
	out, _ := withPos.Forward(x, nil, nil)
	assert.Equal(t, tensor.Shape{1, 5, 16}, out.Shape())
}

func TestTransformerEncoder_InvalidConfig(t *testing.T) {
	backend := cpu.New()

	config := testEncoderConfig()
	config.NumHeads = 3 // does not divide 16
	assert.Panics(t, func() { NewTransformerEncoder(config, backend) })

	config = testEncoderConfig()
	config.NumLayers = 0
	assert.Panics(t, func() { NewTransformerEncoder(config, backend) })

	config = testEncoderConfig()
	config.InputSize = 0
	assert.Panics(t, func() { NewTransformerEncoder(config, backend) })
}

func TestTransformerEncoder_RejectsNon3DInput(t *testing.T) {
	backend := cpu.New()

	enc := NewTransformerEncoder(testEncoderConfig(), backend)
	x := tensor.Randn[float32](tensor.Shape{4, 16}, backend)

	assert.Panics(t, func() { enc.Forward(x, nil, nil) })
}

func TestTransformerEncoder_SetTraining(t *testing.T) {
	backend := cpu.New()

	enc := NewTransformerEncoder(testEncoderConfig(), backend)

	enc.SetTraining(true)
	for _, layer := range enc.Layers {
		assert.True(t, layer.Dropout1.Training())
		assert.True(t, layer.Dropout2.Training())
	}

	enc.SetTraining(false)
	for _, layer := range enc.Layers {
		assert.False(t, layer.Dropout1.Training())
	}
}

func TestTransformerEncoder_ParameterCount(t *testing.T) {
	backend := cpu.New()

	enc := NewTransformerEncoder(testEncoderConfig(), backend)

	// Per layer: 8 attention params, 4 FFN params, 4 norm params.
	assert.Len(t, enc.Parameters(), 2*16)
}
