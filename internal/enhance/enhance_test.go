package enhance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hush-ml/hush/internal/backend/cpu"
	"github.com/hush-ml/hush/internal/nn"
	"github.com/hush-ml/hush/internal/tensor"
)

func smallConfig() Config[*cpu.CPUBackend] {
	config := DefaultConfig[*cpu.CPUBackend](16, 16)
	config.NumHeads = 4
	config.NumLayers = 2
	config.FFNDim = 32
	config.Dropout = 0
	return config
}

func TestEncoder_OutputShape(t *testing.T) {
	backend := cpu.New()

	config := smallConfig()
	config.OutputSize = 20
	model := New(config, backend)

	x := tensor.Randn[float32](tensor.Shape{2, 10, 16}, backend)
	y := model.Forward(x, nil)

	assert.Equal(t, tensor.Shape{2, 10, 20}, y.Shape())
}

func TestEncoder_SpectralShape(t *testing.T) {
	backend := cpu.New()

	// 256 noisy bins in, 257 clean bins out.
	config := DefaultConfig[*cpu.CPUBackend](257, 256)
	config.NumLayers = 1
	config.Dropout = 0
	model := New(config, backend)

	x := tensor.Randn[float32](tensor.Shape{8, 120, 256}, backend)
	y := model.Forward(x, nil)

	assert.Equal(t, tensor.Shape{8, 120, 257}, y.Shape())
}

func TestEncoder_DefaultConfig(t *testing.T) {
	config := DefaultConfig[*cpu.CPUBackend](257, 257)

	assert.Equal(t, 257, config.OutputSize)
	assert.Equal(t, 257, config.InputSize)
	assert.Equal(t, 8, config.NumHeads)
	assert.Equal(t, 8, config.NumLayers)
	assert.Equal(t, 512, config.FFNDim)
	assert.Equal(t, float32(0.1), config.Dropout)
	assert.True(t, config.Causal)
}

func TestEncoder_OutputNonNegative(t *testing.T) {
	backend := cpu.New()

	model := New(smallConfig(), backend)

	x := tensor.Randn[float32](tensor.Shape{2, 8, 16}, backend)
	y := model.Forward(x, nil)

	for _, v := range y.Data() {
		assert.GreaterOrEqual(t, v, float32(0))
	}
}

func TestEncoder_CausalIgnoresFuturePerturbation(t *testing.T) {
	backend := cpu.New()

	model := New(smallConfig(), backend)

	seqLen, dim := 8, 16
	base := tensor.Randn[float32](tensor.Shape{1, seqLen, dim}, backend)

	perturbed := base.Clone()
	// Perturb only the last two frames.
	data := perturbed.Data()
	for i := (seqLen - 2) * dim; i < seqLen*dim; i++ {
		data[i] += 5
	}

	out1 := model.Forward(base, nil)
	out2 := model.Forward(perturbed, nil)

	// Frames before the perturbation are unaffected in causal mode.
	d1, d2 := out1.Data(), out2.Data()
	for i := 0; i < (seqLen-2)*dim; i++ {
		assert.InDelta(t, d1[i], d2[i], 1e-6)
	}
}

func TestEncoder_NonCausalSeesFuturePerturbation(t *testing.T) {
	backend := cpu.New()

	config := smallConfig()
	config.Causal = false
	model := New(config, backend)

	seqLen, dim := 8, 16
	base := tensor.Randn[float32](tensor.Shape{1, seqLen, dim}, backend)

	perturbed := base.Clone()
	data := perturbed.Data()
	for i := (seqLen - 2) * dim; i < seqLen*dim; i++ {
		data[i] += 5
	}

	out1 := model.Forward(base, nil)
	out2 := model.Forward(perturbed, nil)

	// Bidirectional attention propagates the change backwards.
	var diff float64
	d1, d2 := out1.Data(), out2.Data()
	for i := 0; i < (seqLen-2)*dim; i++ {
		delta := float64(d1[i] - d2[i])
		diff += delta * delta
	}
	assert.Greater(t, diff, 0.0)
}

func TestEncoder_IdentityEmbeddingMatchesNone(t *testing.T) {
	backend := cpu.New()

	model := New(smallConfig(), backend)

	x := tensor.Randn[float32](tensor.Shape{1, 6, 16}, backend)
	out1 := model.Forward(x, nil)

	// Swapping in an identity front-end must not change the output.
	model.embedding = nn.NewIdentity[*cpu.CPUBackend]()
	out2 := model.Forward(x, nil)

	assert.Equal(t, out1.Data(), out2.Data())
}

func TestEncoder_EmbeddingFrontEnd(t *testing.T) {
	backend := cpu.New()

	config := smallConfig()
	config.Embedding = nn.NewLinear[*cpu.CPUBackend](16, 16, backend)
	model := New(config, backend)

	x := tensor.Randn[float32](tensor.Shape{2, 5, 16}, backend)
	y := model.Forward(x, nil)

	assert.Equal(t, tensor.Shape{2, 5, 16}, y.Shape())
}

func TestEncoder_ShapeInvariantAcrossDepth(t *testing.T) {
	backend := cpu.New()

	for _, layers := range []int{1, 2, 3} {
		for _, heads := range []int{2, 4} {
			config := smallConfig()
			config.NumLayers = layers
			config.NumHeads = heads
			model := New(config, backend)

			x := tensor.Randn[float32](tensor.Shape{1, 6, 16}, backend)
			y := model.Forward(x, nil)
			assert.Equal(t, tensor.Shape{1, 6, 16}, y.Shape())
		}
	}
}

func TestEncoder_ForwardWithAttention(t *testing.T) {
	backend := cpu.New()

	model := New(smallConfig(), backend)

	x := tensor.Randn[float32](tensor.Shape{1, 5, 16}, backend)
	out, attentions := model.ForwardWithAttention(x, nil)

	assert.Equal(t, tensor.Shape{1, 5, 16}, out.Shape())
	require.Len(t, attentions, 2)
	for _, attn := range attentions {
		assert.Equal(t, tensor.Shape{1, 4, 5, 5}, attn.Shape())

		// Causal structure shows up in every layer's weights.
		w := attn.Data()
		for head := 0; head < 4; head++ {
			for i := 0; i < 5; i++ {
				for j := i + 1; j < 5; j++ {
					assert.Equal(t, float32(0), w[head*25+i*5+j])
				}
			}
		}
	}
}

func TestEncoder_PaddingMask(t *testing.T) {
	backend := cpu.New()

	model := New(smallConfig(), backend)

	x := tensor.Randn[float32](tensor.Shape{2, 6, 16}, backend)
	padMask, err := tensor.FromSlice(
		[]bool{
			false, false, false, false, false, false,
			false, false, false, false, true, true,
		},
		tensor.Shape{2, 6}, backend,
	)
	require.NoError(t, err)

	y := model.Forward(x, padMask)
	assert.Equal(t, tensor.Shape{2, 6, 16}, y.Shape())
}

func TestEncoder_CustomOutputActivation(t *testing.T) {
	backend := cpu.New()

	config := smallConfig()
	config.OutputActivation = func() nn.Module[*cpu.CPUBackend] {
		return nn.NewSigmoid[*cpu.CPUBackend]()
	}
	model := New(config, backend)

	x := tensor.Randn[float32](tensor.Shape{1, 4, 16}, backend)
	y := model.Forward(x, nil)

	for _, v := range y.Data() {
		assert.Greater(t, v, float32(0))
		assert.Less(t, v, float32(1))
	}
}

func TestEncoder_OutputLayerHasNoBias(t *testing.T) {
	backend := cpu.New()

	model := New(smallConfig(), backend)
	assert.Nil(t, model.outputLayer.Bias())
}

func TestEncoder_TrainEval(t *testing.T) {
	backend := cpu.New()

	config := smallConfig()
	config.Dropout = 0.5
	model := New(config, backend)

	x := tensor.Randn[float32](tensor.Shape{1, 4, 16}, backend)

	// Eval mode is deterministic.
	out1 := model.Forward(x, nil)
	out2 := model.Forward(x, nil)
	assert.Equal(t, out1.Data(), out2.Data())

	// Training mode samples dropout masks per call.
	model.Train()
	out3 := model.Forward(x, nil)
	out4 := model.Forward(x, nil)
	assert.NotEqual(t, out3.Data(), out4.Data())

	model.Eval()
	out5 := model.Forward(x, nil)
	assert.Equal(t, out1.Data(), out5.Data())
}

func TestEncoder_InvalidConfig(t *testing.T) {
	backend := cpu.New()

	assert.Panics(t, func() { New(Config[*cpu.CPUBackend]{OutputSize: 0, InputSize: 16}, backend) })
	assert.Panics(t, func() { New(Config[*cpu.CPUBackend]{OutputSize: 16, InputSize: 0}, backend) })
}

func TestEncoder_Parameters(t *testing.T) {
	backend := cpu.New()

	model := New(smallConfig(), backend)

	// 2 layers of 16 params each, plus the bias-free projection head.
	assert.Len(t, model.Parameters(), 2*16+1)
}
