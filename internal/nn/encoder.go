package nn

import (
	"fmt"

	"github.com/hush-ml/hush/internal/tensor"
)

// defaultMaxLen bounds pre-computed positional encodings when the encoder
// enables them and no explicit limit is configured.
const defaultMaxLen = 2500

// EncoderConfig configures an encoder-only transformer stack.
type EncoderConfig[B tensor.Backend] struct {
	InputSize int     // model width (d_model)
	NumHeads  int     // attention heads per layer
	NumLayers int     // stacked encoder layers
	FFNDim    int     // hidden width of the feed-forward block
	Dropout   float32 // dropout applied after attention and FFN sub-blocks
	NormEps   float32 // layer norm epsilon (default 1e-5)

	// Activation builds the inner activation of each layer's FFN.
	// nil defaults to LeakyReLU.
	Activation func() Module[B]

	// PositionalEncoding enables additive sinusoidal positional encoding
	// on the input. Models whose front-end supplies positional
	// information leave this disabled.
	PositionalEncoding bool

	// MaxLen bounds pre-computed positional encodings (only relevant when
	// PositionalEncoding is set). 0 uses a default of 2500 frames.
	MaxLen int
}

// TransformerEncoderLayer is one layer of the encoder stack: post-norm
// self-attention and feed-forward sub-blocks with residual connections,
//
//	x = Norm1(x + Dropout(SelfAttn(x)))
//	x = Norm2(x + Dropout(FFN(x)))
type TransformerEncoderLayer[B tensor.Backend] struct {
	SelfAttn *MultiHeadAttention[B]
	FFN      *FFN[B]
	Norm1    *LayerNorm[B]
	Norm2    *LayerNorm[B]
	Dropout1 *Dropout[B]
	Dropout2 *Dropout[B]
}

// NewTransformerEncoderLayer creates one encoder layer from a validated
// config.
func NewTransformerEncoderLayer[B tensor.Backend](config EncoderConfig[B], backend B) *TransformerEncoderLayer[B] {
	var activation Module[B]
	if config.Activation != nil {
		activation = config.Activation()
	}

	return &TransformerEncoderLayer[B]{
		SelfAttn: NewMultiHeadAttention[B](config.InputSize, config.NumHeads, backend),
		FFN:      NewFFN[B](config.InputSize, config.FFNDim, activation, backend),
		Norm1:    NewLayerNorm[B](config.InputSize, config.NormEps, backend),
		Norm2:    NewLayerNorm[B](config.InputSize, config.NormEps, backend),
		Dropout1: NewDropout[B](config.Dropout),
		Dropout2: NewDropout[B](config.Dropout),
	}
}

// Forward runs one encoder layer.
//
// src is [batch, time, input_size]; mask is an optional additive attention
// mask broadcastable to [batch, heads, time, time]. Returns the layer
// output and the attention weights [batch, heads, time, time].
func (l *TransformerEncoderLayer[B]) Forward(
	src *tensor.Tensor[float32, B],
	mask *tensor.Tensor[float32, B],
) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B]) {
	attnOut, attnWeights := l.SelfAttn.ForwardWithWeights(src, src, src, mask)
	x := l.Norm1.Forward(src.Add(l.Dropout1.Forward(attnOut)))

	ffnOut := l.FFN.Forward(x)
	x = l.Norm2.Forward(x.Add(l.Dropout2.Forward(ffnOut)))

	return x, attnWeights
}

// Parameters returns all trainable parameters of the layer.
func (l *TransformerEncoderLayer[B]) Parameters() []*Parameter[B] {
	params := make([]*Parameter[B], 0, 16)
	params = append(params, l.SelfAttn.Parameters()...)
	params = append(params, l.FFN.Parameters()...)
	params = append(params, l.Norm1.Parameters()...)
	params = append(params, l.Norm2.Parameters()...)
	return params
}

// SetTraining toggles the layer's dropout modules.
func (l *TransformerEncoderLayer[B]) SetTraining(training bool) {
	l.Dropout1.SetTraining(training)
	l.Dropout2.SetTraining(training)
}

// TransformerEncoder is an encoder-only transformer stack: N identical
// layers, optionally preceded by sinusoidal positional encoding. There is
// no decoder; models needing cross-attention compose their own.
type TransformerEncoder[B tensor.Backend] struct {
	Config  EncoderConfig[B]
	Layers  []*TransformerEncoderLayer[B]
	Pos     *SinusoidalPositionalEncoding[B] // nil when disabled
	backend B
}

// NewTransformerEncoder creates an encoder stack. Zero-valued NormEps
// defaults to 1e-5; the remaining dimensions must be set and consistent.
func NewTransformerEncoder[B tensor.Backend](config EncoderConfig[B], backend B) *TransformerEncoder[B] {
	if config.InputSize <= 0 {
		panic(fmt.Sprintf("TransformerEncoder: input size must be positive, got %d", config.InputSize))
	}
	if config.NumLayers <= 0 {
		panic(fmt.Sprintf("TransformerEncoder: num layers must be positive, got %d", config.NumLayers))
	}
	if config.NumHeads <= 0 || config.InputSize%config.NumHeads != 0 {
		panic(fmt.Sprintf("TransformerEncoder: input size (%d) must be divisible by heads (%d)",
			config.InputSize, config.NumHeads))
	}
	if config.FFNDim <= 0 {
		panic(fmt.Sprintf("TransformerEncoder: ffn dim must be positive, got %d", config.FFNDim))
	}
	if config.NormEps == 0 {
		config.NormEps = 1e-5
	}

	layers := make([]*TransformerEncoderLayer[B], config.NumLayers)
	for i := range layers {
		layers[i] = NewTransformerEncoderLayer(config, backend)
	}

	var pos *SinusoidalPositionalEncoding[B]
	if config.PositionalEncoding {
		maxLen := config.MaxLen
		if maxLen == 0 {
			maxLen = defaultMaxLen
		}
		pos = NewSinusoidalPositionalEncoding[B](maxLen, config.InputSize, backend)
	}

	return &TransformerEncoder[B]{
		Config:  config,
		Layers:  layers,
		Pos:     pos,
		backend: backend,
	}
}

// Forward runs the full stack.
//
// Parameters:
//   - src: [batch, time, input_size]
//   - srcMask: optional additive attention mask (e.g. a lookahead mask),
//     broadcastable to [batch, heads, time, time], or nil
//   - srcKeyPaddingMask: optional boolean mask [batch, time], true at
//     padded positions to exclude from attention, or nil
//
// Returns the encoded sequence [batch, time, input_size] and the per-layer
// attention weights.
func (t *TransformerEncoder[B]) Forward(
	src *tensor.Tensor[float32, B],
	srcMask *tensor.Tensor[float32, B],
	srcKeyPaddingMask *tensor.Tensor[bool, B],
) (*tensor.Tensor[float32, B], []*tensor.Tensor[float32, B]) {
	if len(src.Shape()) != 3 {
		panic(fmt.Sprintf("TransformerEncoder.Forward: expected 3D input, got shape %v", src.Shape()))
	}

	if t.Pos != nil {
		src = src.Add(t.Pos.Forward(src.Shape()[1]))
	}

	// Fold both masks into one additive mask; -inf survives addition.
	mask := srcMask
	if srcKeyPaddingMask != nil {
		padMask := KeyPaddingMask(srcKeyPaddingMask)
		if mask == nil {
			mask = padMask
		} else {
			mask = mask.Add(padMask)
		}
	}

	attentions := make([]*tensor.Tensor[float32, B], 0, len(t.Layers))
	x := src
	for _, layer := range t.Layers {
		var attn *tensor.Tensor[float32, B]
		x, attn = layer.Forward(x, mask)
		attentions = append(attentions, attn)
	}

	return x, attentions
}

// Parameters returns all trainable parameters of the stack.
func (t *TransformerEncoder[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, layer := range t.Layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}

// SetTraining toggles dropout in every layer.
func (t *TransformerEncoder[B]) SetTraining(training bool) {
	for _, layer := range t.Layers {
		layer.SetTraining(training)
	}
}
