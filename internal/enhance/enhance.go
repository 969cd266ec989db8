// Package enhance implements the speech-enhancement encoder: an
// encoder-only transformer that regresses clean per-frame spectral
// magnitudes from noisy input features.
package enhance

import (
	"fmt"

	"github.com/hush-ml/hush/internal/nn"
	"github.com/hush-ml/hush/internal/tensor"
)

// Config configures an enhancement Encoder.
//
// Use DefaultConfig to start from the standard settings (8 heads, 8 layers,
// FFN width 512, dropout 0.1, causal attention, LeakyReLU inside the
// encoder, ReLU on the output). New fills zero-valued numeric fields with
// those defaults; Causal is taken as given, so non-causal models must build
// their Config from DefaultConfig and clear it, or set the fields
// explicitly.
type Config[B tensor.Backend] struct {
	// OutputSize is the number of output features per frame
	// (e.g. spectral bins of the enhancement target).
	OutputSize int

	// InputSize is the number of input features per frame and the width
	// of the encoder stack.
	InputSize int

	NumHeads  int     // attention heads per layer (default 8)
	NumLayers int     // encoder layers (default 8)
	FFNDim    int     // feed-forward hidden width (default 512)
	Dropout   float32 // dropout inside encoder layers

	// Causal restricts attention to current and past frames, for
	// streaming enhancement where future context is unavailable.
	Causal bool

	// Activation builds the activation used inside encoder feed-forward
	// blocks. nil defaults to LeakyReLU.
	Activation func() nn.Module[B]

	// OutputActivation builds the activation applied to the projected
	// output. nil defaults to ReLU, keeping predicted magnitudes
	// non-negative.
	OutputActivation func() nn.Module[B]

	// Embedding optionally transforms the raw input before the encoder
	// (e.g. a convolutional front-end). Its output width must equal
	// InputSize. nil feeds the input straight to the encoder.
	Embedding nn.Module[B]
}

// DefaultConfig returns the standard enhancement configuration for the
// given feature dimensions.
func DefaultConfig[B tensor.Backend](outputSize, inputSize int) Config[B] {
	return Config[B]{
		OutputSize: outputSize,
		InputSize:  inputSize,
		NumHeads:   8,
		NumLayers:  8,
		FFNDim:     512,
		Dropout:    0.1,
		Causal:     true,
	}
}

// Encoder is the speech-enhancement model: an optional embedding
// front-end, an encoder-only transformer stack without built-in positional
// encoding, and a bias-free linear head with an output activation.
//
// The forward pipeline is fixed:
//
//	(optional embedding) -> encoder (optional causal mask) -> projection -> activation
//
// The model holds no mutable state across forward calls; the causal mask is
// derived from each input's time dimension and discarded.
type Encoder[B tensor.Backend] struct {
	config      Config[B]
	embedding   nn.Module[B] // nil when not configured
	encoder     *nn.TransformerEncoder[B]
	outputLayer *nn.Linear[B]
	outputAct   nn.Module[B]
	backend     B
}

// New creates an enhancement Encoder. Zero-valued NumHeads, NumLayers and
// FFNDim fall back to the defaults; OutputSize and InputSize are required.
func New[B tensor.Backend](config Config[B], backend B) *Encoder[B] {
	if config.OutputSize <= 0 {
		panic(fmt.Sprintf("enhance: output size must be positive, got %d", config.OutputSize))
	}
	if config.InputSize <= 0 {
		panic(fmt.Sprintf("enhance: input size must be positive, got %d", config.InputSize))
	}
	if config.NumHeads == 0 {
		config.NumHeads = 8
	}
	if config.NumLayers == 0 {
		config.NumLayers = 8
	}
	if config.FFNDim == 0 {
		config.FFNDim = 512
	}

	var activation func() nn.Module[B]
	if config.Activation != nil {
		activation = config.Activation
	} else {
		activation = func() nn.Module[B] { return nn.NewLeakyReLU[B]() }
	}

	// Positional information, if any, is the embedding front-end's job.
	encoder := nn.NewTransformerEncoder(nn.EncoderConfig[B]{
		InputSize:          config.InputSize,
		NumHeads:           config.NumHeads,
		NumLayers:          config.NumLayers,
		FFNDim:             config.FFNDim,
		Dropout:            config.Dropout,
		Activation:         activation,
		PositionalEncoding: false,
	}, backend)

	var outputAct nn.Module[B]
	if config.OutputActivation != nil {
		outputAct = config.OutputActivation()
	} else {
		outputAct = nn.NewReLU[B]()
	}

	return &Encoder[B]{
		config:      config,
		embedding:   config.Embedding,
		encoder:     encoder,
		outputLayer: nn.NewLinearNoBias[B](config.InputSize, config.OutputSize, backend),
		outputAct:   outputAct,
		backend:     backend,
	}
}

// Forward enhances a batch of feature sequences.
//
// x is [batch, time, input_size]; srcKeyPaddingMask, when non-nil, is a
// boolean [batch, time] mask marking padded positions to exclude from
// attention. Returns [batch, time, output_size].
//
// Shape mismatches (an embedding front-end producing the wrong width, for
// instance) panic from the tensor layer; this component adds no validation
// of its own.
func (e *Encoder[B]) Forward(
	x *tensor.Tensor[float32, B],
	srcKeyPaddingMask *tensor.Tensor[bool, B],
) *tensor.Tensor[float32, B] {
	output, _ := e.run(x, srcKeyPaddingMask)
	return output
}

// ForwardWithAttention runs the same pipeline as Forward and also returns
// the per-layer attention weights, each [batch, heads, time, time].
func (e *Encoder[B]) ForwardWithAttention(
	x *tensor.Tensor[float32, B],
	srcKeyPaddingMask *tensor.Tensor[bool, B],
) (*tensor.Tensor[float32, B], []*tensor.Tensor[float32, B]) {
	return e.run(x, srcKeyPaddingMask)
}

func (e *Encoder[B]) run(
	x *tensor.Tensor[float32, B],
	srcKeyPaddingMask *tensor.Tensor[bool, B],
) (*tensor.Tensor[float32, B], []*tensor.Tensor[float32, B]) {
	// The lookahead mask is recomputed from this input's time dimension
	// and lives only for the duration of the call.
	var attnMask *tensor.Tensor[float32, B]
	if e.config.Causal {
		attnMask = nn.LookaheadMask(x)
	}

	if e.embedding != nil {
		x = e.embedding.Forward(x)
	}

	encoded, attentions := e.encoder.Forward(x, attnMask, srcKeyPaddingMask)

	output := e.outputLayer.Forward(encoded)
	output = e.outputAct.Forward(output)

	return output, attentions
}

// Config returns the model configuration.
func (e *Encoder[B]) Config() Config[B] {
	return e.config
}

// Parameters returns all trainable parameters: the embedding front-end (if
// any), the encoder stack and the projection head.
func (e *Encoder[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	if e.embedding != nil {
		params = append(params, e.embedding.Parameters()...)
	}
	params = append(params, e.encoder.Parameters()...)
	params = append(params, e.outputLayer.Parameters()...)
	return params
}

// Train enables dropout in the encoder stack.
func (e *Encoder[B]) Train() {
	e.encoder.SetTraining(true)
}

// Eval disables dropout (the default after construction).
func (e *Encoder[B]) Eval() {
	e.encoder.SetTraining(false)
}
