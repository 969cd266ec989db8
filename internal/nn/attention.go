package nn

import (
	"math"

	"github.com/hush-ml/hush/internal/tensor"
)

// ScaledDotProductAttention computes the core attention mechanism:
//
//	Attention(Q, K, V) = softmax(QK^T / sqrt(d_k) + mask) * V
//
// Parameters:
//   - query: [batch, heads, seq_q, head_dim]
//   - key:   [batch, heads, seq_k, head_dim]
//   - value: [batch, heads, seq_k, head_dim]
//   - mask: optional additive mask broadcastable to [batch, heads, seq_q, seq_k]
//     (-inf at forbidden positions), or nil
//   - scale: scaling factor, 0 for the default 1/sqrt(head_dim)
//
// Returns the attended values [batch, heads, seq_q, head_dim] and the
// attention weights [batch, heads, seq_q, seq_k].
func ScaledDotProductAttention[B tensor.Backend](
	query, key, value *tensor.Tensor[float32, B],
	mask *tensor.Tensor[float32, B],
	scale float32,
) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B]) {
	validateAttentionInputs(query, key, value)

	if scale == 0 {
		scale = float32(1.0 / math.Sqrt(float64(query.Shape()[3])))
	}

	// Q @ K^T over the trailing two dims.
	kT := key.Transpose(0, 1, 3, 2)
	scores := query.BatchMatMul(kT).MulScalar(scale)

	if mask != nil {
		scores = scores.Add(mask)
	}

	weights := scores.Softmax(-1)
	output := weights.BatchMatMul(value)

	return output, weights
}

func validateAttentionInputs[B tensor.Backend](
	query, key, value *tensor.Tensor[float32, B],
) {
	if len(query.Shape()) != 4 || len(key.Shape()) != 4 || len(value.Shape()) != 4 {
		panic("ScaledDotProductAttention: inputs must be 4D [batch, heads, seq, head_dim]")
	}
	if query.Shape()[3] != key.Shape()[3] {
		panic("ScaledDotProductAttention: query and key must have same head_dim")
	}
	if key.Shape()[2] != value.Shape()[2] {
		panic("ScaledDotProductAttention: key and value must have same seq length")
	}
}

// LookaheadMask builds a causal attention mask sized to the time dimension
// of x ([batch, time, features]). Position i may attend to positions j <= i;
// the upper triangle carries -inf so the softmax zeroes it out.
//
// Shape: [1, 1, time, time], broadcastable to [batch, heads, time, time].
// The mask is derived state: callers recompute it per forward call and must
// not cache it across inputs of different lengths.
func LookaheadMask[B tensor.Backend](x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if len(x.Shape()) != 3 {
		panic("LookaheadMask: input must be 3D [batch, time, features]")
	}
	seqLen := x.Shape()[1]

	mask := tensor.Zeros[float32](tensor.Shape{1, 1, seqLen, seqLen}, x.Backend())

	negInf := float32(math.Inf(-1))
	data := mask.Data()
	for i := 0; i < seqLen; i++ {
		for j := i + 1; j < seqLen; j++ {
			data[i*seqLen+j] = negInf
		}
	}

	return mask
}

// KeyPaddingMask converts a boolean padding mask [batch, time] (true at
// padded positions) into an additive attention mask [batch, 1, 1, time]
// with -inf at padded keys, broadcastable against the score tensor and
// combinable with LookaheadMask by addition.
func KeyPaddingMask[B tensor.Backend](mask *tensor.Tensor[bool, B]) *tensor.Tensor[float32, B] {
	shape := mask.Shape()
	if len(shape) != 2 {
		panic("KeyPaddingMask: mask must be 2D [batch, time]")
	}
	batch, seqLen := shape[0], shape[1]

	out := tensor.Zeros[float32](tensor.Shape{batch, 1, 1, seqLen}, mask.Backend())

	negInf := float32(math.Inf(-1))
	src := mask.Data()
	dst := out.Data()
	for i, padded := range src {
		if padded {
			dst[i] = negInf
		}
	}

	return out
}
