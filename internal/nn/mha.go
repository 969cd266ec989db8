package nn

import (
	"fmt"

	"github.com/hush-ml/hush/internal/tensor"
)

// MultiHeadAttention implements the multi-head attention mechanism:
//
//	MHA(Q, K, V) = Concat(head_1, ..., head_h) * W_O
//	head_i = SDPA(Q*W_Q_i, K*W_K_i, V*W_V_i)
//
// For self-attention, pass the same tensor for query, key and value.
type MultiHeadAttention[B tensor.Backend] struct {
	WQ       *Linear[B]
	WK       *Linear[B]
	WV       *Linear[B]
	WO       *Linear[B]
	NumHeads int
	HeadDim  int
	EmbedDim int
	backend  B
}

// NewMultiHeadAttention creates a multi-head attention module.
// embedDim must be divisible by numHeads; headDim = embedDim / numHeads.
func NewMultiHeadAttention[B tensor.Backend](
	embedDim, numHeads int,
	backend B,
) *MultiHeadAttention[B] {
	if numHeads <= 0 {
		panic(fmt.Sprintf("MultiHeadAttention: num_heads must be positive, got %d", numHeads))
	}
	if embedDim%numHeads != 0 {
		panic(fmt.Sprintf("MultiHeadAttention: embed_dim (%d) must be divisible by num_heads (%d)", embedDim, numHeads))
	}

	return &MultiHeadAttention[B]{
		WQ:       NewLinear[B](embedDim, embedDim, backend),
		WK:       NewLinear[B](embedDim, embedDim, backend),
		WV:       NewLinear[B](embedDim, embedDim, backend),
		WO:       NewLinear[B](embedDim, embedDim, backend),
		NumHeads: numHeads,
		HeadDim:  embedDim / numHeads,
		EmbedDim: embedDim,
		backend:  backend,
	}
}

// Forward computes multi-head attention, discarding the attention weights.
//
// Shapes:
//   - query: [batch, seq_q, embed_dim]
//   - key, value: [batch, seq_k, embed_dim]
//   - mask: optional additive mask broadcastable to
//     [batch, heads, seq_q, seq_k], or nil
//   - output: [batch, seq_q, embed_dim]
func (m *MultiHeadAttention[B]) Forward(
	query, key, value *tensor.Tensor[float32, B],
	mask *tensor.Tensor[float32, B],
) *tensor.Tensor[float32, B] {
	output, _ := m.ForwardWithWeights(query, key, value, mask)
	return output
}

// ForwardWithWeights computes multi-head attention and additionally returns
// the attention weights [batch, heads, seq_q, seq_k] for diagnostics.
func (m *MultiHeadAttention[B]) ForwardWithWeights(
	query, key, value *tensor.Tensor[float32, B],
	mask *tensor.Tensor[float32, B],
) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B]) {
	batch := query.Shape()[0]
	seqQ := query.Shape()[1]
	seqK := key.Shape()[1]

	// Project and split into heads:
	// [batch, seq, embed] -> [batch, heads, seq, head_dim]
	q := m.WQ.Forward(query).Reshape(batch, seqQ, m.NumHeads, m.HeadDim).Transpose(0, 2, 1, 3)
	k := m.WK.Forward(key).Reshape(batch, seqK, m.NumHeads, m.HeadDim).Transpose(0, 2, 1, 3)
	v := m.WV.Forward(value).Reshape(batch, seqK, m.NumHeads, m.HeadDim).Transpose(0, 2, 1, 3)

	attnOut, weights := ScaledDotProductAttention(q, k, v, mask, 0)

	// Merge heads back and project.
	attnOut = attnOut.Transpose(0, 2, 1, 3).Reshape(batch, seqQ, m.EmbedDim)
	output := m.WO.Forward(attnOut)

	return output, weights
}

// Parameters returns all trainable parameters (WQ, WK, WV, WO).
func (m *MultiHeadAttention[B]) Parameters() []*Parameter[B] {
	params := make([]*Parameter[B], 0, 8)
	params = append(params, m.WQ.Parameters()...)
	params = append(params, m.WK.Parameters()...)
	params = append(params, m.WV.Parameters()...)
	params = append(params, m.WO.Parameters()...)
	return params
}
