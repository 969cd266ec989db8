// Copyright 2025 The Hush Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/hush-ml/hush/internal/nn"
	"github.com/hush-ml/hush/internal/tensor"
)

// MultiHeadAttention is multi-head scaled dot-product attention.
type MultiHeadAttention[B tensor.Backend] = nn.MultiHeadAttention[B]

// NewMultiHeadAttention creates a multi-head attention module.
// embedDim must be divisible by numHeads.
func NewMultiHeadAttention[B tensor.Backend](embedDim, numHeads int, backend B) *MultiHeadAttention[B] {
	return nn.NewMultiHeadAttention[B](embedDim, numHeads, backend)
}

// EncoderConfig holds the configuration for a transformer encoder stack.
type EncoderConfig[B tensor.Backend] = nn.EncoderConfig[B]

// TransformerEncoderLayer is a single post-norm encoder layer.
type TransformerEncoderLayer[B tensor.Backend] = nn.TransformerEncoderLayer[B]

// NewTransformerEncoderLayer creates one encoder layer.
func NewTransformerEncoderLayer[B tensor.Backend](config EncoderConfig[B], backend B) *TransformerEncoderLayer[B] {
	return nn.NewTransformerEncoderLayer[B](config, backend)
}

// TransformerEncoder is a stack of encoder layers with optional
// sinusoidal positional encoding.
type TransformerEncoder[B tensor.Backend] = nn.TransformerEncoder[B]

// NewTransformerEncoder creates an encoder stack from the config.
func NewTransformerEncoder[B tensor.Backend](config EncoderConfig[B], backend B) *TransformerEncoder[B] {
	return nn.NewTransformerEncoder[B](config, backend)
}

// ScaledDotProductAttention computes attention over 4D query, key and
// value tensors of shape [batch, heads, seq, head_dim]. A nil mask means
// unrestricted attention; scale 0 selects 1/sqrt(head_dim). Returns the
// attention output and the softmax weights.
func ScaledDotProductAttention[B tensor.Backend](
	query, key, value *tensor.Tensor[float32, B],
	mask *tensor.Tensor[float32, B],
	scale float32,
) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B]) {
	return nn.ScaledDotProductAttention[B](query, key, value, mask, scale)
}

// LookaheadMask builds an additive causal mask [1, 1, seq, seq] for a
// [batch, seq, features] input. Future positions hold -Inf.
func LookaheadMask[B tensor.Backend](x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return nn.LookaheadMask[B](x)
}

// KeyPaddingMask converts a boolean padding mask [batch, seq] (true at
// padded positions) into an additive mask [batch, 1, 1, seq].
func KeyPaddingMask[B tensor.Backend](mask *tensor.Tensor[bool, B]) *tensor.Tensor[float32, B] {
	return nn.KeyPaddingMask[B](mask)
}
