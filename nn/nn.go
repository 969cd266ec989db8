// Copyright 2025 The Hush Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network building blocks for Hush.
//
// # Overview
//
// The package exposes the layers the speech models are built from:
//   - Linear: fully connected layer with optional bias
//   - LayerNorm: layer normalization
//   - ReLU, LeakyReLU, Sigmoid, Identity: activation modules
//   - Dropout: inverted dropout with train/eval modes
//   - MultiHeadAttention: scaled dot-product attention over heads
//   - FFN: position-wise feed-forward network
//   - TransformerEncoder: post-norm encoder stack
//
// # Basic Usage
//
//	backend := cpu.New()
//	layer := nn.NewLinear(256, 512, backend)
//	y := layer.Forward(x)
//
// All modules implement the Module interface and panic on invalid
// construction arguments or shape mismatches.
package nn

import (
	"github.com/hush-ml/hush/internal/nn"
	"github.com/hush-ml/hush/internal/tensor"
)

// Module is the interface all neural network modules implement.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter is a named trainable tensor.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a named parameter wrapping a tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter[B](name, t)
}

// Linear is a fully connected layer computing y = x @ W^T + b.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a linear layer with bias.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B) *Linear[B] {
	return nn.NewLinear[B](inFeatures, outFeatures, backend)
}

// NewLinearNoBias creates a linear layer without a bias term.
func NewLinearNoBias[B tensor.Backend](inFeatures, outFeatures int, backend B) *Linear[B] {
	return nn.NewLinearNoBias[B](inFeatures, outFeatures, backend)
}

// LayerNorm normalizes over the last dimension with learnable scale and shift.
type LayerNorm[B tensor.Backend] = nn.LayerNorm[B]

// NewLayerNorm creates a layer normalization module.
func NewLayerNorm[B tensor.Backend](normalizedShape int, epsilon float32, backend B) *LayerNorm[B] {
	return nn.NewLayerNorm[B](normalizedShape, epsilon, backend)
}

// ReLU is the rectified linear unit activation.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// LeakyReLU is the leaky rectified linear unit activation.
type LeakyReLU[B tensor.Backend] = nn.LeakyReLU[B]

// NewLeakyReLU creates a LeakyReLU activation with the default negative slope.
func NewLeakyReLU[B tensor.Backend]() *LeakyReLU[B] {
	return nn.NewLeakyReLU[B]()
}

// Sigmoid is the logistic sigmoid activation.
type Sigmoid[B tensor.Backend] = nn.Sigmoid[B]

// NewSigmoid creates a sigmoid activation module.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return nn.NewSigmoid[B]()
}

// Identity passes its input through unchanged.
type Identity[B tensor.Backend] = nn.Identity[B]

// NewIdentity creates an identity module.
func NewIdentity[B tensor.Backend]() *Identity[B] {
	return nn.NewIdentity[B]()
}

// Dropout randomly zeroes elements during training.
type Dropout[B tensor.Backend] = nn.Dropout[B]

// NewDropout creates a dropout module with drop probability p in [0, 1).
func NewDropout[B tensor.Backend](p float32) *Dropout[B] {
	return nn.NewDropout[B](p)
}

// FFN is the position-wise feed-forward network used inside encoder layers.
type FFN[B tensor.Backend] = nn.FFN[B]

// NewFFN creates a feed-forward network. A nil activation defaults to LeakyReLU.
func NewFFN[B tensor.Backend](embedDim, ffnDim int, activation Module[B], backend B) *FFN[B] {
	return nn.NewFFN[B](embedDim, ffnDim, activation, backend)
}

// SinusoidalPositionalEncoding precomputes fixed sinusoidal position embeddings.
type SinusoidalPositionalEncoding[B tensor.Backend] = nn.SinusoidalPositionalEncoding[B]

// NewSinusoidalPositionalEncoding creates positional encodings up to maxLen.
func NewSinusoidalPositionalEncoding[B tensor.Backend](maxLen, dim int, backend B) *SinusoidalPositionalEncoding[B] {
	return nn.NewSinusoidalPositionalEncoding[B](maxLen, dim, backend)
}
