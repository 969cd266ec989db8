// Copyright 2025 The Hush Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package enhance provides the speech enhancement encoder for Hush.
//
// # Overview
//
// The encoder maps noisy spectral features [batch, time, input_size] to
// clean per-frame magnitude estimates [batch, time, output_size] with a
// transformer encoder stack. Causal mode restricts each frame to current
// and past context so the model can run on streaming audio.
//
// # Basic Usage
//
//	backend := cpu.New()
//	model := enhance.New(enhance.DefaultConfig[*cpu.Backend](257, 257), backend)
//	model.Eval()
//	clean := model.Forward(noisy, nil)
package enhance

import (
	"github.com/hush-ml/hush/internal/enhance"
	"github.com/hush-ml/hush/internal/tensor"
)

// Config holds the encoder hyperparameters.
type Config[B tensor.Backend] = enhance.Config[B]

// DefaultConfig returns the standard configuration for the given feature
// sizes: 8 layers, 8 heads, FFN dim 512, dropout 0.1, causal attention.
func DefaultConfig[B tensor.Backend](outputSize, inputSize int) Config[B] {
	return enhance.DefaultConfig[B](outputSize, inputSize)
}

// Encoder is the speech enhancement model.
type Encoder[B tensor.Backend] = enhance.Encoder[B]

// New creates an enhancement encoder from the config.
func New[B tensor.Backend](config Config[B], backend B) *Encoder[B] {
	return enhance.New[B](config, backend)
}
