// Copyright 2025 The Hush Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the CPU compute backend for Hush.
//
// The CPU backend implements all tensor operations in pure Go with
// gonum BLAS for matrix multiplication. It is always available and
// requires no hardware drivers.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
package cpu

import (
	internalcpu "github.com/hush-ml/hush/internal/backend/cpu"
	"github.com/hush-ml/hush/internal/tensor"
)

// Backend is the CPU compute backend.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements the tensor.Backend interface.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
func New() *Backend {
	return internalcpu.New()
}
