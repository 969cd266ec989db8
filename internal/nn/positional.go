package nn

import (
	"fmt"
	"math"

	"github.com/hush-ml/hush/internal/tensor"
)

// SinusoidalPositionalEncoding implements the fixed positional encodings
// from "Attention is All You Need":
//
//	PE(pos, 2i)   = sin(pos / 10000^(2i/d))
//	PE(pos, 2i+1) = cos(pos / 10000^(2i/d))
//
// Encodings are pre-computed up to MaxLen and added to the input sequence.
// The encoder stack uses this only when positional encoding is enabled;
// the enhancement model disables it and leaves positional information to
// its optional embedding front-end.
type SinusoidalPositionalEncoding[B tensor.Backend] struct {
	Encoding *tensor.Tensor[float32, B] // [max_len, dim]
	MaxLen   int
	Dim      int
	backend  B
}

// NewSinusoidalPositionalEncoding pre-computes encodings for sequences up
// to maxLen positions of the given dimensionality.
func NewSinusoidalPositionalEncoding[B tensor.Backend](maxLen, dim int, backend B) *SinusoidalPositionalEncoding[B] {
	if maxLen <= 0 {
		panic(fmt.Sprintf("SinusoidalPositionalEncoding: maxLen must be positive, got %d", maxLen))
	}
	if dim <= 0 {
		panic(fmt.Sprintf("SinusoidalPositionalEncoding: dim must be positive, got %d", dim))
	}

	encodings := make([]float32, maxLen*dim)
	for pos := 0; pos < maxLen; pos++ {
		for i := 0; i < dim; i++ {
			angle := float64(pos) / math.Pow(10000.0, float64(2*(i/2))/float64(dim))
			idx := pos*dim + i
			if i%2 == 0 {
				encodings[idx] = float32(math.Sin(angle))
			} else {
				encodings[idx] = float32(math.Cos(angle))
			}
		}
	}

	encoding, err := tensor.FromSlice[float32, B](encodings, tensor.Shape{maxLen, dim}, backend)
	if err != nil {
		panic(fmt.Sprintf("SinusoidalPositionalEncoding: %v", err))
	}

	return &SinusoidalPositionalEncoding[B]{
		Encoding: encoding,
		MaxLen:   maxLen,
		Dim:      dim,
		backend:  backend,
	}
}

// Forward returns the encodings for the first seqLen positions with shape
// [1, seqLen, dim], ready to broadcast over a batch.
// Panics if seqLen exceeds MaxLen.
func (s *SinusoidalPositionalEncoding[B]) Forward(seqLen int) *tensor.Tensor[float32, B] {
	if seqLen > s.MaxLen {
		panic(fmt.Sprintf("SinusoidalPositionalEncoding: seqLen %d exceeds MaxLen %d", seqLen, s.MaxLen))
	}

	data := make([]float32, seqLen*s.Dim)
	copy(data, s.Encoding.Data()[:seqLen*s.Dim])

	out, err := tensor.FromSlice[float32, B](data, tensor.Shape{1, seqLen, s.Dim}, s.backend)
	if err != nil {
		panic(fmt.Sprintf("SinusoidalPositionalEncoding: %v", err))
	}
	return out
}

// Parameters returns nil (the encodings are fixed, not learned).
func (s *SinusoidalPositionalEncoding[B]) Parameters() []*Parameter[B] {
	return nil
}
