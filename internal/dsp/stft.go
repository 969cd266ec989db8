// Package dsp computes the spectral features the enhancement models
// consume: framed, Hann-windowed short-time Fourier magnitudes.
package dsp

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// STFT computes magnitude spectrograms over a sliding window.
//
// Frames of FrameLength samples are taken every HopLength samples, Hann
// windowed, zero-padded to FFTSize and transformed with a real FFT. Each
// frame yields FFTSize/2+1 magnitude bins.
type STFT struct {
	FrameLength int
	HopLength   int
	FFTSize     int

	fft *fourier.FFT
	win []float64 // pre-computed Hann coefficients, length FrameLength
}

// NewSTFT creates an STFT analyzer. FFTSize must be >= FrameLength.
func NewSTFT(frameLength, hopLength, fftSize int) (*STFT, error) {
	if frameLength <= 0 || hopLength <= 0 {
		return nil, fmt.Errorf("stft: frame length (%d) and hop length (%d) must be positive", frameLength, hopLength)
	}
	if fftSize < frameLength {
		return nil, fmt.Errorf("stft: fft size %d smaller than frame length %d", fftSize, frameLength)
	}

	// window.Hann scales a sequence in place; applied to ones it yields
	// the raw coefficients.
	win := make([]float64, frameLength)
	for i := range win {
		win[i] = 1
	}
	window.Hann(win)

	return &STFT{
		FrameLength: frameLength,
		HopLength:   hopLength,
		FFTSize:     fftSize,
		fft:         fourier.NewFFT(fftSize),
		win:         win,
	}, nil
}

// Bins returns the number of magnitude bins per frame (FFTSize/2 + 1).
func (s *STFT) Bins() int {
	return s.FFTSize/2 + 1
}

// NumFrames returns how many full frames fit into n samples.
func (s *STFT) NumFrames(n int) int {
	if n < s.FrameLength {
		return 0
	}
	return 1 + (n-s.FrameLength)/s.HopLength
}

// Spectrogram computes per-frame magnitude spectra of samples.
// The result is [NumFrames(len(samples))][Bins()].
func (s *STFT) Spectrogram(samples []float64) [][]float64 {
	numFrames := s.NumFrames(len(samples))
	frames := make([][]float64, numFrames)

	buf := make([]float64, s.FFTSize)
	coeffs := make([]complex128, s.Bins())

	for f := 0; f < numFrames; f++ {
		start := f * s.HopLength

		for i := 0; i < s.FrameLength; i++ {
			buf[i] = samples[start+i] * s.win[i]
		}
		for i := s.FrameLength; i < s.FFTSize; i++ {
			buf[i] = 0
		}

		coeffs = s.fft.Coefficients(coeffs, buf)

		mags := make([]float64, len(coeffs))
		for i, c := range coeffs {
			mags[i] = cmplx.Abs(c)
		}
		frames[f] = mags
	}

	return frames
}

// Flatten converts a spectrogram into a flat float32 slice in frame-major
// order, ready to load into a [1, frames, bins] tensor.
func Flatten(frames [][]float64) []float32 {
	if len(frames) == 0 {
		return nil
	}
	out := make([]float32, 0, len(frames)*len(frames[0]))
	for _, frame := range frames {
		for _, v := range frame {
			out = append(out, float32(v))
		}
	}
	return out
}
