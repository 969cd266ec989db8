package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSTFT_Validation(t *testing.T) {
	_, err := NewSTFT(0, 128, 256)
	require.Error(t, err)

	_, err = NewSTFT(256, 0, 256)
	require.Error(t, err)

	_, err = NewSTFT(256, 128, 128)
	require.Error(t, err)

	stft, err := NewSTFT(256, 128, 256)
	require.NoError(t, err)
	assert.Equal(t, 129, stft.Bins())
}

func TestSTFT_NumFrames(t *testing.T) {
	stft, err := NewSTFT(256, 128, 256)
	require.NoError(t, err)

	assert.Equal(t, 0, stft.NumFrames(255))
	assert.Equal(t, 1, stft.NumFrames(256))
	assert.Equal(t, 1, stft.NumFrames(383))
	assert.Equal(t, 2, stft.NumFrames(384))
	assert.Equal(t, 9, stft.NumFrames(1280))
}

func TestSTFT_ConstantSignalPeaksAtDC(t *testing.T) {
	stft, err := NewSTFT(256, 128, 256)
	require.NoError(t, err)

	samples := make([]float64, 512)
	for i := range samples {
		samples[i] = 1
	}

	frames := stft.Spectrogram(samples)
	require.NotEmpty(t, frames)

	for _, frame := range frames {
		require.Len(t, frame, 129)
		for bin := 1; bin < len(frame); bin++ {
			assert.Less(t, frame[bin], frame[0])
		}
	}
}

func TestSTFT_SinePeaksAtExpectedBin(t *testing.T) {
	const (
		n       = 256
		binFreq = 16 // cycles per frame
	)
	stft, err := NewSTFT(n, n, n)
	require.NoError(t, err)

	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * binFreq * float64(i) / n)
	}

	frames := stft.Spectrogram(samples)
	require.Len(t, frames, 1)

	frame := frames[0]
	peak := 0
	for bin, mag := range frame {
		if mag > frame[peak] {
			peak = bin
		}
	}
	assert.Equal(t, binFreq, peak)
}

func TestSTFT_ZeroPadding(t *testing.T) {
	// FFT size larger than the frame pads with zeros and yields more bins.
	stft, err := NewSTFT(200, 100, 256)
	require.NoError(t, err)

	samples := make([]float64, 400)
	frames := stft.Spectrogram(samples)
	require.Len(t, frames, 3)
	assert.Len(t, frames[0], 129)
}

func TestFlatten(t *testing.T) {
	frames := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	flat := Flatten(frames)

	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, flat)
	assert.Nil(t, Flatten(nil))
}
