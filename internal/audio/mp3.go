package audio

import (
	"fmt"
	"io"

	mp3 "github.com/hajimehoshi/go-mp3"
)

// ReadMP3 decodes an MP3 stream to mono float64 samples in [-1, 1].
// go-mp3 always emits 16-bit stereo; the two channels are averaged.
//
// Returns the samples and the sample rate.
func ReadMP3(r io.Reader) ([]float64, int, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, fmt.Errorf("mp3: creating decoder: %w", err)
	}

	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return nil, 0, fmt.Errorf("mp3: decoding: %w", err)
	}

	return decodePCM16(pcm, 2), decoder.SampleRate(), nil
}
