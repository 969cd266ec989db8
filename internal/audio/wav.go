// Package audio decodes input recordings into mono float64 sample streams
// for the DSP front-end. WAV (PCM16) is parsed directly; MP3 goes through
// hajimehoshi/go-mp3.
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// ReadWAV decodes a PCM16 WAV stream. Multi-channel audio is averaged down
// to mono. Samples are scaled to [-1, 1].
//
// Returns the samples and the sample rate.
func ReadWAV(r io.Reader) ([]float64, int, error) {
	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, 0, fmt.Errorf("wav: reading RIFF header: %w", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("wav: not a RIFF/WAVE stream")
	}

	var (
		numChannels int
		sampleRate  int
		bitsPerSamp int
		haveFmt     bool
	)

	for {
		var chunkHeader [8]byte
		if _, err := io.ReadFull(r, chunkHeader[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, 0, fmt.Errorf("wav: no data chunk found")
			}
			return nil, 0, fmt.Errorf("wav: reading chunk header: %w", err)
		}
		chunkID := string(chunkHeader[0:4])
		chunkSize := int(binary.LittleEndian.Uint32(chunkHeader[4:8]))

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, 0, fmt.Errorf("wav: fmt chunk too short (%d bytes, need 16)", chunkSize)
			}
			body := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, 0, fmt.Errorf("wav: reading fmt chunk: %w", err)
			}
			if err := skipPadByte(r, chunkSize); err != nil {
				return nil, 0, err
			}
			format := binary.LittleEndian.Uint16(body[0:2])
			if format != 1 {
				return nil, 0, fmt.Errorf("wav: unsupported format tag %d (only PCM)", format)
			}
			numChannels = int(binary.LittleEndian.Uint16(body[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			bitsPerSamp = int(binary.LittleEndian.Uint16(body[14:16]))
			if bitsPerSamp != 16 {
				return nil, 0, fmt.Errorf("wav: unsupported bit depth %d (only 16)", bitsPerSamp)
			}
			if numChannels <= 0 {
				return nil, 0, fmt.Errorf("wav: invalid channel count %d", numChannels)
			}
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, 0, fmt.Errorf("wav: data chunk before fmt chunk")
			}
			body := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, 0, fmt.Errorf("wav: reading data chunk: %w", err)
			}
			return decodePCM16(body, numChannels), sampleRate, nil

		default:
			// Skip unknown chunks (LIST, fact, ...).
			if _, err := io.CopyN(io.Discard, r, int64(chunkSize)); err != nil {
				return nil, 0, fmt.Errorf("wav: skipping %q chunk: %w", chunkID, err)
			}
			if err := skipPadByte(r, chunkSize); err != nil {
				return nil, 0, err
			}
		}
	}
}

// skipPadByte consumes the RIFF pad byte that follows odd-sized chunks so
// the next chunk header is read aligned.
func skipPadByte(r io.Reader, chunkSize int) error {
	if chunkSize%2 == 0 {
		return nil
	}
	if _, err := io.CopyN(io.Discard, r, 1); err != nil {
		return fmt.Errorf("wav: skipping chunk pad byte: %w", err)
	}
	return nil
}

// WriteWAV encodes mono float64 samples in [-1, 1] as a PCM16 WAV stream.
func WriteWAV(w io.Writer, samples []float64, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("wav: invalid sample rate %d", sampleRate)
	}

	dataSize := len(samples) * 2
	var header [44]byte
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataSize))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)                    // fmt chunk size
	binary.LittleEndian.PutUint16(header[20:22], 1)                     // PCM
	binary.LittleEndian.PutUint16(header[22:24], 1)                     // mono
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))    // sample rate
	binary.LittleEndian.PutUint32(header[28:32], uint32(sampleRate*2))  // byte rate
	binary.LittleEndian.PutUint16(header[32:34], 2)                     // block align
	binary.LittleEndian.PutUint16(header[34:36], 16)                    // bits per sample
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataSize))

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("wav: writing header: %w", err)
	}

	buf := make([]byte, dataSize)
	for i, s := range samples {
		v := math.Max(-1, math.Min(1, s))
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(int16(v*32767)))
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("wav: writing samples: %w", err)
	}
	return nil
}

// decodePCM16 converts interleaved little-endian PCM16 bytes to mono
// float64 samples in [-1, 1], averaging channels.
func decodePCM16(data []byte, numChannels int) []float64 {
	frameBytes := 2 * numChannels
	numFrames := len(data) / frameBytes
	samples := make([]float64, numFrames)

	for f := 0; f < numFrames; f++ {
		sum := 0.0
		for c := 0; c < numChannels; c++ {
			off := f*frameBytes + c*2
			s := int16(binary.LittleEndian.Uint16(data[off:]))
			sum += float64(s) / 32768.0
		}
		samples[f] = sum / float64(numChannels)
	}

	return samples
}
