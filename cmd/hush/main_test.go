package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hush-ml/hush/internal/audio"
)

func writeTestWAV(t *testing.T, dir string, n int) string {
	t.Helper()
	path := filepath.Join(dir, "in.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, audio.WriteWAV(f, make([]float64, n), 8000))
	return path
}

func TestPickHeads(t *testing.T) {
	assert.Equal(t, 8, pickHeads(256))
	assert.Equal(t, 8, pickHeads(512))
	assert.Equal(t, 5, pickHeads(65))
	assert.Equal(t, 1, pickHeads(257)) // prime bin count
	assert.Equal(t, 1, pickHeads(1))
}

func TestRunEnhance_DefaultFrameLength(t *testing.T) {
	dir := t.TempDir()
	input := writeTestWAV(t, dir, 1536)
	output := filepath.Join(dir, "out.f32")

	// Default 512-sample frames give 257 bins; the auto head count must
	// produce a working model instead of panicking.
	err := runEnhance(zap.NewNop(), input, output, 512, 256, 0, 1, 0, 32, true)
	require.NoError(t, err)

	raw, err := os.ReadFile(output)
	require.NoError(t, err)
	// 5 frames of 257 float32 bins.
	assert.Len(t, raw, 5*257*4)
}

func TestRunEnhance_RejectsIncompatibleHeads(t *testing.T) {
	dir := t.TempDir()
	input := writeTestWAV(t, dir, 1536)
	output := filepath.Join(dir, "out.f32")

	// 257 bins cannot be split across 8 heads.
	err := runEnhance(zap.NewNop(), input, output, 512, 256, 0, 1, 8, 32, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "divisible")
}

func TestRunEnhance_InputTooShort(t *testing.T) {
	dir := t.TempDir()
	input := writeTestWAV(t, dir, 100)
	output := filepath.Join(dir, "out.f32")

	err := runEnhance(zap.NewNop(), input, output, 512, 256, 0, 1, 0, 32, true)
	require.Error(t, err)
}

func TestReadAudio_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.ogg")
	require.NoError(t, os.WriteFile(path, []byte("junk"), 0o644))

	_, _, err := readAudio(path)
	require.Error(t, err)
}
