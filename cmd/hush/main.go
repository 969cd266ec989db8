// Package main provides the Hush speech enhancement CLI.
package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hush-ml/hush/backend/cpu"
	"github.com/hush-ml/hush/enhance"
	"github.com/hush-ml/hush/internal/audio"
	"github.com/hush-ml/hush/internal/dsp"
	"github.com/hush-ml/hush/internal/logging"
	"github.com/hush-ml/hush/tensor"
)

const version = "v0.1.0-dev"

var (
	logLevel  string
	logFormat string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "hush",
		Short:         "Transformer-based speech enhancement",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")

	rootCmd.AddCommand(versionCmd(), enhanceCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("hush %s\n", version)
		},
	}
}

func enhanceCmd() *cobra.Command {
	var (
		input       string
		output      string
		frameLength int
		hopLength   int
		fftSize     int
		numLayers   int
		numHeads    int
		ffnDim      int
		causal      bool
	)

	cmd := &cobra.Command{
		Use:   "enhance",
		Short: "Enhance a noisy recording and write per-frame magnitudes",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(logging.Config{Level: logLevel, Format: logFormat})
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			return runEnhance(logger, input, output, frameLength, hopLength, fftSize,
				numLayers, numHeads, ffnDim, causal)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input audio file (.wav or .mp3)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file for enhanced magnitudes (float32 LE)")
	cmd.Flags().IntVar(&frameLength, "frame-length", 512, "analysis window length in samples")
	cmd.Flags().IntVar(&hopLength, "hop-length", 256, "hop between frames in samples")
	cmd.Flags().IntVar(&fftSize, "fft-size", 0, "FFT size (0 uses frame length)")
	cmd.Flags().IntVar(&numLayers, "layers", 8, "number of encoder layers")
	cmd.Flags().IntVar(&numHeads, "heads", 0, "number of attention heads (0 picks the largest count up to 8 that divides the bin count)")
	cmd.Flags().IntVar(&ffnDim, "ffn-dim", 512, "feed-forward hidden dimension")
	cmd.Flags().BoolVar(&causal, "causal", true, "restrict attention to past context")
	cmd.MarkFlagRequired("input")  //nolint:errcheck
	cmd.MarkFlagRequired("output") //nolint:errcheck

	return cmd
}

func runEnhance(logger *zap.Logger, input, output string, frameLength, hopLength, fftSize,
	numLayers, numHeads, ffnDim int, causal bool) error {
	samples, sampleRate, err := readAudio(input)
	if err != nil {
		return fmt.Errorf("reading %s: %w", input, err)
	}
	logger.Info("decoded audio",
		zap.String("file", input),
		zap.Int("samples", len(samples)),
		zap.Int("sample_rate", sampleRate),
	)

	if fftSize == 0 {
		fftSize = frameLength
	}
	stft, err := dsp.NewSTFT(frameLength, hopLength, fftSize)
	if err != nil {
		return err
	}

	frames := stft.Spectrogram(samples)
	if len(frames) == 0 {
		return fmt.Errorf("input too short: need at least %d samples, got %d", frameLength, len(samples))
	}
	bins := stft.Bins()
	logger.Info("computed spectrogram", zap.Int("frames", len(frames)), zap.Int("bins", bins))

	// The encoder width equals the bin count, so the head count must
	// divide it.
	if numHeads == 0 {
		numHeads = pickHeads(bins)
	} else if bins%numHeads != 0 {
		return fmt.Errorf("bin count %d is not divisible by %d heads; choose --heads dividing %d or adjust --fft-size", bins, numHeads, bins)
	}

	backend := cpu.New()
	noisy, err := tensor.FromSlice(dsp.Flatten(frames), tensor.Shape{1, len(frames), bins}, backend)
	if err != nil {
		return err
	}

	config := enhance.DefaultConfig[*cpu.Backend](bins, bins)
	config.NumLayers = numLayers
	config.NumHeads = numHeads
	config.FFNDim = ffnDim
	config.Causal = causal

	model := enhance.New(config, backend)
	model.Eval()

	clean := model.Forward(noisy, nil)
	logger.Info("enhanced features",
		zap.Any("shape", clean.Shape()),
		zap.Int("layers", numLayers),
		zap.Int("heads", numHeads),
		zap.Bool("causal", causal),
	)

	if err := writeMagnitudes(output, clean.Data()); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	logger.Info("wrote enhanced magnitudes", zap.String("file", output))
	return nil
}

// pickHeads returns the largest head count up to 8 that divides bins.
// Odd bin counts (like the 257 of a 512-point FFT) fall back to 1.
func pickHeads(bins int) int {
	for h := 8; h > 1; h-- {
		if bins%h == 0 {
			return h
		}
	}
	return 1
}

func readAudio(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return audio.ReadWAV(f)
	case ".mp3":
		return audio.ReadMP3(f)
	default:
		return nil, 0, fmt.Errorf("unsupported audio format: %s", filepath.Ext(path))
	}
}

func writeMagnitudes(path string, data []float32) error {
	buf := make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return os.WriteFile(path, buf, 0o644)
}
