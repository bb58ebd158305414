package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"whisper-audio-service/domain/video"
)

// CommandRunner defines the interface for running external commands
// This allows mocking exec.Command in tests
type CommandRunner interface {
	// Run executes a command with stdin connected to in (may be nil).
	Run(ctx context.Context, in io.Reader, name string, args ...string) error
	// Output executes a command and returns its output.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecCommandRunner is the production implementation using os/exec
type ExecCommandRunner struct{}

// Run executes a command and returns any error, with stderr captured
// so transcoder failures carry the process diagnostics.
func (r *ExecCommandRunner) Run(ctx context.Context, in io.Reader, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = in
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			// Keep only the tail; ffmpeg banners are long.
			if idx := strings.LastIndexByte(detail, '\n'); idx >= 0 {
				detail = detail[idx+1:]
			}
			return fmt.Errorf("%w: %s", err, detail)
		}
		return err
	}
	return nil
}

// Output executes a command and returns its output
func (r *ExecCommandRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.Output()
}

// Transcoder implements video.AudioTranscoder using ffmpeg. The output
// parameters are fixed: speech-recognition models consume exactly
// mono 16 kHz WAV, so no configurability is exposed.
type Transcoder struct {
	ffmpegPath string
	runner     CommandRunner
}

// TranscoderOption is a functional option for configuring Transcoder
type TranscoderOption func(*Transcoder)

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) TranscoderOption {
	return func(t *Transcoder) {
		t.ffmpegPath = path
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) TranscoderOption {
	return func(t *Transcoder) {
		t.runner = runner
	}
}

// NewTranscoder creates a new FFmpeg-based audio transcoder
func NewTranscoder(opts ...TranscoderOption) *Transcoder {
	t := &Transcoder{
		ffmpegPath: "ffmpeg",
		runner:     &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Transcode implements video.AudioTranscoder. The source stream is fed
// to ffmpeg on stdin and the WAV output is written directly to
// outputPath; upstream read errors surface as transcoder errors.
func (t *Transcoder) Transcode(ctx context.Context, in io.Reader, outputPath string) error {
	args := []string{
		"-i", "pipe:0",
		"-vn",          // No video
		"-ab", "128k",  // Audio bitrate
		"-ac", "1",     // Mono
		"-ar", "16000", // 16 kHz sample rate
		"-f", "wav",    // WAV container
		"-y",           // Overwrite output file if it exists
		outputPath,
	}

	if err := t.runner.Run(ctx, in, t.ffmpegPath, args...); err != nil {
		return fmt.Errorf("%w: %v", video.ErrTranscodeFailed, err)
	}

	return nil
}

// VerifyInstalled checks that ffmpeg is available
func (t *Transcoder) VerifyInstalled(ctx context.Context) error {
	_, err := t.runner.Output(ctx, t.ffmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

// Ensure Transcoder implements video.AudioTranscoder
var _ video.AudioTranscoder = (*Transcoder)(nil)
