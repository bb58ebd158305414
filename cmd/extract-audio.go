package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"whisper-audio-service/application/extraction"
	"whisper-audio-service/infrastructure/ffmpeg"
	"whisper-audio-service/infrastructure/scratch"
)

var extractURL string

var extractAudioCmd = &cobra.Command{
	Use:   "extract-audio",
	Short: "Extract audio from a YouTube video",
	Long: `Extract the audio track of a YouTube video into a mono 16 kHz WAV
file in the scratch directory, without starting the HTTP server.

Videos longer than the configured duration limit are rejected.

Example:
  whisper-audio-service extract-audio --url "https://www.youtube.com/watch?v=dQw4w9WgXcQ"`,
	RunE: runExtractAudio,
}

func init() {
	rootCmd.AddCommand(extractAudioCmd)
	extractAudioCmd.Flags().StringVar(&extractURL, "url", "", "YouTube video URL (required)")
	extractAudioCmd.MarkFlagRequired("url")
}

func runExtractAudio(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	ctx := cmd.Context()

	store, err := scratch.NewStore(cfg.Storage.ScratchDirectory)
	if err != nil {
		return err
	}

	metadata, streams, err := buildProviders(ctx, cfg)
	if err != nil {
		return err
	}

	transcoder := ffmpeg.NewTranscoder(ffmpeg.WithFFmpegPath(cfg.Extraction.FFmpegPath))
	verifyCtx, verifyCancel := context.WithTimeout(ctx, 5*time.Second)
	defer verifyCancel()
	if err := transcoder.VerifyInstalled(verifyCtx); err != nil {
		return fmt.Errorf("ffmpeg verification failed: %w", err)
	}

	service := extraction.NewService(metadata, streams, transcoder, store,
		cfg.Extraction.MaxDurationSeconds, zerolog.New(os.Stderr).With().Timestamp().Logger())

	return RunExtractAudioWithDependencies(ctx, service, store.Dir(), extractURL, os.Stdout)
}

// RunExtractAudioWithDependencies runs the extract-audio command with
// injected dependencies (for testing)
func RunExtractAudioWithDependencies(
	ctx context.Context,
	service *extraction.Service,
	scratchDir string,
	url string,
	output io.Writer,
) error {
	fmt.Fprintf(output, "Extracting audio from %s...\n", url)

	result, err := service.Extract(ctx, url)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Successfully created: %s/%s (%d bytes, %d seconds)\n",
		scratchDir, result.FileName, result.Size, result.Duration)
	return nil
}
