package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"whisper-audio-service/application/extraction"
	"whisper-audio-service/application/retention"
	"whisper-audio-service/domain/video"
	"whisper-audio-service/infrastructure/config"
	"whisper-audio-service/infrastructure/ffmpeg"
	"whisper-audio-service/infrastructure/scratch"
	"whisper-audio-service/infrastructure/youtube"
	"whisper-audio-service/infrastructure/youtubeapi"
	"whisper-audio-service/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the audio extraction HTTP server",
	Long: `Start the HTTP server exposing the extraction API:

  POST /info           video metadata for a URL
  POST /extract-audio  extract mono 16 kHz WAV audio
  GET  /download/:file download an extracted artifact
  GET  /health         liveness check

Extracted files live in the scratch directory and are removed after
download or by the hourly retention sweep.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func newLogger() zerolog.Logger {
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// buildProviders selects the metadata provider from configuration.
// Streams always come from the player API; the Data API has no stream
// endpoint.
func buildProviders(ctx context.Context, cfg *config.Config) (video.MetadataProvider, video.StreamProvider, error) {
	yt := youtube.NewClient()

	if cfg.YouTube.Provider == "api" {
		p, err := youtubeapi.NewProvider(ctx, cfg.YouTube.APIKey, cfg.YouTube.CredentialsFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize youtube api provider: %w", err)
		}
		return p, yt, nil
	}

	return yt, yt, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	logger := newLogger()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

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
	if err := transcoder.VerifyInstalled(verifyCtx); err != nil {
		logger.Warn().Err(err).Msg("ffmpeg not found; extraction requests will fail")
	} else {
		logger.Info().Msg("ffmpeg is available and ready")
	}
	verifyCancel()

	extractor := extraction.NewService(metadata, streams, transcoder, store,
		cfg.Extraction.MaxDurationSeconds, logger)

	sweeper := retention.NewSweeper(store,
		cfg.Storage.SweepInterval.Std(), cfg.Storage.MaxArtifactAge.Std(), logger)
	go sweeper.Run(ctx)

	srv := server.New(extractor, store, cfg.Storage.DownloadGraceDelay.Std(), logger)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown on interrupt.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info().Msg("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown failed")
		}
		cancel()
	}()

	logger.Info().
		Int("port", cfg.Server.Port).
		Str("scratch_dir", store.Dir()).
		Msg("audio extraction server running")

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
