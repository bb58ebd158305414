package extraction

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"whisper-audio-service/domain/storage"
	"whisper-audio-service/domain/video"
)

// Result contains the outcome of a successful audio extraction
type Result struct {
	FileName string
	Size     int64
	Duration int
}

// Service coordinates the extraction pipeline: resolve, fetch
// metadata, enforce the duration ceiling, stream, transcode, verify.
type Service struct {
	metadata    video.MetadataProvider
	streams     video.StreamProvider
	transcoder  video.AudioTranscoder
	store       storage.ArtifactStore
	maxDuration int
	logger      zerolog.Logger
}

// NewService creates a new extraction Service. maxDuration is the
// ceiling in seconds past which extraction requests are rejected.
func NewService(
	metadata video.MetadataProvider,
	streams video.StreamProvider,
	transcoder video.AudioTranscoder,
	store storage.ArtifactStore,
	maxDuration int,
	logger zerolog.Logger,
) *Service {
	return &Service{
		metadata:    metadata,
		streams:     streams,
		transcoder:  transcoder,
		store:       store,
		maxDuration: maxDuration,
		logger:      logger,
	}
}

// Info validates the URL and fetches the video's metadata snapshot.
func (s *Service) Info(ctx context.Context, url string) (*video.Metadata, error) {
	ref, err := video.ResolveID(url)
	if err != nil {
		return nil, err
	}
	return s.metadata.Fetch(ctx, ref)
}

// Extract runs the full pipeline for one URL and returns the artifact
// filename, its byte size and the source duration.
//
// Failures before the stream opens leave no artifact behind. Later
// failures may leave a partial file; it is not removed here — the
// retention sweeper owns reclamation of anything left in the store.
func (s *Service) Extract(ctx context.Context, url string) (*Result, error) {
	ref, err := video.ResolveID(url)
	if err != nil {
		return nil, err
	}

	md, err := s.metadata.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("video_id", ref.ID).
		Int("duration", md.Duration).
		Msg("starting audio extraction")

	if md.Duration > s.maxDuration {
		s.logger.Info().
			Str("video_id", ref.ID).
			Int("duration", md.Duration).
			Int("max_duration", s.maxDuration).
			Msg("video rejected: over duration ceiling")
		return nil, fmt.Errorf("%w: %d seconds exceeds the %d second limit",
			video.ErrDurationExceeded, md.Duration, s.maxDuration)
	}

	fileName := storage.ArtifactName(ref.ID)
	outputPath, err := s.store.Path(fileName)
	if err != nil {
		return nil, err
	}

	stream, err := s.streams.OpenAudioStream(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", video.ErrTranscodeFailed, err)
	}
	defer stream.Close()

	if err := s.transcoder.Transcode(ctx, stream, outputPath); err != nil {
		return nil, err
	}

	// The transcoder can report success while writing nothing if the
	// source stream was empty, so verify the artifact independently.
	size, err := s.store.Size(fileName)
	if err != nil {
		return nil, fmt.Errorf("%w: audio file was not created", video.ErrEmptyOutput)
	}
	if size == 0 {
		return nil, fmt.Errorf("%w: audio file is empty", video.ErrEmptyOutput)
	}

	s.logger.Info().
		Str("video_id", ref.ID).
		Str("file", fileName).
		Int64("size", size).
		Msg("audio extraction completed")

	return &Result{
		FileName: fileName,
		Size:     size,
		Duration: md.Duration,
	}, nil
}
