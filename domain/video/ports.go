package video

import (
	"context"
	"io"
)

// MetadataProvider fetches a video's public details from the source
// platform. This is a port that can be implemented by different
// infrastructure adapters.
type MetadataProvider interface {
	// Fetch performs one outbound network request and returns the
	// metadata snapshot for the referenced video.
	Fetch(ctx context.Context, ref Reference) (*Metadata, error)
}

// StreamProvider opens an audio-only byte stream for a video.
type StreamProvider interface {
	// OpenAudioStream returns a stream the caller must close.
	OpenAudioStream(ctx context.Context, ref Reference) (io.ReadCloser, error)
}

// AudioTranscoder converts a source audio stream into the fixed target
// format, writing directly to outputPath.
type AudioTranscoder interface {
	Transcode(ctx context.Context, in io.Reader, outputPath string) error
}
