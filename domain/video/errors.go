package video

import "errors"

var (
	// ErrInvalidURL is returned when a URL does not match any supported video pattern
	ErrInvalidURL = errors.New("invalid YouTube URL")

	// ErrMetadataFetch is returned when the upstream metadata request fails
	ErrMetadataFetch = errors.New("failed to get video information")

	// ErrDurationExceeded is returned when a video is longer than the duration ceiling
	ErrDurationExceeded = errors.New("video is too long")

	// ErrTranscodeFailed is returned when the transcoding process reports an error
	ErrTranscodeFailed = errors.New("audio transcoding failed")

	// ErrEmptyOutput is returned when the transcoder succeeds but produces no usable file
	ErrEmptyOutput = errors.New("audio extraction produced empty output")
)
