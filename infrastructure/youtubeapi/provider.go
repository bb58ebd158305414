package youtubeapi

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"whisper-audio-service/domain/video"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	youtube "google.golang.org/api/youtube/v3"
)

// VideoService defines the interface for YouTube Data API video lookups
// This allows mocking the Google API in tests
type VideoService interface {
	Get(ctx context.Context, videoID string) (*youtube.Video, error)
}

// GoogleVideoService is the production implementation using the
// YouTube Data API v3
type GoogleVideoService struct {
	service *youtube.Service
}

// Get fetches a single video's snippet and content details
func (s *GoogleVideoService) Get(ctx context.Context, videoID string) (*youtube.Video, error) {
	r, err := s.service.Videos.List([]string{"snippet", "contentDetails"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(r.Items) == 0 {
		return nil, fmt.Errorf("video %s not found", videoID)
	}
	return r.Items[0], nil
}

// Provider implements video.MetadataProvider using the YouTube Data
// API. It is selected by configuration when API credentials are
// available; it cannot open streams, so it always pairs with the
// player-API stream provider.
type Provider struct {
	videos VideoService
}

// ProviderOption is a functional option for configuring Provider
type ProviderOption func(*Provider)

// WithVideoService sets a custom video service (for testing)
func WithVideoService(svc VideoService) ProviderOption {
	return func(p *Provider) {
		p.videos = svc
	}
}

// NewProvider creates a metadata provider backed by the YouTube Data
// API. Authentication uses an API key when given, otherwise a service
// account credentials file.
func NewProvider(ctx context.Context, apiKey, credentialsFile string, opts ...ProviderOption) (*Provider, error) {
	p := &Provider{}

	for _, opt := range opts {
		opt(p)
	}

	if p.videos == nil {
		svc, err := newGoogleVideoService(ctx, apiKey, credentialsFile)
		if err != nil {
			return nil, err
		}
		p.videos = svc
	}

	return p, nil
}

// newGoogleVideoService creates a production YouTube Data API service
func newGoogleVideoService(ctx context.Context, apiKey, credentialsFile string) (*GoogleVideoService, error) {
	var opts []option.ClientOption

	switch {
	case apiKey != "":
		opts = append(opts, option.WithAPIKey(apiKey))
	case credentialsFile != "":
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("unable to read credentials file: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, b, youtube.YoutubeReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse credentials: %w", err)
		}
		opts = append(opts, option.WithTokenSource(creds.TokenSource))
	default:
		return nil, fmt.Errorf("youtube api provider requires an api key or credentials file")
	}

	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create youtube service: %w", err)
	}

	return &GoogleVideoService{service: svc}, nil
}

// Fetch implements video.MetadataProvider.
func (p *Provider) Fetch(ctx context.Context, ref video.Reference) (*video.Metadata, error) {
	v, err := p.videos.Get(ctx, ref.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", video.ErrMetadataFetch, err)
	}

	md := &video.Metadata{ID: ref.ID}
	if v.Snippet != nil {
		md.Title = v.Snippet.Title
		md.Author = v.Snippet.ChannelTitle
		if v.Snippet.Thumbnails != nil && v.Snippet.Thumbnails.Default != nil {
			md.Thumbnail = v.Snippet.Thumbnails.Default.Url
		}
	}
	if v.ContentDetails != nil {
		duration, err := parseISODuration(v.ContentDetails.Duration)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", video.ErrMetadataFetch, err)
		}
		md.Duration = duration
	}
	return md, nil
}

// isoDurationRegex matches the ISO-8601 durations the Data API emits,
// e.g. PT5M30S, PT1H2M3S, P1DT2H.
var isoDurationRegex = regexp.MustCompile(`^P(?:(\d+)D)?T?(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISODuration converts an ISO-8601 duration to whole seconds.
func parseISODuration(s string) (int, error) {
	m := isoDurationRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid ISO-8601 duration %q", s)
	}
	units := []int{86400, 3600, 60, 1}
	total := 0
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, _ := strconv.Atoi(m[i+1])
		total += n * unit
	}
	return total, nil
}

// Ensure Provider implements video.MetadataProvider
var _ video.MetadataProvider = (*Provider)(nil)
