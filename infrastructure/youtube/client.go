package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"whisper-audio-service/domain/video"
)

const (
	defaultBaseURL = "https://www.youtube.com"

	// Stable browser-like headers to reduce upstream anti-automation
	// friction. Used for both metadata and stream requests.
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	acceptLanguage = "en-US,en;q=0.9"

	clientName    = "ANDROID"
	clientVersion = "19.09.37"
)

// Client talks to YouTube's internal player API. It implements both
// video.MetadataProvider and video.StreamProvider.
type Client struct {
	baseURL      string
	metadataHTTP *http.Client
	streamHTTP   *http.Client
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithBaseURL overrides the YouTube endpoint (for testing)
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithMetadataHTTPClient sets the client used for metadata requests
func WithMetadataHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.metadataHTTP = hc
	}
}

// WithStreamHTTPClient sets the client used for stream downloads
func WithStreamHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.streamHTTP = hc
	}
}

// NewClient creates a new YouTube client. Metadata calls fail fast with
// a short timeout; stream downloads get a long one since transcoding a
// full video can take tens of seconds.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      defaultBaseURL,
		metadataHTTP: &http.Client{Timeout: 5 * time.Second},
		streamHTTP:   &http.Client{Timeout: 30 * time.Minute},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// playerResponse is the subset of the player API response we consume.
type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	VideoDetails struct {
		VideoID       string `json:"videoId"`
		Title         string `json:"title"`
		LengthSeconds string `json:"lengthSeconds"`
		Author        string `json:"author"`
		Thumbnail     struct {
			Thumbnails []struct {
				URL string `json:"url"`
			} `json:"thumbnails"`
		} `json:"thumbnail"`
	} `json:"videoDetails"`
	StreamingData struct {
		AdaptiveFormats []adaptiveFormat `json:"adaptiveFormats"`
	} `json:"streamingData"`
}

type adaptiveFormat struct {
	Itag     int    `json:"itag"`
	MimeType string `json:"mimeType"`
	Bitrate  int    `json:"bitrate"`
	URL      string `json:"url"`
}

func (f adaptiveFormat) isAudioOnly() bool {
	return len(f.MimeType) >= 6 && f.MimeType[:6] == "audio/"
}

// player performs one request against the player endpoint.
func (c *Client) player(ctx context.Context, hc *http.Client, ref video.Reference) (*playerResponse, error) {
	payload := map[string]interface{}{
		"videoId": ref.ID,
		"context": map[string]interface{}{
			"client": map[string]interface{}{
				"clientName":        clientName,
				"clientVersion":     clientVersion,
				"androidSdkVersion": 30,
				"hl":                "en",
			},
		},
	}
	body, _ := json.Marshal(payload)

	url := c.baseURL + "/youtubei/v1/player?prettyPrint=false"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	setBrowserHeaders(req)

	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("player request failed: status %d, body: %s", resp.StatusCode, respBody)
	}

	var pr playerResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("failed to decode player response: %w", err)
	}

	if pr.PlayabilityStatus.Status != "" && pr.PlayabilityStatus.Status != "OK" {
		reason := pr.PlayabilityStatus.Reason
		if reason == "" {
			reason = pr.PlayabilityStatus.Status
		}
		return nil, fmt.Errorf("video not playable: %s", reason)
	}

	return &pr, nil
}

// Fetch implements video.MetadataProvider.
func (c *Client) Fetch(ctx context.Context, ref video.Reference) (*video.Metadata, error) {
	pr, err := c.player(ctx, c.metadataHTTP, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", video.ErrMetadataFetch, err)
	}

	details := pr.VideoDetails
	duration, err := strconv.Atoi(details.LengthSeconds)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid duration %q", video.ErrMetadataFetch, details.LengthSeconds)
	}

	md := &video.Metadata{
		ID:       details.VideoID,
		Title:    details.Title,
		Duration: duration,
		Author:   details.Author,
	}
	if len(details.Thumbnail.Thumbnails) > 0 {
		md.Thumbnail = details.Thumbnail.Thumbnails[0].URL
	}
	return md, nil
}

// OpenAudioStream implements video.StreamProvider. It selects the
// highest-bitrate audio-only format and opens its URL for streaming.
// The caller must close the returned stream.
func (c *Client) OpenAudioStream(ctx context.Context, ref video.Reference) (io.ReadCloser, error) {
	pr, err := c.player(ctx, c.streamHTTP, ref)
	if err != nil {
		return nil, err
	}

	var best *adaptiveFormat
	for i := range pr.StreamingData.AdaptiveFormats {
		f := &pr.StreamingData.AdaptiveFormats[i]
		if !f.isAudioOnly() || f.URL == "" {
			continue
		}
		if best == nil || f.Bitrate > best.Bitrate {
			best = f
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no audio-only format available for video %s", ref.ID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, best.URL, nil)
	if err != nil {
		return nil, err
	}
	setBrowserHeaders(req)

	resp, err := c.streamHTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("audio stream request failed: status %d", resp.StatusCode)
	}

	return resp.Body, nil
}

func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", acceptLanguage)
}

// Ensure Client implements both provider ports
var (
	_ video.MetadataProvider = (*Client)(nil)
	_ video.StreamProvider   = (*Client)(nil)
)
