package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"whisper-audio-service/application/extraction"
	"whisper-audio-service/domain/video"
	"whisper-audio-service/infrastructure/scratch"
)

const testURL = "https://www.youtube.com/watch?v=abc12345678"

// --- Mock implementations for testing ---

// mockProvider implements video.MetadataProvider and
// video.StreamProvider for testing
type mockProvider struct {
	metadata *video.Metadata
	fetchErr error
}

func (m *mockProvider) Fetch(ctx context.Context, ref video.Reference) (*video.Metadata, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.metadata, nil
}

func (m *mockProvider) OpenAudioStream(ctx context.Context, ref video.Reference) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("source-audio")), nil
}

// mockTranscoder implements video.AudioTranscoder by writing fixed
// bytes to the output path
type mockTranscoder struct {
	output []byte
	err    error
}

func (m *mockTranscoder) Transcode(ctx context.Context, in io.Reader, outputPath string) error {
	io.Copy(io.Discard, in)
	if m.err != nil {
		return m.err
	}
	return os.WriteFile(outputPath, m.output, 0644)
}

type testEnv struct {
	server *Server
	store  *scratch.Store
	router http.Handler
}

func newTestEnv(t *testing.T, provider *mockProvider, transcoder *mockTranscoder) *testEnv {
	t.Helper()

	store, err := scratch.NewStore(filepath.Join(t.TempDir(), "scratch"))
	if err != nil {
		t.Fatalf("NewStore() unexpected error: %v", err)
	}

	svc := extraction.NewService(provider, provider, transcoder, store, 1200, zerolog.Nop())
	srv := New(svc, store, 250*time.Millisecond, zerolog.Nop())

	return &testEnv{server: srv, store: store, router: srv.Router()}
}

func defaultProvider() *mockProvider {
	return &mockProvider{
		metadata: &video.Metadata{
			ID:        "abc12345678",
			Title:     "Test Video",
			Duration:  300,
			Author:    "Test Channel",
			Thumbnail: "https://i.ytimg.com/vi/abc/default.jpg",
		},
	}
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, defaultProvider(), &mockTranscoder{})

	for _, path := range []string{"/health", "/api/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
		var health healthResponse
		decodeBody(t, rec, &health)
		if health.Status != "ok" {
			t.Errorf("GET %s status field = %q, want ok", path, health.Status)
		}
		if health.Timestamp == "" {
			t.Errorf("GET %s missing timestamp", path)
		}
	}
}

func TestInfo(t *testing.T) {
	env := newTestEnv(t, defaultProvider(), &mockTranscoder{})

	rec := postJSON(t, env.router, "/info", urlRequest{URL: testURL})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /info status = %d, body %s", rec.Code, rec.Body.String())
	}

	var md video.Metadata
	decodeBody(t, rec, &md)
	if md.ID != "abc12345678" || md.Title != "Test Video" || md.Duration != 300 {
		t.Errorf("POST /info = %+v, want stub metadata", md)
	}
}

func TestInfoMissingURL(t *testing.T) {
	env := newTestEnv(t, defaultProvider(), &mockTranscoder{})

	rec := postJSON(t, env.router, "/info", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST /info status = %d, want 400", rec.Code)
	}
	var resp errorResponse
	decodeBody(t, rec, &resp)
	if resp.Error != "URL is required" {
		t.Errorf("POST /info error = %q, want URL is required", resp.Error)
	}
}

func TestInfoInvalidURL(t *testing.T) {
	provider := defaultProvider()
	provider.fetchErr = errors.New("should not be called")
	env := newTestEnv(t, provider, &mockTranscoder{})

	rec := postJSON(t, env.router, "/info", urlRequest{URL: "not a url"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST /info status = %d, want 400", rec.Code)
	}
	var resp errorResponse
	decodeBody(t, rec, &resp)
	if resp.Error != "Invalid YouTube URL" {
		t.Errorf("POST /info error = %q, want Invalid YouTube URL", resp.Error)
	}
}

func TestInfoUpstreamFailure(t *testing.T) {
	provider := defaultProvider()
	provider.fetchErr = video.ErrMetadataFetch
	env := newTestEnv(t, provider, &mockTranscoder{})

	rec := postJSON(t, env.router, "/info", urlRequest{URL: testURL})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("POST /info status = %d, want 500", rec.Code)
	}
	var resp errorResponse
	decodeBody(t, rec, &resp)
	if resp.Details == "" {
		t.Error("POST /info missing details for upstream failure")
	}
}

func TestExtractAudio(t *testing.T) {
	env := newTestEnv(t, defaultProvider(), &mockTranscoder{output: []byte("wav-data")})

	rec := postJSON(t, env.router, "/extract-audio", urlRequest{URL: testURL})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /extract-audio status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp extractResponse
	decodeBody(t, rec, &resp)

	if !resp.Success {
		t.Error("POST /extract-audio success = false")
	}
	if !strings.HasPrefix(resp.AudioFile, "abc12345678_") || !strings.HasSuffix(resp.AudioFile, ".wav") {
		t.Errorf("audioFile = %q, want abc12345678_<uuid>.wav", resp.AudioFile)
	}
	if resp.Duration != 300 {
		t.Errorf("duration = %d, want 300", resp.Duration)
	}
	if resp.Size != int64(len("wav-data")) {
		t.Errorf("size = %d, want %d", resp.Size, len("wav-data"))
	}
	if resp.DownloadURL != "/api/youtube/download/"+resp.AudioFile {
		t.Errorf("downloadUrl = %q, want /api/youtube/download/%s", resp.DownloadURL, resp.AudioFile)
	}
}

func TestExtractAudioTooLong(t *testing.T) {
	provider := defaultProvider()
	provider.metadata.Duration = 1500
	env := newTestEnv(t, provider, &mockTranscoder{output: []byte("wav")})

	rec := postJSON(t, env.router, "/extract-audio", urlRequest{URL: testURL})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("POST /extract-audio status = %d, want 400", rec.Code)
	}
	var resp errorResponse
	decodeBody(t, rec, &resp)
	if !strings.Contains(resp.Error, "too long") {
		t.Errorf("error = %q, want too-long message", resp.Error)
	}
}

func TestExtractAudioTranscodeFailure(t *testing.T) {
	env := newTestEnv(t, defaultProvider(), &mockTranscoder{err: video.ErrTranscodeFailed})

	rec := postJSON(t, env.router, "/extract-audio", urlRequest{URL: testURL})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("POST /extract-audio status = %d, want 500", rec.Code)
	}
	var resp errorResponse
	decodeBody(t, rec, &resp)
	if resp.Error != "Failed to extract audio from YouTube video" {
		t.Errorf("error = %q, want extraction failure message", resp.Error)
	}
	if resp.Details == "" {
		t.Error("missing details for transcode failure")
	}
}

func TestDownloadNotFound(t *testing.T) {
	env := newTestEnv(t, defaultProvider(), &mockTranscoder{})

	req := httptest.NewRequest(http.MethodGet, "/download/missing.wav", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /download status = %d, want 404", rec.Code)
	}
	var resp errorResponse
	decodeBody(t, rec, &resp)
	if resp.Error != "Audio file not found" {
		t.Errorf("error = %q, want Audio file not found", resp.Error)
	}
}

func TestDownloadStreamsAndDeletesAfterGrace(t *testing.T) {
	env := newTestEnv(t, defaultProvider(), &mockTranscoder{})

	content := "RIFF-wav-content"
	path, err := env.store.Path("abc12345678_x.wav")
	if err != nil {
		t.Fatalf("Path() unexpected error: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to seed artifact: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/download/abc12345678_x.wav", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /download status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/wav" {
		t.Errorf("Content-Type = %q, want audio/wav", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") || !strings.Contains(cd, "abc12345678_x.wav") {
		t.Errorf("Content-Disposition = %q, want attachment with filename", cd)
	}
	if rec.Body.Len() != len(content) {
		t.Errorf("body length = %d, want %d", rec.Body.Len(), len(content))
	}
	if rec.Body.String() != content {
		t.Errorf("body = %q, want artifact content", rec.Body.String())
	}

	// The artifact survives the grace delay, then disappears.
	if !env.store.Exists("abc12345678_x.wav") {
		t.Error("artifact deleted before grace delay elapsed")
	}

	deadline := time.Now().Add(2 * time.Second)
	for env.store.Exists("abc12345678_x.wav") {
		if time.Now().After(deadline) {
			t.Fatal("artifact not deleted after grace delay")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRouteAliases(t *testing.T) {
	env := newTestEnv(t, defaultProvider(), &mockTranscoder{output: []byte("wav")})

	rec := postJSON(t, env.router, "/api/youtube/info", urlRequest{URL: testURL})
	if rec.Code != http.StatusOK {
		t.Errorf("POST /api/youtube/info status = %d, want 200", rec.Code)
	}

	rec = postJSON(t, env.router, "/api/youtube/extract-audio", urlRequest{URL: testURL})
	if rec.Code != http.StatusOK {
		t.Errorf("POST /api/youtube/extract-audio status = %d, want 200", rec.Code)
	}
}
