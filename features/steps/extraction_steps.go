//go:build integration

package steps

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cucumber/godog"
	"github.com/rs/zerolog"

	"whisper-audio-service/application/extraction"
	"whisper-audio-service/domain/video"
	"whisper-audio-service/infrastructure/scratch"
)

// stubProvider implements video.MetadataProvider and
// video.StreamProvider with scripted metadata
type stubProvider struct {
	metadata map[string]*video.Metadata
}

func (s *stubProvider) Fetch(ctx context.Context, ref video.Reference) (*video.Metadata, error) {
	md, ok := s.metadata[ref.ID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown video %s", video.ErrMetadataFetch, ref.ID)
	}
	return md, nil
}

func (s *stubProvider) OpenAudioStream(ctx context.Context, ref video.Reference) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("source-audio")), nil
}

// stubTranscoder writes fixed WAV bytes to the output path
type stubTranscoder struct{}

func (s *stubTranscoder) Transcode(ctx context.Context, in io.Reader, outputPath string) error {
	io.Copy(io.Discard, in)
	return os.WriteFile(outputPath, []byte("wav-data"), 0644)
}

// extractionContext holds test state for extraction scenarios
type extractionContext struct {
	provider *stubProvider
	store    *scratch.Store
	service  *extraction.Service
	result   *extraction.Result
	err      error
}

func (c *extractionContext) theExtractionServiceIsConfigured() error {
	dir, err := os.MkdirTemp("", "extraction-features-*")
	if err != nil {
		return err
	}
	store, err := scratch.NewStore(dir)
	if err != nil {
		return err
	}

	c.provider = &stubProvider{metadata: make(map[string]*video.Metadata)}
	c.store = store
	c.service = extraction.NewService(c.provider, c.provider, &stubTranscoder{}, store, 1200, zerolog.Nop())
	return nil
}

func (c *extractionContext) aVideoWithDuration(videoID string, duration int) error {
	c.provider.metadata[videoID] = &video.Metadata{
		ID:       videoID,
		Title:    "Feature Test Video",
		Duration: duration,
		Author:   "Feature Channel",
	}
	return nil
}

func (c *extractionContext) iRequestAudioExtractionFor(url string) error {
	c.result, c.err = c.service.Extract(context.Background(), url)
	return nil
}

func (c *extractionContext) theRequestFailsWith(fragment string) error {
	if c.err == nil {
		return fmt.Errorf("expected an error containing %q, got success", fragment)
	}
	if !strings.Contains(c.err.Error(), fragment) {
		return fmt.Errorf("error %q does not contain %q", c.err.Error(), fragment)
	}
	return nil
}

func (c *extractionContext) noArtifactIsCreated() error {
	artifacts, err := c.store.List()
	if err != nil {
		return err
	}
	if len(artifacts) != 0 {
		return fmt.Errorf("expected empty scratch directory, found %d artifacts", len(artifacts))
	}
	return nil
}

func (c *extractionContext) anArtifactForVideoExists(videoID string) error {
	if c.err != nil {
		return fmt.Errorf("extraction failed: %v", c.err)
	}
	if !strings.HasPrefix(c.result.FileName, videoID+"_") {
		return fmt.Errorf("artifact %q does not belong to video %s", c.result.FileName, videoID)
	}
	if !c.store.Exists(c.result.FileName) {
		return fmt.Errorf("artifact %q missing from scratch directory", c.result.FileName)
	}
	return nil
}

func (c *extractionContext) theReportedDurationIs(duration int) error {
	if c.result == nil {
		return fmt.Errorf("no extraction result")
	}
	if c.result.Duration != duration {
		return fmt.Errorf("reported duration %d, want %d", c.result.Duration, duration)
	}
	return nil
}

func (c *extractionContext) distinctArtifactsExist(count int) error {
	artifacts, err := c.store.List()
	if err != nil {
		return err
	}
	names := make(map[string]bool)
	for _, a := range artifacts {
		names[a.Name] = true
	}
	if len(names) != count {
		return fmt.Errorf("found %d distinct artifacts, want %d", len(names), count)
	}
	return nil
}

// InitializeExtractionScenario registers extraction step definitions
func InitializeExtractionScenario(ctx *godog.ScenarioContext) {
	c := &extractionContext{}

	ctx.After(func(scenarioCtx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if c.store != nil {
			os.RemoveAll(c.store.Dir())
		}
		*c = extractionContext{}
		return scenarioCtx, nil
	})

	ctx.Step(`^the extraction service is configured$`, c.theExtractionServiceIsConfigured)
	ctx.Step(`^a video "([^"]*)" with duration (\d+) seconds$`, c.aVideoWithDuration)
	ctx.Step(`^I request audio extraction for "([^"]*)"$`, c.iRequestAudioExtractionFor)
	ctx.Step(`^the request fails with "([^"]*)"$`, c.theRequestFailsWith)
	ctx.Step(`^no artifact is created$`, c.noArtifactIsCreated)
	ctx.Step(`^an artifact for video "([^"]*)" exists in the scratch directory$`, c.anArtifactForVideoExists)
	ctx.Step(`^the reported duration is (\d+) seconds$`, c.theReportedDurationIs)
	ctx.Step(`^(\d+) distinct artifacts exist in the scratch directory$`, c.distinctArtifactsExist)
}
