//go:build integration

package steps

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cucumber/godog"
	"github.com/rs/zerolog"

	"whisper-audio-service/application/retention"
	"whisper-audio-service/infrastructure/scratch"
)

// retentionContext holds test state for retention scenarios
type retentionContext struct {
	store    *scratch.Store
	sweepErr error
}

func (c *retentionContext) aScratchDirectory() error {
	dir, err := os.MkdirTemp("", "retention-features-*")
	if err != nil {
		return err
	}
	c.store, err = scratch.NewStore(dir)
	return err
}

func (c *retentionContext) anArtifactLastModifiedHoursAgo(name string, hours int) error {
	return c.seedArtifact(name, time.Duration(hours)*time.Hour)
}

func (c *retentionContext) anArtifactLastModifiedMinutesAgo(name string, minutes int) error {
	return c.seedArtifact(name, time.Duration(minutes)*time.Minute)
}

func (c *retentionContext) seedArtifact(name string, age time.Duration) error {
	path, err := c.store.Path(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte("wav-data"), 0644); err != nil {
		return err
	}
	mtime := time.Now().Add(-age)
	return os.Chtimes(path, mtime, mtime)
}

func (c *retentionContext) theRetentionSweepRunsWithMaxAgeHours(hours int) error {
	sweeper := retention.NewSweeper(c.store, time.Hour, time.Duration(hours)*time.Hour, zerolog.Nop())
	sweeper.SweepOnce()
	return nil
}

func (c *retentionContext) theArtifactIsDeletedManually(name string) error {
	return c.store.Delete(name)
}

func (c *retentionContext) theArtifactIsDeleted(name string) error {
	if c.store.Exists(name) {
		return fmt.Errorf("artifact %q still exists, expected it deleted", name)
	}
	return nil
}

func (c *retentionContext) theArtifactIsRetained(name string) error {
	if !c.store.Exists(name) {
		return fmt.Errorf("artifact %q was deleted, expected it retained", name)
	}
	return nil
}

func (c *retentionContext) noSweepErrorOccurs() error {
	if c.sweepErr != nil {
		return fmt.Errorf("sweep error: %v", c.sweepErr)
	}
	return nil
}

// InitializeRetentionScenario registers retention step definitions
func InitializeRetentionScenario(ctx *godog.ScenarioContext) {
	c := &retentionContext{}

	ctx.After(func(scenarioCtx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if c.store != nil {
			os.RemoveAll(c.store.Dir())
		}
		*c = retentionContext{}
		return scenarioCtx, nil
	})

	ctx.Step(`^a scratch directory$`, c.aScratchDirectory)
	ctx.Step(`^an artifact "([^"]*)" last modified (\d+) hours ago$`, c.anArtifactLastModifiedHoursAgo)
	ctx.Step(`^an artifact "([^"]*)" last modified (\d+) minutes ago$`, c.anArtifactLastModifiedMinutesAgo)
	ctx.Step(`^the retention sweep runs with a maximum age of (\d+) hour$`, c.theRetentionSweepRunsWithMaxAgeHours)
	ctx.Step(`^the artifact "([^"]*)" is deleted manually$`, c.theArtifactIsDeletedManually)
	ctx.Step(`^the artifact "([^"]*)" is deleted$`, c.theArtifactIsDeleted)
	ctx.Step(`^the artifact "([^"]*)" is retained$`, c.theArtifactIsRetained)
	ctx.Step(`^no sweep error occurs$`, c.noSweepErrorOccurs)
}
