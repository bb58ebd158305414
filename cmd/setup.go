package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"whisper-audio-service/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through setting up the server port, scratch
directory and YouTube metadata provider.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	return RunSetupWithPrompter(DefaultPrompter, "config/config.yaml")
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Println("Setup cancelled.")
			return nil
		}
	}

	fmt.Println("Welcome to whisper-audio-service setup!")
	fmt.Println()

	cfg := config.Default()

	port, err := prompter.Input("HTTP server port:", strconv.Itoa(cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if p, err := strconv.Atoi(port); err == nil {
		cfg.Server.Port = p
	} else {
		return fmt.Errorf("invalid port %q", port)
	}

	scratchDir, err := prompter.Input("Scratch directory for extracted audio:", cfg.Storage.ScratchDirectory)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Storage.ScratchDirectory = scratchDir

	ffmpegPath, err := prompter.Input("Path to ffmpeg executable:", cfg.Extraction.FFmpegPath)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Extraction.FFmpegPath = ffmpegPath

	useAPI, err := prompter.Confirm("Use the YouTube Data API for metadata (requires an API key)?", false)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if useAPI {
		apiKey, err := prompter.Input("YouTube Data API key:", "")
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		cfg.YouTube.Provider = "api"
		cfg.YouTube.APIKey = apiKey
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Println()
	fmt.Printf("Configuration saved to %s\n", configPath)
	return nil
}
