package cmd

import (
	"fmt"
	"os"

	"whisper-audio-service/infrastructure/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "whisper-audio-service",
	Short: "Extract speech-ready audio from YouTube videos",
	Long: `whisper-audio-service turns YouTube videos into downsampled WAV audio
suitable for speech-to-text processing:

  - Fetch video metadata (title, duration, author)
  - Stream the audio track through ffmpeg into mono 16 kHz WAV
  - Serve extracted audio over HTTP with automatic cleanup

Example:
  whisper-audio-service serve
  whisper-audio-service extract-audio --url "https://www.youtube.com/watch?v=dQw4w9WgXcQ"`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
}

func initConfig() {
	// .env values feed the config env overrides; its absence is fine.
	_ = godotenv.Load()

	if cfgFile == "" {
		cfgFile = "config/config.yaml"
	}

	var err error
	cfg, err = config.LoadOrDefault(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, using defaults\n", err)
		cfg = config.Default()
	}
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}
