package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hamed0406/healthcheck/internal/config"
)

var (
	apiURL     string
	apiKey     string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:          "healthcheck",
	Short:        "Operate the health-check engine from the terminal",
	SilenceUsage: true,
}

func init() {
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:8080"
	}
	cfg := config.FromEnv()

	rootCmd.PersistentFlags().StringVar(&apiURL, "api", api, "health-check API URL")
	rootCmd.PersistentFlags().StringVar(&apiKey, "key", os.Getenv("API_KEY"), "API key sent as X-API-Key")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", cfg.ServicesFile, "service file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
