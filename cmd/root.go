package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tablewave/reserve-server/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "reserve-server",
	Short: "Voice reservation service",
	Long:  "Books restaurant tables by voice: configures an ElevenLabs agent per order, submits outbound batch calls, and ingests shops from Google Maps links via a Gemini/Claude extraction chain.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
