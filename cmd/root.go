package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dppkit/passport-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "passport-cli",
	Short: "Digital product passport builder",
	Long:  "Extracts product attributes from technical documents and photos via Claude, reconciles them against per-category schemas, and publishes validated passport records with QR access.",
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
