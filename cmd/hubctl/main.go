package main

import (
	"context"
	"fmt"
	"os"

	"spectrumhub/config"
	"spectrumhub/db"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

// rootCmd is the operator CLI for a deployed site.
var rootCmd = &cobra.Command{
	Use:           "hubctl",
	Short:         "Operate a spectrumhub deployment",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (defaults to $CONFIG_PATH or "+config.DefaultPath+")")

	rootCmd.AddCommand(adminCmd, storiesCmd)
	adminCmd.AddCommand(adminAddCmd)
	storiesCmd.AddCommand(storiesSeedCmd, storiesPendingCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// connect loads config and opens MongoDB. The returned func disconnects.
func connect(ctx context.Context) (*config.Config, func(), error) {
	cfg, err := config.LoadConfig(config.ResolvePath(configPath))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := db.ConnectMongoDB(cfg.Database.URI); err != nil {
		return nil, nil, err
	}
	return cfg, func() { _ = db.Disconnect(context.Background()) }, nil
}

func cliLogger() *zap.Logger {
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}
