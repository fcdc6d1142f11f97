package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openclaw/openclaw-feishu/internal/config"
	"github.com/openclaw/openclaw-feishu/internal/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "openclaw-feishu",
	Short:         "Feishu/Lark channel gateway for OpenClaw",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the TOML configuration file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(probeCmd)
}

// loadConfig reads the configuration from --config, CONFIG_PATH, or the
// default location, and initializes logging from it.
func loadConfig() (*config.Tree, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "openclaw-feishu.toml"
	}
	tree, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.Init(tree.Log.Level, tree.Log.Format)
	return tree, nil
}
