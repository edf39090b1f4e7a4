// Command edgebot runs the edge-following robot on a firmata board or in a
// simulated arena, and watches its live telemetry.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-edgebot/internal/config"
	"github.com/teslashibe/go-edgebot/internal/log"
)

var (
	configPath string
	logLevel   string

	// cfg is loaded before any subcommand runs
	cfg *config.Config

	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "edgebot",
	Short: "Edge-following robot controller",
	Long: `edgebot drives a two-wheeled robot along the boundary between a light and
a dark surface using two reflectance sensors.

Configuration comes from defaults, the optional --config YAML file and
EDGEBOT_* environment variables, in increasing precedence.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			c.Log.Level = logLevel
		}
		log.Init(c.Log.Level, c.Log.Format)
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	rootCmd.AddCommand(runCmd, simCmd, watchCmd, statusCmd, configCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}
