// superr searches for shorter equivalent programs for the superr register
// machine.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"nickandperla.net/superopt"
)

var (
	verbose    bool
	logFormat  string
	configPath string

	log = logrus.New()

	rootCmd = &cobra.Command{
		Use:           "superr",
		Short:         "A superoptimizer for a tiny four cell register machine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML tool config path")

	rootCmd.AddCommand(runCmd, genCmd, optimizeCmd, benchCmd, historyCmd)
}

func setupLogging() error {
	log.SetOutput(os.Stderr)
	switch logFormat {
	case "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format [%s]", logFormat)
	}
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return nil
}

// loadToolConfig returns an empty config when no --config was given.
func loadToolConfig() (*superopt.ToolConfig, error) {
	if configPath == "" {
		return &superopt.ToolConfig{}, nil
	}
	return superopt.LoadToolConfig(configPath)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
