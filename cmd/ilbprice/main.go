// ilbprice values inflation-linked bonds from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/meenmo/ilbond/config"
	"github.com/meenmo/ilbond/pkg/logger"
)

var (
	cfg config.Config
	log zerolog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "ilbprice",
	Short:         "Inflation-linked bond principal, flat price and accrued interest",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.LogLevel = level
		}
		config.SetConfig(cfg)
		log = logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(principalCmd)
	rootCmd.AddCommand(flatCmd)
	rootCmd.AddCommand(accruedCmd)
	rootCmd.AddCommand(cashflowsCmd)
	rootCmd.AddCommand(batchCmd)
}
