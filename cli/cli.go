// Package cli implements the memauto command line tool.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Chris4081/memauto-go-sdk/logger"
	"github.com/Chris4081/memauto-go-sdk/pipeline"
	"github.com/Chris4081/memauto-go-sdk/store"
)

const rootLongDesc = `memauto manages the persistent chat memory store.

Use subcommands to inspect and edit memories, probe the matcher, or run
the admin API:
  memauto ls            List stored memories
  memauto add           Save a memory through the relevance pipeline
  memauto serve         Run the admin HTTP API`

// NewRootCmd builds the memauto root command.
func NewRootCmd() *cobra.Command {
	v := initViper()

	cmd := &cobra.Command{
		Use:           "memauto",
		Short:         "Manage the persistent chat memory store",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("dir", v.GetString("dir"), "Directory holding memories.json")
	cmd.PersistentFlags().Bool("debug", v.GetBool("debug"), "Enable debug logging")
	_ = v.BindPFlag("dir", cmd.PersistentFlags().Lookup("dir"))
	_ = v.BindPFlag("debug", cmd.PersistentFlags().Lookup("debug"))

	cmd.AddCommand(newServeCmd(v))
	cmd.AddCommand(newLsCmd(v))
	cmd.AddCommand(newAddCmd(v))
	cmd.AddCommand(newRmCmd(v))
	cmd.AddCommand(newWipeCmd(v))
	cmd.AddCommand(newGuideCmd(v))
	cmd.AddCommand(newMatchCmd(v))

	return cmd
}

// initViper configures defaults, an optional memauto.yaml config file,
// and MEMAUTO_-prefixed environment variables (MEMAUTO_DIR,
// MEMAUTO_DEBUG, MEMAUTO_LISTEN).
//
// Precedence, highest first: CLI flags, environment, config file,
// defaults.
func initViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("dir", ".")
	v.SetDefault("debug", false)
	v.SetDefault("listen", ":8787")

	v.SetConfigName("memauto")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "memauto"))
	}
	// A missing config file is fine, defaults apply.
	_ = v.ReadInConfig()

	v.SetEnvPrefix("MEMAUTO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// openStore opens the store at the configured directory with a pretty
// CLI logger attached.
func openStore(v *viper.Viper) (*store.Store, *pipeline.Pipeline, error) {
	log := logger.New(logger.WithPretty(true), logger.WithDebug(v.GetBool("debug")))
	st, err := store.Open(v.GetString("dir"), store.WithLogger(log))
	if err != nil {
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}
	pl, err := pipeline.New(st, pipeline.WithLogger(log))
	if err != nil {
		return nil, nil, fmt.Errorf("starting pipeline: %w", err)
	}
	return st, pl, nil
}
