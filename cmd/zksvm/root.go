package main

import (
	"fmt"
	"strings"

	"github.com/blang/semver"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/zksvm/internal/config"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/logging"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/platform"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultOptions())
}

func newRootCmd(opts options) *cobra.Command {
	var verbosity int
	s := &session{opts: opts}

	rootCmd := &cobra.Command{
		Use:     "zksvm",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupLoggerTo(opts.stderr, verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")

			cfg, err := config.Load(cmd.Context(), platform.NewDetector(), opts.paths())
			if err != nil {
				return fmt.Errorf("load config: %s", config.FormatError(err, verbosity > 0))
			}
			if cfg.LogLevel != "" {
				if err := logging.SetLevel(cfg.LogLevel); err != nil {
					return err
				}
			}

			s.versions, err = opts.build(cfg)
			return err
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.SetOut(opts.stdout)
	rootCmd.SetErr(opts.stderr)
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVarP(&s.assumeYes, "yes", "y", false, MsgFlagYes)

	rootCmd.AddCommand(newInstallCmd(s))
	rootCmd.AddCommand(newListCmd(s))
	rootCmd.AddCommand(newUseCmd(s))
	rootCmd.AddCommand(newRemoveCmd(s))

	return rootCmd
}

// parseVersion accepts a strict semantic version with an optional leading "v".
func parseVersion(arg string) (semver.Version, error) {
	v, err := semver.Parse(strings.TrimPrefix(arg, "v"))
	if err != nil {
		return semver.Version{}, fmt.Errorf("invalid version %q: %w", arg, err)
	}
	return v, nil
}
