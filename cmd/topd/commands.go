package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nrgaway/topd/internal/version"
	"github.com/nrgaway/topd/pkg/config"
	"github.com/nrgaway/topd/pkg/fileinfo"
	"github.com/nrgaway/topd/pkg/logging"
	"github.com/nrgaway/topd/pkg/matcher"
	"github.com/nrgaway/topd/pkg/merge"
	"github.com/nrgaway/topd/pkg/output"
	"github.com/nrgaway/topd/pkg/paths"
	"github.com/nrgaway/topd/pkg/tops"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var (
		verbosity  int
		configPath string
		saltenvs   []string
		pillar     bool
	)

	rootCmd := &cobra.Command{
		Use:     "topd",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringSliceVarP(&saltenvs, "saltenv", "e", nil, MsgFlagSaltenv)
	rootCmd.PersistentFlags().BoolVar(&pillar, "pillar", false, MsgFlagPillar)

	loadConfig := func() (*config.Config, error) {
		path := configPath
		if path == "" {
			candidate := filepath.Join(xdg.ConfigHome, "topd", "topd.toml")
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
		return config.Load(path)
	}
	newTops := func() (*tops.Resolver, error) {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		return tops.New(cfg, tops.Options{Pillar: pillar}), nil
	}
	newMerger := func() (*merge.Merger, error) {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		return merge.New(cfg, merge.Options{Pillar: pillar}), nil
	}
	printer := func(cmd *cobra.Command) *output.Printer {
		return output.NewPrinter(cmd.OutOrStdout())
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "status [names...]",
		Short: MsgStatusShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := newTops()
			if err != nil {
				return err
			}
			status, err := resolver.Status(args, saltenvs...)
			if err != nil {
				return err
			}
			printer(cmd).Status(status)
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "tops",
		Short: MsgTopsShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := newTops()
			if err != nil {
				return err
			}
			names, err := resolver.Names(saltenvs...)
			if err != nil {
				return err
			}
			printer(cmd).Names("Top files", names)
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "enabled [names...]",
		Short: MsgEnabledShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := newTops()
			if err != nil {
				return err
			}
			enabled, err := resolver.Enabled(args, saltenvs...)
			if err != nil {
				return err
			}
			printer(cmd).Records("Enabled tops", enabled)
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "disabled [names...]",
		Short: MsgDisabledShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := newTops()
			if err != nil {
				return err
			}
			disabled, err := resolver.Disabled(args, saltenvs...)
			if err != nil {
				return err
			}
			printer(cmd).Records("Disabled tops", disabled)
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "enable <names...>",
		Short: MsgEnableShort,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := newTops()
			if err != nil {
				return err
			}
			result, err := resolver.Enable(args, saltenvs...)
			if result != nil {
				printer(cmd).Result("enabled", result)
			}
			return err
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "disable <names...>",
		Short: MsgDisableShort,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := newTops()
			if err != nil {
				return err
			}
			result, err := resolver.Disable(args, saltenvs...)
			if result != nil {
				printer(cmd).Result("disabled", result)
			}
			return err
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "top",
		Short: MsgTopShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			merger, err := newMerger()
			if err != nil {
				return err
			}
			document, err := merger.Top(saltenvs...)
			if err != nil {
				return err
			}
			return printer(cmd).Document(document)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "merge",
		Short: MsgMergeShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			merger, err := newMerger()
			if err != nil {
				return err
			}
			document, err := merger.Merge(saltenvs...)
			if err != nil {
				return err
			}
			return printer(cmd).Document(document)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "report [globs...]",
		Short: MsgReportShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			resolver := paths.NewResolver(cfg, paths.Options{Pillar: pillar})

			var patterns map[string][]matcher.Pattern
			if len(args) > 0 {
				patterns = map[string][]matcher.Pattern{
					fileinfo.FieldRelPath: matcher.Globs(args...),
				}
			}
			records, err := resolver.Find(nil, patterns)
			if err != nil {
				return err
			}
			return printer(cmd).Report(resolver.Report(records))
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "genconfig",
		Short: MsgGenconfigShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := config.GenerateConfigContent()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), content)
			return nil
		},
	})

	return rootCmd
}
