package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/juanzandev/CS487Project/internal/app"
	"github.com/juanzandev/CS487Project/internal/config"
)

const envPrefix = "GRADEWIDGET"

type runFunc func(ctx context.Context, opts app.Options) error

// newRootCmd builds the CLI. Every flag can also be set through a
// GRADEWIDGET_* environment variable; the restart path relies on
// GRADEWIDGET_CONFIG.
func newRootCmd(runApp runFunc) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "gradewidget",
		Short:         "Canvas LMS grades in your terminal",
		Long:          "gradewidget polls Canvas for your active courses and shows the current grade for each.\nRun without a terminal, or with --headless, to print one snapshot and exit.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := app.Options{
				ConfigPath: v.GetString("config"),
				PollEvery:  v.GetInt("poll"),
				Headless:   v.GetBool("headless"),
				Debug:      v.GetBool("debug"),
				LogPath:    v.GetString("log-file"),
				Out:        cmd.OutOrStdout(),
			}
			if opts.PollEvery < 0 || opts.PollEvery > config.MaxPollIntervalSeconds {
				return fmt.Errorf("--poll must be between 0 and %d seconds, got %d", config.MaxPollIntervalSeconds, opts.PollEvery)
			}
			if !opts.Headless && !term.IsTerminal(int(os.Stdout.Fd())) {
				opts.Headless = true
			}
			return runApp(cmd.Context(), opts)
		},
	}

	flags := root.Flags()
	flags.String("config", "", "settings file (default $XDG_CONFIG_HOME/gradewidget/config.toml)")
	flags.Int("poll", 0, "refresh interval in seconds, overriding the settings file")
	flags.Bool("headless", false, "run one refresh, print the grades and exit")
	flags.Bool("debug", false, "log at debug level")
	flags.String("log-file", "", "log file for the terminal UI (default $XDG_STATE_HOME/gradewidget/gradewidget.log)")
	bindFlags(v, flags)

	root.AddCommand(newVersionCmd())
	return root
}

// bindFlags makes every flag readable through v, so the environment fills in
// anything not given on the command line.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// BindPFlag only fails for a nil flag.
		_ = v.BindPFlag(f.Name, f)
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			version, goVersion := "(devel)", "unknown"
			if info, ok := debug.ReadBuildInfo(); ok {
				goVersion = info.GoVersion
				if info.Main.Version != "" {
					version = info.Main.Version
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "gradewidget %s (%s)\n", version, goVersion)
		},
	}
}
