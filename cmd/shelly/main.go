// Package main provides the shelly CLI: it wraps PREFIX in an interactive shell so
// that every line typed is run as "PREFIX LINE SUFFIX".
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"shelly/internal/completion"
	"shelly/internal/config"
	"shelly/internal/logger"
	"shelly/internal/shell"
	"shelly/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. opts are applied to the interpreter after the
// defaults, which lets tests swap the terminal, executor and streams.
func newRootCmd(opts ...shell.Option) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SHELLY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:   "shelly [flags] PREFIX [ARGS...]",
		Short: "Shelly - wrap any command in an interactive shell",
		Long: `Shelly turns a command-line program into an interactive shell.
Every line you type is run as "PREFIX LINE SUFFIX". Lines starting with \ are
special commands (try \help), lines starting with ! run on your default shell,
and a trailing \ continues the line.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := logger.Configure(v.GetString("log-level"), v.GetString("log-file"), false); err != nil {
				return fmt.Errorf("failed to configure logger: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd.Context(), v, args, opts)
		},
	}
	// Everything after PREFIX belongs to the wrapped program.
	rootCmd.Flags().SetInterspersed(false)

	flags := rootCmd.Flags()
	flags.String("suffix", "", "Text appended after every line")
	flags.Bool("quote", false, "Wrap every line in double quotes before forwarding it")
	flags.String("prompt", "", "Prompt text (default \"[Shelly: PREFIX]> \")")
	flags.String("continuation-prompt", "", "Prompt text while a line is being continued")
	flags.String("completion", "", "Completion policy (filenames|filenames_before|filenames_after|only|none)")
	flags.String("escape", "", "Marker that introduces shell-escape lines (default \"!\")")
	flags.Bool("no-shell-escape", false, "Forward shell-escape lines like any other line")
	flags.String("history-file", "", "File to persist interactive history in")
	flags.String("config", "", "Configuration file (default ~/.shellyrc)")
	flags.Bool("no-config", false, "Do not read a configuration file")

	rootCmd.PersistentFlags().String("log-level", "", "Set log level (debug|info|warn|error) [default: warn]")
	rootCmd.PersistentFlags().String("log-file", "", "Write logs to file instead of stderr")

	for _, name := range []string{
		"suffix", "quote", "prompt", "continuation-prompt", "completion", "escape",
		"no-shell-escape", "history-file", "config", "no-config", "log-level", "log-file",
	} {
		bindFlag(v, name, rootCmd)
	}

	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if verbose {
				fmt.Fprintln(cmd.OutOrStdout(), version.GetDetailedVersion())
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.GetFormattedVersion())
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed build information")
	return cmd
}

func runShell(ctx context.Context, v *viper.Viper, args []string, opts []shell.Option) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger.Debug("Starting shelly", "version", version.Version)

	in := shell.New(opts...)
	in.SetConfigLoader(config.Load)

	if !v.GetBool("no-config") {
		path := v.GetString("config")
		if path == "" {
			defaultPath, err := config.DefaultPath()
			if err != nil {
				logger.Warn("Skipping configuration file", "error", err)
			}
			path = defaultPath
		}
		if path != "" {
			if err := in.LoadConfig(path); err != nil {
				return err
			}
		}
	}

	if len(args) > 0 {
		in.SetPrefix(strings.Join(args, " "))
	}
	if err := applyFlags(v, in); err != nil {
		return err
	}

	return in.Run(ctx)
}

// applyFlags applies the flags and SHELLY_* variables that were set; they take
// precedence over the configuration file.
func applyFlags(v *viper.Viper, in *shell.Interpreter) error {
	if v.IsSet("suffix") {
		in.SetSuffix(v.GetString("suffix"))
	}
	if v.IsSet("quote") {
		in.SetQuoteInput(v.GetBool("quote"))
	}
	if v.IsSet("history-file") {
		in.SetHistoryFile(v.GetString("history-file"))
	}

	if v.IsSet("prompt") {
		prompt := v.GetString("prompt")
		if v.IsSet("continuation-prompt") {
			continuation := v.GetString("continuation-prompt")
			in.SetPrompt(func(c bool) string {
				if c {
					return continuation
				}
				return prompt
			})
		} else {
			in.SetStaticPrompt(prompt)
		}
	}

	if v.IsSet("completion") {
		policy, err := completion.ParsePolicy(v.GetString("completion"))
		if err != nil {
			return err
		}
		in.SetCompletionPolicy(policy)
	}

	if v.IsSet("escape") {
		in.SetShellEscape(v.GetString("escape"))
	}
	if v.GetBool("no-shell-escape") {
		in.DisableShellEscape()
	}
	return nil
}

func bindFlag(v *viper.Viper, name string, cmd *cobra.Command) {
	flag := cmd.Flags().Lookup(name)
	if flag == nil {
		flag = cmd.PersistentFlags().Lookup(name)
	}
	if err := v.BindPFlag(name, flag); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", name, err)
		os.Exit(1)
	}
}
