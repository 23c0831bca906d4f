package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(defaultDependencies())
}

func newRootCmdWith(deps dependencies) *cobra.Command {
	app := &app{deps: deps}

	rootCmd := &cobra.Command{
		Use:           "dispatch",
		Short:         "Send per-agent balance reports over WhatsApp Web",
		Long:          "dispatch groups a balances ledger by agent, renders one PNG table per agent and sends a text plus the image to the agent's phone through an automated WhatsApp Web session.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.load(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			app.close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.configFile, "config", "", "config file (default $HOME/.config/dispatch/config.toml)")
	flags.StringVar(&app.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-mode", "", "log encoder: development or production")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(app),
		newSelectorsCmd(app),
	)

	return rootCmd
}

// legacyFlagNames accepts the Portuguese --saldos and --contatos spellings.
func legacyFlagNames(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "saldos":
		name = "ledger"
	case "contatos":
		name = "directory"
	}
	return pflag.NormalizedName(name)
}
