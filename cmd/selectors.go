package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/bnema/balance-dispatcher/internal/domain"
	"github.com/spf13/cobra"
)

func newSelectorsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "selectors",
		Short: "Manage the WhatsApp Web element locators",
	}

	cmd.PersistentFlags().String("selectors", "", "locator profile file (default $HOME/.config/dispatch/selectors.toml)")

	cmd.AddCommand(
		newSelectorsInitCmd(app),
		newSelectorsShowCmd(app),
	)

	return cmd
}

func newSelectorsInitCmd(app *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the built-in locator profile so it can be edited",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := app.profileStore()
			if err != nil {
				return err
			}

			if !force {
				if _, err := os.Stat(store.Path()); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", store.Path())
				} else if !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("stat selectors file: %w", err)
				}
			}

			if err := store.Save(cmd.Context(), domain.DefaultLocatorProfile()); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", store.Path())
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing profile")
	return cmd
}

func newSelectorsShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the locators a run would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, err := loadProfile(cmd.Context(), app)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, entry := range []struct {
				name    string
				locator domain.Locator
			}{
				{name: "ready_marker", locator: profile.ReadyMarker},
				{name: "message_input", locator: profile.MessageInput},
				{name: "text_sent", locator: profile.TextSent},
				{name: "attach_menu", locator: profile.AttachMenu},
				{name: "file_input", locator: profile.FileInput},
				{name: "send_button", locator: profile.SendButton},
			} {
				value := entry.locator.String()
				if entry.locator.IsZero() {
					value = "(not set)"
				}
				if _, err := fmt.Fprintf(out, "%-14s %s\n", entry.name, value); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
