package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bnema/balance-dispatcher/internal/adapters/render/summary"
	tablerender "github.com/bnema/balance-dispatcher/internal/adapters/render/table"
	"github.com/bnema/balance-dispatcher/internal/adapters/sheet"
	"github.com/bnema/balance-dispatcher/internal/application"
	"github.com/bnema/balance-dispatcher/internal/domain"
	"github.com/spf13/cobra"
)

type runFlags struct {
	dryRun bool
	asJSON bool
}

func newRunCmd(app *app) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Render and send the balance report of every agent in the ledger",
		Example: `  dispatch run --ledger saldos.xlsx --directory contatos.xlsx
  dispatch run --saldos saldos.xlsx --contatos contatos.xlsx --dry-run
  dispatch run --ledger saldos.csv --directory contatos.csv --headless --user-data-dir ~/.cache/dispatch-chrome`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDispatch(cmd, app, flags)
		},
	}

	cmd.Flags().SetNormalizeFunc(legacyFlagNames)
	cmd.Flags().String("ledger", "", "balances ledger (.xlsx or .csv); alias --saldos")
	cmd.Flags().String("directory", "", "agent phone directory (.xlsx or .csv); alias --contatos")
	cmd.Flags().String("out-dir", application.DefaultOutDir, "directory for the rendered images")
	cmd.Flags().Bool("headless", false, "run Chrome without a window")
	cmd.Flags().String("user-data-dir", "", "Chrome profile directory kept between runs")
	cmd.Flags().Int("sleep-between", int(application.DefaultSleepBetween.Seconds()), "seconds to wait after each sent report")
	cmd.Flags().String("selectors", "", "locator profile file (default $HOME/.config/dispatch/selectors.toml)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "resolve and render only, never open WhatsApp Web")
	cmd.Flags().BoolVar(&flags.asJSON, "json", false, "print the run report as JSON")

	return cmd
}

func runDispatch(cmd *cobra.Command, app *app, flags runFlags) error {
	ctx := cmd.Context()
	cfg := app.cfg
	log := app.log

	if cfg.Ledger.Path == "" {
		return errors.New("ledger path is required (--ledger)")
	}
	if cfg.Directory.Path == "" {
		return errors.New("directory path is required (--directory)")
	}

	ledger, err := sheet.NewLedgerLoader(cfg.Ledger.GroupColumn, cfg.Ledger.Sheet).LoadLedger(ctx, cfg.Ledger.Path)
	if err != nil {
		return err
	}
	directory, err := sheet.NewDirectoryLoader(cfg.Directory.IDColumn, cfg.Directory.PhoneColumn, cfg.Directory.Sheet).LoadDirectory(ctx, cfg.Directory.Path)
	if err != nil {
		return err
	}
	log.Info("sources loaded", "agents", len(ledger.Groups), "records", ledger.RecordCount(), "contacts", directory.Len())

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	profile, err := loadProfile(ctx, app)
	if err != nil {
		return err
	}

	renderer, err := tablerender.NewRenderer(tablerender.DefaultFontSize)
	if err != nil {
		return fmt.Errorf("wire renderer: %w", err)
	}
	messages, err := application.NewMessageTemplate(cfg.MessageTemplate)
	if err != nil {
		return err
	}

	sessions := application.NewSessionManager(
		app.deps.driverFactory(app.browserConfig(), log),
		application.SessionConfig{
			LandingURL:   cfg.BaseURL,
			ReadyMarker:  profile.ReadyMarker,
			ReadyTimeout: cfg.Timeouts.Ready,
		},
		log,
	)
	var opener application.SessionOpener = sessions
	if !cfg.Browser.Headless && !flags.asJSON && app.deps.isTerminal(cmd.ErrOrStderr()) {
		opener = spinnerOpener{inner: sessions, output: cmd.ErrOrStderr()}
	}

	delivery := application.NewDelivery(application.DeliveryConfig{
		BaseURL:  cfg.BaseURL,
		Locators: profile,
		Timeouts: application.DeliveryTimeouts{
			OpenChat:   cfg.Timeouts.OpenChat,
			Settle:     cfg.Timeouts.Settle,
			AttachMenu: cfg.Timeouts.AttachMenu,
			FileInput:  cfg.Timeouts.FileInput,
			SendButton: cfg.Timeouts.SendButton,
		},
	}, app.deps.clock, log)

	dispatcher := application.NewDispatcher(
		opener,
		application.NewArtifactPipeline(renderer, log),
		delivery,
		messages,
		app.deps.clock,
		log,
	)

	out := cmd.OutOrStdout()
	report, err := dispatcher.Run(ctx, ledger, directory, application.RunOptions{
		OutDir:       cfg.OutputDir,
		DryRun:       flags.dryRun,
		SleepBetween: cfg.SleepBetween,
		OnResult: func(result domain.RecipientResult) {
			if !flags.asJSON {
				_, _ = fmt.Fprintln(out, summary.ResultLine(result))
			}
		},
	})
	if err != nil {
		return err
	}

	return writeRunReport(out, app, report, flags.asJSON)
}

func loadProfile(ctx context.Context, app *app) (domain.LocatorProfile, error) {
	store, err := app.profileStore()
	if err != nil {
		return domain.LocatorProfile{}, err
	}

	profile, err := store.Load(ctx)
	if isProfileNotFound(err) {
		app.log.Debug("no selectors file, using built-in locators", "path", store.Path())
		return profile, nil
	}
	if err != nil {
		return domain.LocatorProfile{}, fmt.Errorf("load selectors: %w", err)
	}

	return profile, nil
}

func writeRunReport(out io.Writer, app *app, report domain.RunReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	rendered, err := app.deps.summaryRenderer(report)
	if err != nil {
		return fmt.Errorf("render summary: %w", err)
	}

	_, err = fmt.Fprintln(out, rendered)
	return err
}
