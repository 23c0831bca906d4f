package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bnema/balance-dispatcher/internal/adapters/browser"
	profiletoml "github.com/bnema/balance-dispatcher/internal/adapters/profile/toml"
	"github.com/bnema/balance-dispatcher/internal/adapters/render/summary"
	"github.com/bnema/balance-dispatcher/internal/config"
	"github.com/bnema/balance-dispatcher/internal/domain"
	"github.com/bnema/balance-dispatcher/internal/platform/logger"
	"github.com/bnema/balance-dispatcher/internal/ports"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys binds command flags to config keys so flags override the config
// file and the environment.
var flagKeys = map[string]string{
	"ledger":        config.KeyLedgerPath,
	"directory":     config.KeyDirectoryPath,
	"out-dir":       config.KeyOutputDir,
	"headless":      config.KeyBrowserHeadless,
	"user-data-dir": config.KeyBrowserUserDataDir,
	"sleep-between": config.KeySleepBetween,
	"selectors":     config.KeySelectorsPath,
	"log-level":     config.KeyLogLevel,
	"log-mode":      config.KeyLogMode,
}

type dependencies struct {
	driverFactory   func(browser.Config, *logger.Logger) ports.DriverFactory
	clock           ports.Clock
	summaryRenderer func(domain.RunReport) (string, error)
	isTerminal      func(io.Writer) bool
}

func defaultDependencies() dependencies {
	return dependencies{
		driverFactory: func(cfg browser.Config, log *logger.Logger) ports.DriverFactory {
			return browser.NewFactory(cfg, log)
		},
		clock:           ports.SystemClock{},
		summaryRenderer: summary.Render,
		isTerminal:      writerIsTerminal,
	}
}

type app struct {
	deps       dependencies
	configFile string
	envFile    string

	viper *viper.Viper
	cfg   config.Config
	log   *logger.Logger
}

func (a *app) load(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return err
	}

	v, err := config.New(a.configFile)
	if err != nil {
		return err
	}

	var bindErr error
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		key, ok := flagKeys[flag.Name]
		if !ok || bindErr != nil {
			return
		}
		if err := v.BindPFlag(key, flag); err != nil {
			bindErr = fmt.Errorf("bind flag %s: %w", flag.Name, err)
		}
	})
	if bindErr != nil {
		return bindErr
	}

	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("wire logger: %w", err)
	}

	a.viper = v
	a.cfg = cfg
	a.log = log
	return nil
}

func (a *app) close() {
	if a.log != nil {
		a.log.Sync()
	}
}

func (a *app) profileStore() (*profiletoml.Store, error) {
	store, err := profiletoml.NewStore(a.cfg.SelectorsPath)
	if err != nil {
		return nil, fmt.Errorf("wire selectors store: %w", err)
	}
	return store, nil
}

func (a *app) browserConfig() browser.Config {
	return browser.Config{
		Headless:      a.cfg.Browser.Headless,
		UserDataDir:   a.cfg.Browser.UserDataDir,
		ExecPath:      a.cfg.Browser.ExecPath,
		ActionTimeout: a.cfg.Browser.ActionTimeout,
	}
}

func writerIsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

func isProfileNotFound(err error) bool {
	return errors.Is(err, domain.ErrProfileNotFound)
}
