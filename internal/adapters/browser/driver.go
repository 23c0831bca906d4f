package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/balance-dispatcher/internal/domain"
	"github.com/bnema/balance-dispatcher/internal/platform/logger"
	"github.com/bnema/balance-dispatcher/internal/ports"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

const (
	DefaultWindowWidth   = 1280
	DefaultWindowHeight  = 900
	DefaultActionTimeout = 30 * time.Second
)

type Config struct {
	Headless      bool
	UserDataDir   string
	ExecPath      string
	WindowWidth   int
	WindowHeight  int
	ActionTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.WindowWidth <= 0 {
		c.WindowWidth = DefaultWindowWidth
	}
	if c.WindowHeight <= 0 {
		c.WindowHeight = DefaultWindowHeight
	}
	if c.ActionTimeout <= 0 {
		c.ActionTimeout = DefaultActionTimeout
	}
	return c
}

// Factory launches one Chrome instance per driver.
type Factory struct {
	cfg Config
	log *logger.Logger
}

var _ ports.DriverFactory = (*Factory)(nil)

func NewFactory(cfg Config, log *logger.Logger) *Factory {
	if log == nil {
		log = logger.NewNop()
	}
	return &Factory{cfg: cfg.withDefaults(), log: log.With("component", "browser")}
}

func (f *Factory) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", f.cfg.Headless),
		chromedp.WindowSize(f.cfg.WindowWidth, f.cfg.WindowHeight),
	)
	if f.cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(f.cfg.UserDataDir))
	}
	if f.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(f.cfg.ExecPath))
	}
	return opts
}

func (f *Factory) NewDriver(ctx context.Context) (ports.Driver, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), f.allocatorOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(f.log.SugaredLogger.Debugf))

	// An empty run starts the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	f.log.Debug("browser started", "headless", f.cfg.Headless, "user_data_dir", f.cfg.UserDataDir)

	return &Driver{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		actionTimeout: f.cfg.ActionTimeout,
	}, nil
}

// Driver drives a single Chrome tab.
type Driver struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	actionTimeout time.Duration

	closeOnce sync.Once
	closeErr  error
}

var _ ports.Driver = (*Driver)(nil)

func (d *Driver) Navigate(ctx context.Context, url string) error {
	if err := d.run(ctx, d.actionTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}
	return nil
}

func (d *Driver) WaitPresent(ctx context.Context, locator domain.Locator, timeout time.Duration) error {
	query, err := queryOption(locator)
	if err != nil {
		return err
	}
	return d.run(ctx, timeout, chromedp.WaitReady(locator.Value, query))
}

func (d *Driver) WaitInteractable(ctx context.Context, locator domain.Locator, timeout time.Duration) error {
	query, err := queryOption(locator)
	if err != nil {
		return err
	}
	return d.run(ctx, timeout, chromedp.WaitVisible(locator.Value, query))
}

func (d *Driver) Interact(ctx context.Context, locator domain.Locator, action ports.Action) error {
	query, err := queryOption(locator)
	if err != nil {
		return err
	}

	var step chromedp.Action
	switch action.Kind {
	case ports.ActionClick:
		step = chromedp.Click(locator.Value, query, chromedp.NodeVisible)
	case ports.ActionPressEnter:
		step = chromedp.SendKeys(locator.Value, kb.Enter, query, chromedp.NodeVisible)
	case ports.ActionSetFiles:
		if len(action.Files) == 0 {
			return errors.New("set files: no files given")
		}
		step = chromedp.SetUploadFiles(locator.Value, action.Files, query, chromedp.NodeReady)
	default:
		return fmt.Errorf("unsupported action %q", action.Kind)
	}

	if err := d.run(ctx, d.actionTimeout, step); err != nil {
		return fmt.Errorf("%s %s: %w", action.Kind, locator, err)
	}
	return nil
}

func (d *Driver) Close() error {
	d.closeOnce.Do(func() {
		d.closeErr = chromedp.Cancel(d.browserCtx)
		d.browserCancel()
		d.allocCancel()
		if errors.Is(d.closeErr, context.Canceled) {
			d.closeErr = nil
		}
	})
	return d.closeErr
}

// run executes actions on the tab bounded by timeout and by ctx. Hitting the
// timeout is reported as domain.ErrElementTimeout.
func (d *Driver) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(d.browserCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", domain.ErrElementTimeout, timeout)
	}
	return err
}

func queryOption(locator domain.Locator) (chromedp.QueryOption, error) {
	if err := locator.Validate(); err != nil {
		return nil, err
	}

	switch locator.Strategy {
	case domain.LocateByXPath:
		return chromedp.BySearch, nil
	case domain.LocateByID:
		return chromedp.ByID, nil
	default:
		return chromedp.ByQuery, nil
	}
}
