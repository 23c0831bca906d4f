package ports

import (
	"context"
	"time"

	"github.com/bnema/balance-dispatcher/internal/domain"
)

type ActionKind string

const (
	ActionClick      ActionKind = "click"
	ActionPressEnter ActionKind = "press_enter"
	ActionSetFiles   ActionKind = "set_files"
)

type Action struct {
	Kind  ActionKind
	Files []string
}

func Click() Action {
	return Action{Kind: ActionClick}
}

func PressEnter() Action {
	return Action{Kind: ActionPressEnter}
}

func SetFiles(paths ...string) Action {
	return Action{Kind: ActionSetFiles, Files: paths}
}

// Driver is the browser automation capability set consumed by the session and
// delivery logic. Wait methods return an error wrapping domain.ErrElementTimeout
// when the timeout elapses.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	WaitPresent(ctx context.Context, locator domain.Locator, timeout time.Duration) error
	WaitInteractable(ctx context.Context, locator domain.Locator, timeout time.Duration) error
	Interact(ctx context.Context, locator domain.Locator, action Action) error
	Close() error
}

type DriverFactory interface {
	NewDriver(ctx context.Context) (Driver, error)
}
