package application

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bnema/balance-dispatcher/internal/domain"
	"github.com/bnema/balance-dispatcher/internal/ports"
	"github.com/stretchr/testify/mock"
)

// fakeDriver records every primitive call and replays scripted errors. Errors
// are queued per call key and consumed one call at a time.
type fakeDriver struct {
	calls      []string
	script     map[string][]error
	closeCount int
	closeErr   error
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{script: map[string][]error{}}
}

var _ ports.Driver = (*fakeDriver)(nil)

func (f *fakeDriver) fail(key string, errs ...error) *fakeDriver {
	f.script[key] = append(f.script[key], errs...)
	return f
}

func (f *fakeDriver) record(key string) error {
	f.calls = append(f.calls, key)
	queue := f.script[key]
	if len(queue) == 0 {
		return nil
	}
	f.script[key] = queue[1:]
	return queue[0]
}

func (f *fakeDriver) Navigate(_ context.Context, url string) error {
	return f.record("navigate " + url)
}

func (f *fakeDriver) WaitPresent(_ context.Context, locator domain.Locator, timeout time.Duration) error {
	return f.record(fmt.Sprintf("present %s %s", locator.Value, timeout))
}

func (f *fakeDriver) WaitInteractable(_ context.Context, locator domain.Locator, timeout time.Duration) error {
	return f.record(fmt.Sprintf("interactable %s %s", locator.Value, timeout))
}

func (f *fakeDriver) Interact(_ context.Context, locator domain.Locator, action ports.Action) error {
	key := fmt.Sprintf("%s %s", action.Kind, locator.Value)
	for _, file := range action.Files {
		key += " " + file
	}
	return f.record(key)
}

func (f *fakeDriver) Close() error {
	f.closeCount++
	return f.closeErr
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func (c fixedClock) Sleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// fileRenderer writes a placeholder file so artifact paths exist on disk.
type fileRenderer struct {
	rendered []domain.AgentID
	failFor  map[domain.AgentID]error
}

func (r *fileRenderer) Render(_ context.Context, group domain.AgentGroup, destination string) (domain.Artifact, error) {
	if err := r.failFor[group.Agent]; err != nil {
		return domain.Artifact{}, err
	}
	r.rendered = append(r.rendered, group.Agent)
	if err := os.WriteFile(destination, []byte("png"), 0o644); err != nil {
		return domain.Artifact{}, err
	}
	return domain.Artifact{Agent: group.Agent, Path: destination}, nil
}

func testLocators() domain.LocatorProfile {
	return domain.LocatorProfile{
		ReadyMarker:  domain.ByID("side"),
		MessageInput: domain.CSS("#input"),
		AttachMenu:   domain.CSS("#clip"),
		FileInput:    domain.CSS("#file"),
		SendButton:   domain.CSS("#send"),
	}
}

func testSessionConfig() SessionConfig {
	return SessionConfig{
		LandingURL:   "https://chat.test/",
		ReadyMarker:  domain.ByID("side"),
		ReadyTimeout: DefaultReadyTimeout,
	}
}

func testDeliveryConfig() DeliveryConfig {
	return DeliveryConfig{
		BaseURL:  "https://chat.test",
		Locators: testLocators(),
		Timeouts: DefaultDeliveryTimeouts(),
	}
}

func readySession(driver *fakeDriver) *Session {
	return &Session{driver: driver, state: domain.SessionReady}
}

func mockAnyContext() interface{} {
	return mock.Anything
}
