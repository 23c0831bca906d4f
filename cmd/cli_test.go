package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/balance-dispatcher/internal/adapters/browser"
	"github.com/bnema/balance-dispatcher/internal/domain"
	"github.com/bnema/balance-dispatcher/internal/platform/logger"
	"github.com/bnema/balance-dispatcher/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDryRunReportsWouldSendAndSkip(t *testing.T) {
	home := t.TempDir()
	ledger, directory := writeSourceFixtures(t, home)
	outDir := filepath.Join(home, "out")
	factory := &recordingFactory{}

	stdout, _, err := executeCLIWith(t, home, testDependencies(factory),
		"run", "--ledger", ledger, "--directory", directory, "--out-dir", outDir, "--dry-run",
	)
	require.NoError(t, err)

	artifact := filepath.Join(outDir, "imagem_assessor_A1.png")
	assert.Contains(t, stdout, "[DRY-RUN] would send "+artifact+" to agent A1 -> 5511999990000")
	assert.Contains(t, stdout, "[SKIP] agent A2 has no registered phone")
	assert.Contains(t, stdout, "would send: 1")
	assert.Contains(t, stdout, "skipped: 1")
	assert.FileExists(t, artifact)
	assert.NoFileExists(t, filepath.Join(outDir, "imagem_assessor_A2.png"))
	assert.Zero(t, factory.created())
}

func TestRunAcceptsLegacyFlagNamesAndJSONOutput(t *testing.T) {
	home := t.TempDir()
	ledger, directory := writeSourceFixtures(t, home)

	stdout, _, err := executeCLIWith(t, home, testDependencies(&recordingFactory{}),
		"run", "--saldos", ledger, "--contatos", directory,
		"--out-dir", filepath.Join(home, "out"), "--dry-run", "--json",
	)
	require.NoError(t, err)
	require.True(t, json.Valid([]byte(stdout)), stdout)

	var report domain.RunReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.True(t, report.DryRun)
	assert.NotEmpty(t, report.RunID)
	require.Len(t, report.Results, 2)
	assert.Equal(t, domain.AgentID("A1"), report.Results[0].Agent)
	assert.Equal(t, 3, report.Results[0].Records)
	assert.Equal(t, domain.OutcomeDryRun, report.Results[0].Outcome.Kind)
	assert.Equal(t, domain.OutcomeSkippedNoContact, report.Results[1].Outcome.Kind)
	assert.NotContains(t, stdout, "[DRY-RUN]")
}

func TestRunSendsThroughBrowserSession(t *testing.T) {
	home := t.TempDir()
	ledger, directory := writeSourceFixtures(t, home)
	outDir := filepath.Join(home, "out")
	factory := &recordingFactory{}

	stdout, _, err := executeCLIWith(t, home, testDependencies(factory),
		"run", "--ledger", ledger, "--directory", directory, "--out-dir", outDir, "--headless",
	)
	require.NoError(t, err)

	assert.Contains(t, stdout, "[OK] sent to agent A1 -> 5511999990000")
	assert.Contains(t, stdout, "[SKIP] agent A2 has no registered phone")
	assert.Contains(t, stdout, "sent: 1")
	require.Equal(t, 1, factory.created())
	assert.True(t, factory.lastConfig.Headless)

	driver := factory.drivers[0]
	assert.Equal(t, 1, driver.closeCount)
	require.NotEmpty(t, driver.calls)
	assert.Equal(t, "navigate https://web.whatsapp.com", driver.calls[0])
	assert.Contains(t, strings.Join(driver.calls, "\n"), "navigate https://web.whatsapp.com/send?phone=5511999990000&text=")

	artifact, err := filepath.Abs(filepath.Join(outDir, "imagem_assessor_A1.png"))
	require.NoError(t, err)
	assert.Contains(t, driver.calls, "set_files "+artifact)
	assert.Equal(t, "click span[data-icon='send'], span[data-icon='send-light']", driver.calls[len(driver.calls)-1])
}

func TestRunFailsWhenSessionNeverBecomesReady(t *testing.T) {
	home := t.TempDir()
	ledger, directory := writeSourceFixtures(t, home)
	factory := &recordingFactory{readyErr: fmt.Errorf("%w after 2m0s", domain.ErrElementTimeout)}

	stdout, _, err := executeCLIWith(t, home, testDependencies(factory),
		"run", "--ledger", ledger, "--directory", directory, "--out-dir", filepath.Join(home, "out"),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSessionNotReady)
	assert.NotContains(t, stdout, "[OK]")
	require.Equal(t, 1, factory.created())
	assert.Equal(t, 1, factory.drivers[0].closeCount)
}

func TestRunRequiresSourcePaths(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLIWith(t, home, testDependencies(&recordingFactory{}), "run", "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger path is required")
}

func TestRunRejectsLedgerWithoutGroupColumn(t *testing.T) {
	home := t.TempDir()
	_, directory := writeSourceFixtures(t, home)
	ledger := filepath.Join(home, "bad.csv")
	require.NoError(t, os.WriteFile(ledger, []byte("Agente,Total\nA1,-1\n"), 0o644))

	_, _, err := executeCLIWith(t, home, testDependencies(&recordingFactory{}),
		"run", "--ledger", ledger, "--directory", directory, "--dry-run",
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingColumn)
}

func TestRunReadsOutputDirFromEnvironment(t *testing.T) {
	home := t.TempDir()
	ledger, directory := writeSourceFixtures(t, home)
	outDir := filepath.Join(home, "from-env")
	t.Setenv("DISPATCH_OUTPUT_DIR", outDir)

	_, _, err := executeCLIWith(t, home, testDependencies(&recordingFactory{}),
		"run", "--ledger", ledger, "--directory", directory, "--dry-run",
	)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outDir, "imagem_assessor_A1.png"))
}

func TestSelectorsInitThenShow(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "selectors.toml")

	stdout, _, err := executeCLI(t, home, "selectors", "init", "--selectors", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "wrote "+path)
	assert.FileExists(t, path)

	_, _, err = executeCLI(t, home, "selectors", "init", "--selectors", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = executeCLI(t, home, "selectors", "init", "--selectors", path, "--force")
	require.NoError(t, err)

	stdout, _, err = executeCLI(t, home, "selectors", "show", "--selectors", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "ready_marker")
	assert.Contains(t, stdout, "id=side")
	assert.Contains(t, stdout, "text_sent      (not set)")
}

func TestSelectorsShowFallsBackToBuiltInProfile(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "selectors", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, `xpath=//*[@id="main"]//footer//p`)
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	return executeCLIWith(t, home, testDependencies(&recordingFactory{}), args...)
}

func executeCLIWith(t *testing.T, home string, deps dependencies, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmdWith(deps)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(append(args, "--env-file", filepath.Join(home, ".env"), "--log-level", "error"))

	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func testDependencies(factory *recordingFactory) dependencies {
	deps := defaultDependencies()
	deps.driverFactory = func(cfg browser.Config, _ *logger.Logger) ports.DriverFactory {
		factory.lastConfig = cfg
		return factory
	}
	deps.clock = instantClock{}
	return deps
}

func writeSourceFixtures(t *testing.T, dir string) (string, string) {
	t.Helper()

	ledger := filepath.Join(dir, "saldos.csv")
	require.NoError(t, os.WriteFile(ledger, []byte(`Assessor,Cliente,D0,D+1,Total
A1,Ana,-100.5,0,-100.5
A2,Bruno,-20,-5,-25
A1,Carla,-1234.56,10,-1224.56
A1,Davi,0,-3,-3
`), 0o644))

	directory := filepath.Join(dir, "contatos.csv")
	require.NoError(t, os.WriteFile(directory, []byte(`codigo,numero
A1, 5511999990000
A2,nan
`), 0o644))

	return ledger, directory
}

type instantClock struct{}

func (instantClock) Now() time.Time {
	return time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)
}

func (instantClock) Sleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

type recordingFactory struct {
	mu         sync.Mutex
	drivers    []*recordingDriver
	lastConfig browser.Config
	readyErr   error
}

func (f *recordingFactory) NewDriver(context.Context) (ports.Driver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	driver := &recordingDriver{readyErr: f.readyErr}
	f.drivers = append(f.drivers, driver)
	return driver, nil
}

func (f *recordingFactory) created() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.drivers)
}

type recordingDriver struct {
	calls      []string
	readyErr   error
	closeCount int
}

func (d *recordingDriver) Navigate(_ context.Context, url string) error {
	d.calls = append(d.calls, "navigate "+url)
	return nil
}

func (d *recordingDriver) WaitPresent(_ context.Context, locator domain.Locator, _ time.Duration) error {
	d.calls = append(d.calls, "present "+locator.Value)
	if locator == domain.DefaultLocatorProfile().ReadyMarker {
		return d.readyErr
	}
	return nil
}

func (d *recordingDriver) WaitInteractable(_ context.Context, locator domain.Locator, _ time.Duration) error {
	d.calls = append(d.calls, "interactable "+locator.Value)
	return nil
}

func (d *recordingDriver) Interact(_ context.Context, locator domain.Locator, action ports.Action) error {
	key := fmt.Sprintf("%s %s", action.Kind, locator.Value)
	if len(action.Files) > 0 {
		key = fmt.Sprintf("%s %s", action.Kind, strings.Join(action.Files, " "))
	}
	d.calls = append(d.calls, key)
	return nil
}

func (d *recordingDriver) Close() error {
	d.closeCount++
	return nil
}
