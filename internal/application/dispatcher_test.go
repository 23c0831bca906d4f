package application

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/bnema/balance-dispatcher/internal/domain"
	"github.com/bnema/balance-dispatcher/internal/ports"
	"github.com/bnema/balance-dispatcher/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var runStart = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func testLedger() domain.Ledger {
	columns := []string{"Assessor", "Cliente", "Total"}
	records := []domain.BalanceRecord{
		{Agent: "A1", Cells: []string{"A1", "c1", "-10"}},
		{Agent: "A1", Cells: []string{"A1", "c2", "-20"}},
		{Agent: "A1", Cells: []string{"A1", "c3", "-30"}},
		{Agent: "A2", Cells: []string{"A2", "c4", "-40"}},
	}
	return domain.Ledger{Columns: columns, GroupColumn: "Assessor", Groups: domain.GroupRecords(columns, records)}
}

type dispatcherFixture struct {
	dispatcher *Dispatcher
	factory    *mocks.MockDriverFactory
	renderer   *fileRenderer
}

func newDispatcherFixture(t *testing.T, clock ports.Clock) dispatcherFixture {
	t.Helper()

	factory := mocks.NewMockDriverFactory(t)
	renderer := &fileRenderer{failFor: map[domain.AgentID]error{}}
	messages, err := NewMessageTemplate("")
	require.NoError(t, err)

	dispatcher := NewDispatcher(
		NewSessionManager(factory, testSessionConfig(), nil),
		NewArtifactPipeline(renderer, nil),
		NewDelivery(testDeliveryConfig(), fixedClock{now: runStart}, nil),
		messages,
		clock,
		nil,
	)
	dispatcher.newRunID = func() string { return "run-1" }

	return dispatcherFixture{dispatcher: dispatcher, factory: factory, renderer: renderer}
}

func TestRunDryRunScenario(t *testing.T) {
	fx := newDispatcherFixture(t, fixedClock{now: runStart})
	directory := domain.NewDirectory([]domain.DirectoryEntry{{Agent: "A1", Phone: "5511999990000"}})
	outDir := t.TempDir()

	var streamed []domain.RecipientResult
	report, err := fx.dispatcher.Run(context.Background(), testLedger(), directory, RunOptions{
		OutDir:   outDir,
		DryRun:   true,
		OnResult: func(r domain.RecipientResult) { streamed = append(streamed, r) },
	})
	require.NoError(t, err)

	require.Len(t, report.Results, 2)
	first := report.Results[0]
	assert.Equal(t, domain.AgentID("A1"), first.Agent)
	assert.Equal(t, domain.PhoneNumber("5511999990000"), first.Phone)
	assert.Equal(t, domain.WouldSend(), first.Outcome)
	assert.Equal(t, 3, first.Records)
	assert.True(t, strings.HasSuffix(first.Artifact, "A1.png"), first.Artifact)
	assert.FileExists(t, first.Artifact)

	assert.Equal(t, domain.RecipientResult{Agent: "A2", Records: 1, Outcome: domain.SkippedNoContact()}, report.Results[1])
	assert.Equal(t, []domain.AgentID{"A1"}, fx.renderer.rendered)
	assert.Equal(t, report.Results, streamed)

	assert.True(t, report.DryRun)
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, domain.Tally{Skipped: 1, DryRun: 1}, report.Tally())
	fx.factory.AssertNotCalled(t, "NewDriver", mockAnyContext())
}

func TestRunDoesNotRenderForSkippedRecipients(t *testing.T) {
	fx := newDispatcherFixture(t, fixedClock{now: runStart})
	outDir := t.TempDir()

	report, err := fx.dispatcher.Run(context.Background(), testLedger(), domain.NewDirectory(nil), RunOptions{OutDir: outDir, DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, domain.Tally{Skipped: 2}, report.Tally())
	assert.Empty(t, fx.renderer.rendered)
	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunIsolatesRecipientFailures(t *testing.T) {
	clock := mocks.NewMockClock(t)
	clock.EXPECT().Now().Return(runStart)
	clock.EXPECT().Sleep(mockAnyContext(), 3*time.Second).Return(nil).Once()

	fx := newDispatcherFixture(t, clock)
	driver := newFakeDriver().fail("present #input 1m0s", errWaitTimeout)
	fx.factory.EXPECT().NewDriver(mockAnyContext()).Return(driver, nil).Once()

	directory := domain.NewDirectory([]domain.DirectoryEntry{
		{Agent: "A1", Phone: "5511999990000"},
		{Agent: "A2", Phone: "5511888880000"},
	})

	report, err := fx.dispatcher.Run(context.Background(), testLedger(), directory, RunOptions{
		OutDir:       t.TempDir(),
		SleepBetween: 3 * time.Second,
	})
	require.NoError(t, err)

	require.Len(t, report.Results, 2)
	assert.Equal(t, domain.Failed(domain.ReasonTimeoutOpeningChat), report.Results[0].Outcome)
	assert.Equal(t, domain.Sent(), report.Results[1].Outcome)
	assert.Contains(t, driver.calls, "click #send")
	assert.Equal(t, 1, driver.closeCount)
	assert.Equal(t, runStart, report.StartedAt)
	assert.Equal(t, runStart, report.FinishedAt)
}

func TestRunPacesOnlyAfterSentDeliveries(t *testing.T) {
	clock := mocks.NewMockClock(t)
	clock.EXPECT().Now().Return(runStart)
	clock.EXPECT().Sleep(mockAnyContext(), 5*time.Second).Return(nil).Times(2)

	fx := newDispatcherFixture(t, clock)
	driver := newFakeDriver()
	fx.factory.EXPECT().NewDriver(mockAnyContext()).Return(driver, nil).Once()

	columns := []string{"Assessor"}
	ledger := domain.Ledger{Columns: columns, Groups: domain.GroupRecords(columns, []domain.BalanceRecord{
		{Agent: "1", Cells: []string{"1"}},
		{Agent: "2", Cells: []string{"2"}},
		{Agent: "3", Cells: []string{"3"}},
	})}
	directory := domain.NewDirectory([]domain.DirectoryEntry{
		{Agent: "1", Phone: "111"},
		{Agent: "3", Phone: "333"},
	})

	report, err := fx.dispatcher.Run(context.Background(), ledger, directory, RunOptions{OutDir: t.TempDir(), SleepBetween: 5 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, domain.Tally{Sent: 2, Skipped: 1}, report.Tally())
}

func TestRunContainsRenderFailures(t *testing.T) {
	fx := newDispatcherFixture(t, fixedClock{now: runStart})
	fx.renderer.failFor["A1"] = errors.New("permission denied")
	driver := newFakeDriver()
	fx.factory.EXPECT().NewDriver(mockAnyContext()).Return(driver, nil).Once()

	directory := domain.NewDirectory([]domain.DirectoryEntry{
		{Agent: "A1", Phone: "5511999990000"},
		{Agent: "A2", Phone: "5511888880000"},
	})

	report, err := fx.dispatcher.Run(context.Background(), testLedger(), directory, RunOptions{OutDir: t.TempDir()})
	require.NoError(t, err)

	require.Len(t, report.Results, 2)
	assert.Equal(t, domain.OutcomeFailed, report.Results[0].Outcome.Kind)
	assert.Contains(t, report.Results[0].Outcome.Reason, "render:")
	assert.Contains(t, report.Results[0].Outcome.Reason, "permission denied")
	assert.Empty(t, report.Results[0].Artifact)
	assert.Equal(t, domain.Sent(), report.Results[1].Outcome)
}

func TestRunSessionReadyTimeoutIsFatal(t *testing.T) {
	fx := newDispatcherFixture(t, fixedClock{now: runStart})
	driver := newFakeDriver().fail("present side 2m0s", errWaitTimeout)
	fx.factory.EXPECT().NewDriver(mockAnyContext()).Return(driver, nil).Once()

	directory := domain.NewDirectory([]domain.DirectoryEntry{{Agent: "A1", Phone: "5511999990000"}})
	report, err := fx.dispatcher.Run(context.Background(), testLedger(), directory, RunOptions{OutDir: t.TempDir()})

	require.ErrorIs(t, err, domain.ErrSessionNotReady)
	assert.Empty(t, report.Results)
	assert.Empty(t, fx.renderer.rendered)
	assert.Equal(t, 1, driver.closeCount)
}

func TestRunClosesSessionOnPanic(t *testing.T) {
	fx := newDispatcherFixture(t, fixedClock{now: runStart})
	driver := newFakeDriver()
	fx.factory.EXPECT().NewDriver(mockAnyContext()).Return(driver, nil).Once()
	directory := domain.NewDirectory([]domain.DirectoryEntry{{Agent: "A1", Phone: "5511999990000"}})

	panicking := mocks.NewMockArtifactRenderer(t)
	panicking.EXPECT().Render(mockAnyContext(), mockAnyContext(), mockAnyContext()).
		RunAndReturn(func(context.Context, domain.AgentGroup, string) (domain.Artifact, error) {
			panic("renderer exploded")
		}).Once()
	fx.dispatcher.artifacts = NewArtifactPipeline(panicking, nil)

	assert.PanicsWithValue(t, "renderer exploded", func() {
		_, _ = fx.dispatcher.Run(context.Background(), testLedger(), directory, RunOptions{OutDir: t.TempDir()})
	})
	assert.Equal(t, 1, driver.closeCount)
}

func TestRunStopsBetweenRecipientsWhenCanceled(t *testing.T) {
	fx := newDispatcherFixture(t, fixedClock{now: runStart})
	driver := newFakeDriver()
	fx.factory.EXPECT().NewDriver(mockAnyContext()).Return(driver, nil).Once()
	directory := domain.NewDirectory([]domain.DirectoryEntry{
		{Agent: "A1", Phone: "5511999990000"},
		{Agent: "A2", Phone: "5511888880000"},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	report, err := fx.dispatcher.Run(ctx, testLedger(), directory, RunOptions{
		OutDir: t.TempDir(),
		OnResult: func(domain.RecipientResult) {
			cancel()
		},
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, report.Results, 1)
	assert.Equal(t, 1, driver.closeCount)
}

func TestRunJoinsSessionCloseError(t *testing.T) {
	fx := newDispatcherFixture(t, fixedClock{now: runStart})
	driver := newFakeDriver()
	driver.closeErr = errors.New("chrome crashed")
	fx.factory.EXPECT().NewDriver(mockAnyContext()).Return(driver, nil).Once()

	_, err := fx.dispatcher.Run(context.Background(), domain.Ledger{}, domain.NewDirectory(nil), RunOptions{OutDir: t.TempDir()})

	require.Error(t, err)
	assert.ErrorContains(t, err, "close chat session: chrome crashed")
}
