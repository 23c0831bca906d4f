package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/balance-dispatcher/internal/domain"
	"github.com/bnema/balance-dispatcher/internal/platform/logger"
	"github.com/bnema/balance-dispatcher/internal/ports"
	"github.com/google/uuid"
)

// Dispatcher walks the ledger one agent at a time and records an outcome for
// each. Recipients never overlap: the chat client is a single shared UI.
type Dispatcher struct {
	sessions  SessionOpener
	artifacts *ArtifactPipeline
	delivery  *Delivery
	messages  *MessageTemplate
	clock     ports.Clock
	log       *logger.Logger
	newRunID  func() string
}

func NewDispatcher(sessions SessionOpener, artifacts *ArtifactPipeline, delivery *Delivery, messages *MessageTemplate, clock ports.Clock, log *logger.Logger) *Dispatcher {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Dispatcher{
		sessions:  sessions,
		artifacts: artifacts,
		delivery:  delivery,
		messages:  messages,
		clock:     clock,
		log:       log.With("component", "dispatcher"),
		newRunID:  uuid.NewString,
	}
}

// Run dispatches every ledger group. The returned error is reserved for
// batch-level failures; recipient failures only show up in the report. When a
// session was opened it is closed before Run returns, panics included.
func (d *Dispatcher) Run(ctx context.Context, ledger domain.Ledger, directory domain.Directory, opts RunOptions) (report domain.RunReport, err error) {
	opts = opts.withDefaults()
	report = domain.RunReport{
		RunID:     d.newRunID(),
		DryRun:    opts.DryRun,
		StartedAt: d.clock.Now(),
		Results:   make([]domain.RecipientResult, 0, len(ledger.Groups)),
	}
	log := d.log.With("run_id", report.RunID)
	log.Info("dispatch started", "groups", len(ledger.Groups), "dry_run", opts.DryRun, "out_dir", opts.OutDir)

	defer func() {
		report.FinishedAt = d.clock.Now()
	}()

	var session *Session
	if !opts.DryRun {
		session, err = d.sessions.Open(ctx)
		if err != nil {
			return report, fmt.Errorf("open chat session: %w", err)
		}
		defer func() {
			if closeErr := session.Close(); closeErr != nil {
				err = errors.Join(err, fmt.Errorf("close chat session: %w", closeErr))
			}
		}()
	}

	for _, group := range ledger.Groups {
		if ctxErr := ctx.Err(); ctxErr != nil {
			log.Warn("dispatch interrupted", "completed", len(report.Results), "error", ctxErr)
			return report, ctxErr
		}

		result := d.dispatchGroup(ctx, session, group, directory, opts, log)
		report.Results = append(report.Results, result)
		opts.notify(result)

		if result.Outcome.Kind != domain.OutcomeSent {
			continue
		}
		if sleepErr := d.clock.Sleep(ctx, opts.SleepBetween); sleepErr != nil {
			log.Warn("dispatch interrupted while pacing", "error", sleepErr)
			return report, sleepErr
		}
	}

	tally := report.Tally()
	log.Info("dispatch finished", "sent", tally.Sent, "skipped", tally.Skipped, "failed", tally.Failed, "dry_run", tally.DryRun)
	return report, nil
}

func (d *Dispatcher) dispatchGroup(ctx context.Context, session *Session, group domain.AgentGroup, directory domain.Directory, opts RunOptions, log *logger.Logger) domain.RecipientResult {
	result := domain.RecipientResult{Agent: group.Agent, Records: len(group.Records)}
	log = log.With("agent", group.Agent)

	phone, ok := directory.Resolve(group.Agent)
	if !ok {
		log.Info("no phone registered, skipping")
		result.Outcome = domain.SkippedNoContact()
		return result
	}
	result.Phone = phone
	recipient := domain.Recipient{Agent: group.Agent, Phone: phone}

	artifact, err := d.artifacts.Produce(ctx, opts.OutDir, group)
	if err != nil {
		log.Error("artifact rendering failed", "error", err)
		result.Outcome = domain.Failed(fmt.Sprintf("render: %v", err))
		return result
	}
	result.Artifact = artifact.Path

	if opts.DryRun {
		log.Info("dry run, not sending", "phone", phone, "artifact", artifact.Path)
		result.Outcome = domain.WouldSend()
		return result
	}

	message, err := d.messages.Render(recipient, group)
	if err != nil {
		log.Error("message rendering failed", "error", err)
		result.Outcome = domain.Failed(fmt.Sprintf("message: %v", err))
		return result
	}

	result.Outcome = d.delivery.Deliver(ctx, session, recipient, artifact, message)
	if result.Outcome.Kind == domain.OutcomeSent {
		log.Info("delivered", "phone", phone)
	}

	return result
}
