package application

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/balance-dispatcher/internal/domain"
	"github.com/bnema/balance-dispatcher/internal/platform/logger"
	"github.com/bnema/balance-dispatcher/internal/ports"
)

const DefaultBaseURL = "https://web.whatsapp.com"

type DeliveryTimeouts struct {
	OpenChat   time.Duration
	Settle     time.Duration
	AttachMenu time.Duration
	FileInput  time.Duration
	SendButton time.Duration
}

func DefaultDeliveryTimeouts() DeliveryTimeouts {
	return DeliveryTimeouts{
		OpenChat:   60 * time.Second,
		Settle:     1 * time.Second,
		AttachMenu: 15 * time.Second,
		FileInput:  20 * time.Second,
		SendButton: 30 * time.Second,
	}
}

type DeliveryConfig struct {
	BaseURL  string
	Locators domain.LocatorProfile
	Timeouts DeliveryTimeouts
}

// Delivery runs the per-recipient protocol: open the addressed chat, submit the
// prefilled text, attach the artifact and confirm the send.
type Delivery struct {
	cfg   DeliveryConfig
	clock ports.Clock
	log   *logger.Logger
}

func NewDelivery(cfg DeliveryConfig, clock ports.Clock, log *logger.Logger) *Delivery {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Delivery{cfg: cfg, clock: clock, log: log.With("component", "delivery")}
}

// stepError carries the failure reason recorded for the recipient.
type stepError struct {
	reason string
	err    error
}

func (e *stepError) Error() string {
	return fmt.Sprintf("%s: %v", e.reason, e.err)
}

func (e *stepError) Unwrap() error {
	return e.err
}

type deliveryRun struct {
	driver    ports.Driver
	recipient domain.Recipient
	artifact  domain.Artifact
	message   string
}

// Deliver drives one recipient to Delivered or Failed. It never returns an
// error: every failure is folded into the outcome so the batch can continue.
func (d *Delivery) Deliver(ctx context.Context, session *Session, recipient domain.Recipient, artifact domain.Artifact, message string) domain.Outcome {
	log := d.log.With("agent", recipient.Agent, "phone", recipient.Phone)

	if session == nil {
		return domain.Failed(domain.ReasonSessionNotReady)
	}
	driver, err := session.ready()
	if err != nil {
		log.Warn("delivery refused", "error", err)
		return domain.Failed(domain.ReasonSessionNotReady)
	}

	run := deliveryRun{driver: driver, recipient: recipient, artifact: artifact, message: message}
	state := domain.StateAddressingChat
	for !state.Terminal() {
		log.Debug("delivery step", "state", state)

		next, err := d.step(ctx, state, run)
		if err != nil {
			reason := failureReason(state, err)
			log.Warn("delivery failed", "state", state, "reason", reason, "error", err)
			return domain.Failed(reason)
		}
		state = next
	}

	return domain.Sent()
}

func (d *Delivery) step(ctx context.Context, state domain.DeliveryState, run deliveryRun) (domain.DeliveryState, error) {
	switch state {
	case domain.StateAddressingChat:
		return domain.StateSubmittingText, d.addressChat(ctx, run)
	case domain.StateSubmittingText:
		return domain.StateAttachingArtifact, d.submitText(ctx, run)
	case domain.StateAttachingArtifact:
		return domain.StateConfirmingSend, d.attachArtifact(ctx, run)
	case domain.StateConfirmingSend:
		return domain.StateDelivered, d.confirmSend(ctx, run)
	default:
		return domain.StateFailed, fmt.Errorf("unexpected delivery state %q", state)
	}
}

func (d *Delivery) addressChat(ctx context.Context, run deliveryRun) error {
	target := ChatURL(d.cfg.BaseURL, run.recipient.Phone, run.message)
	if err := run.driver.Navigate(ctx, target); err != nil {
		return err
	}

	if err := run.driver.WaitPresent(ctx, d.cfg.Locators.MessageInput, d.cfg.Timeouts.OpenChat); err != nil {
		return timeoutAs(domain.ReasonTimeoutOpeningChat, err)
	}

	return nil
}

func (d *Delivery) submitText(ctx context.Context, run deliveryRun) error {
	if err := run.driver.Interact(ctx, d.cfg.Locators.MessageInput, ports.PressEnter()); err != nil {
		return err
	}

	if d.cfg.Locators.TextSent.IsZero() {
		return d.clock.Sleep(ctx, d.cfg.Timeouts.Settle)
	}

	if err := run.driver.WaitPresent(ctx, d.cfg.Locators.TextSent, d.cfg.Timeouts.Settle); err != nil {
		return timeoutAs(domain.ReasonTimeoutTextConfirm, err)
	}

	return nil
}

func (d *Delivery) attachArtifact(ctx context.Context, run deliveryRun) error {
	// Some layouts expose the file input without opening the menu first, so any
	// problem with the menu trigger is not a failure.
	if menu := d.cfg.Locators.AttachMenu; !menu.IsZero() {
		if err := run.driver.WaitInteractable(ctx, menu, d.cfg.Timeouts.AttachMenu); err != nil {
			d.log.Debug("attach menu not available", "error", err)
		} else if err := run.driver.Interact(ctx, menu, ports.Click()); err != nil {
			d.log.Debug("attach menu click failed", "error", err)
		}
	}

	path, err := filepath.Abs(run.artifact.Path)
	if err != nil {
		return fmt.Errorf("resolve artifact path: %w", err)
	}

	if err := run.driver.WaitPresent(ctx, d.cfg.Locators.FileInput, d.cfg.Timeouts.FileInput); err != nil {
		return timeoutAs(domain.ReasonTimeoutAttachmentInput, err)
	}

	return run.driver.Interact(ctx, d.cfg.Locators.FileInput, ports.SetFiles(path))
}

func (d *Delivery) confirmSend(ctx context.Context, run deliveryRun) error {
	if err := run.driver.WaitInteractable(ctx, d.cfg.Locators.SendButton, d.cfg.Timeouts.SendButton); err != nil {
		return timeoutAs(domain.ReasonTimeoutSendButton, err)
	}

	return run.driver.Interact(ctx, d.cfg.Locators.SendButton, ports.Click())
}

// timeoutAs tags wait timeouts with reason and passes other errors through.
func timeoutAs(reason string, err error) error {
	if isTimeout(err) {
		return &stepError{reason: reason, err: err}
	}
	return err
}

func isTimeout(err error) bool {
	return errors.Is(err, domain.ErrElementTimeout) || errors.Is(err, context.DeadlineExceeded)
}

func failureReason(state domain.DeliveryState, err error) string {
	var stepErr *stepError
	if errors.As(err, &stepErr) {
		return stepErr.reason
	}
	return fmt.Sprintf("%s: %v", state, err)
}

// ChatURL addresses a conversation with phone and prefills text. Spaces in the
// text are encoded as %20.
func ChatURL(baseURL string, phone domain.PhoneNumber, text string) string {
	encodedText := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return fmt.Sprintf("%s/send?phone=%s&text=%s",
		strings.TrimRight(baseURL, "/"),
		url.QueryEscape(string(phone)),
		encodedText,
	)
}
