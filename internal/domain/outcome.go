package domain

import "time"

type OutcomeKind string

const (
	OutcomeSent             OutcomeKind = "sent"
	OutcomeSkippedNoContact OutcomeKind = "skipped_no_contact"
	OutcomeFailed           OutcomeKind = "failed"
	OutcomeDryRun           OutcomeKind = "dry_run"
)

func (k OutcomeKind) Label() string {
	switch k {
	case OutcomeSent:
		return "OK"
	case OutcomeSkippedNoContact:
		return "SKIP"
	case OutcomeFailed:
		return "FAIL"
	case OutcomeDryRun:
		return "DRY-RUN"
	default:
		return string(k)
	}
}

// Failure reasons produced by the delivery state machine.
const (
	ReasonSessionNotReady        = "session-not-ready"
	ReasonTimeoutOpeningChat     = "timeout-opening-chat"
	ReasonTimeoutTextConfirm     = "timeout-text-confirmation"
	ReasonTimeoutAttachmentInput = "timeout-attachment-input"
	ReasonTimeoutSendButton      = "timeout-send-button"
)

type Outcome struct {
	Kind   OutcomeKind `json:"kind"`
	Reason string      `json:"reason,omitempty"`
}

func Sent() Outcome {
	return Outcome{Kind: OutcomeSent}
}

func SkippedNoContact() Outcome {
	return Outcome{Kind: OutcomeSkippedNoContact}
}

func Failed(reason string) Outcome {
	return Outcome{Kind: OutcomeFailed, Reason: reason}
}

func WouldSend() Outcome {
	return Outcome{Kind: OutcomeDryRun}
}

type RecipientResult struct {
	Agent    AgentID     `json:"agent"`
	Phone    PhoneNumber `json:"phone,omitempty"`
	Artifact string      `json:"artifact,omitempty"`
	Records  int         `json:"records"`
	Outcome  Outcome     `json:"outcome"`
}

type RunReport struct {
	RunID      string            `json:"run_id"`
	DryRun     bool              `json:"dry_run"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Results    []RecipientResult `json:"results"`
}

type Tally struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
	DryRun  int `json:"dry_run"`
}

func (r RunReport) Tally() Tally {
	var t Tally
	for _, result := range r.Results {
		switch result.Outcome.Kind {
		case OutcomeSent:
			t.Sent++
		case OutcomeSkippedNoContact:
			t.Skipped++
		case OutcomeFailed:
			t.Failed++
		case OutcomeDryRun:
			t.DryRun++
		}
	}
	return t
}

func (r RunReport) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
