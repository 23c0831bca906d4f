package domain

type SessionState string

const (
	SessionUnopened      SessionState = "unopened"
	SessionAwaitingReady SessionState = "awaiting_ready"
	SessionReady         SessionState = "ready"
	SessionClosed        SessionState = "closed"
)

// DeliveryState is a step of the per-recipient delivery protocol.
type DeliveryState string

const (
	StateAddressingChat    DeliveryState = "addressing_chat"
	StateSubmittingText    DeliveryState = "submitting_text"
	StateAttachingArtifact DeliveryState = "attaching_artifact"
	StateConfirmingSend    DeliveryState = "confirming_send"
	StateDelivered         DeliveryState = "delivered"
	StateFailed            DeliveryState = "failed"
)

func (s DeliveryState) Terminal() bool {
	return s == StateDelivered || s == StateFailed
}
