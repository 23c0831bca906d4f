package domain

import "strings"

type AgentID string

type PhoneNumber string

// Recipient is an agent together with the phone number resolved for one delivery attempt.
type Recipient struct {
	Agent AgentID
	Phone PhoneNumber
}

func NormalizeAgentID(raw string) AgentID {
	return AgentID(strings.TrimSpace(raw))
}

func (id AgentID) String() string {
	return string(id)
}

func (p PhoneNumber) String() string {
	return string(p)
}
