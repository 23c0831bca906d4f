package domain

import (
	"fmt"
	"strings"
)

type LocatorStrategy string

const (
	LocateByCSS   LocatorStrategy = "css"
	LocateByXPath LocatorStrategy = "xpath"
	LocateByID    LocatorStrategy = "id"
)

// Locator names one element of the chat client UI.
type Locator struct {
	Strategy LocatorStrategy
	Value    string
}

func CSS(value string) Locator {
	return Locator{Strategy: LocateByCSS, Value: value}
}

func XPath(value string) Locator {
	return Locator{Strategy: LocateByXPath, Value: value}
}

func ByID(value string) Locator {
	return Locator{Strategy: LocateByID, Value: value}
}

func (l Locator) IsZero() bool {
	return strings.TrimSpace(l.Value) == ""
}

func (l Locator) String() string {
	return fmt.Sprintf("%s=%s", l.Strategy, l.Value)
}

func (l Locator) Validate() error {
	if l.IsZero() {
		return fmt.Errorf("locator value is required")
	}
	switch l.Strategy {
	case LocateByCSS, LocateByXPath, LocateByID:
		return nil
	default:
		return fmt.Errorf("unsupported locator strategy %q", l.Strategy)
	}
}

// LocatorProfile is the set of elements the delivery protocol touches. TextSent
// is optional; when empty the protocol falls back to a fixed settle pause.
type LocatorProfile struct {
	ReadyMarker  Locator
	MessageInput Locator
	TextSent     Locator
	AttachMenu   Locator
	FileInput    Locator
	SendButton   Locator
}

func DefaultLocatorProfile() LocatorProfile {
	return LocatorProfile{
		ReadyMarker:  ByID("side"),
		MessageInput: XPath(`//*[@id="main"]//footer//p`),
		AttachMenu:   CSS(`span[data-icon='plus'], span[data-icon='clip']`),
		FileInput:    CSS(`input[type='file']`),
		SendButton:   CSS(`span[data-icon='send'], span[data-icon='send-light']`),
	}
}

func (p LocatorProfile) Validate() error {
	required := []struct {
		name    string
		locator Locator
	}{
		{name: "ready_marker", locator: p.ReadyMarker},
		{name: "message_input", locator: p.MessageInput},
		{name: "file_input", locator: p.FileInput},
		{name: "send_button", locator: p.SendButton},
	}
	for _, item := range required {
		if err := item.locator.Validate(); err != nil {
			return fmt.Errorf("%s: %w", item.name, err)
		}
	}

	for _, item := range []struct {
		name    string
		locator Locator
	}{
		{name: "attach_menu", locator: p.AttachMenu},
		{name: "text_sent", locator: p.TextSent},
	} {
		if item.locator.IsZero() {
			continue
		}
		if err := item.locator.Validate(); err != nil {
			return fmt.Errorf("%s: %w", item.name, err)
		}
	}

	return nil
}
