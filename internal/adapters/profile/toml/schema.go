package toml

import (
	"fmt"

	"github.com/bnema/balance-dispatcher/internal/domain"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version      int            `toml:"version"`
	ReadyMarker  *locatorSchema `toml:"ready_marker,omitempty"`
	MessageInput *locatorSchema `toml:"message_input,omitempty"`
	TextSent     *locatorSchema `toml:"text_sent,omitempty"`
	AttachMenu   *locatorSchema `toml:"attach_menu,omitempty"`
	FileInput    *locatorSchema `toml:"file_input,omitempty"`
	SendButton   *locatorSchema `toml:"send_button,omitempty"`
}

type locatorSchema struct {
	Strategy string `toml:"strategy"`
	Value    string `toml:"value"`
}

// applyDefaults fills every missing locator except text_sent from the built-in
// profile.
func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}

	defaults := domain.DefaultLocatorProfile()
	for _, slot := range []struct {
		target   **locatorSchema
		fallback domain.Locator
	}{
		{target: &s.ReadyMarker, fallback: defaults.ReadyMarker},
		{target: &s.MessageInput, fallback: defaults.MessageInput},
		{target: &s.AttachMenu, fallback: defaults.AttachMenu},
		{target: &s.FileInput, fallback: defaults.FileInput},
		{target: &s.SendButton, fallback: defaults.SendButton},
	} {
		if *slot.target == nil || (*slot.target).Value == "" {
			*slot.target = toLocatorSchema(slot.fallback)
		}
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported selectors schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

func toSchema(profile domain.LocatorProfile) fileSchema {
	return fileSchema{
		Version:      currentSchemaVersion,
		ReadyMarker:  toLocatorSchema(profile.ReadyMarker),
		MessageInput: toLocatorSchema(profile.MessageInput),
		TextSent:     toLocatorSchema(profile.TextSent),
		AttachMenu:   toLocatorSchema(profile.AttachMenu),
		FileInput:    toLocatorSchema(profile.FileInput),
		SendButton:   toLocatorSchema(profile.SendButton),
	}
}

func fromSchema(file fileSchema) domain.LocatorProfile {
	return domain.LocatorProfile{
		ReadyMarker:  fromLocatorSchema(file.ReadyMarker),
		MessageInput: fromLocatorSchema(file.MessageInput),
		TextSent:     fromLocatorSchema(file.TextSent),
		AttachMenu:   fromLocatorSchema(file.AttachMenu),
		FileInput:    fromLocatorSchema(file.FileInput),
		SendButton:   fromLocatorSchema(file.SendButton),
	}
}

func toLocatorSchema(locator domain.Locator) *locatorSchema {
	if locator.IsZero() {
		return nil
	}

	return &locatorSchema{Strategy: string(locator.Strategy), Value: locator.Value}
}

func fromLocatorSchema(locator *locatorSchema) domain.Locator {
	if locator == nil {
		return domain.Locator{}
	}

	strategy := domain.LocatorStrategy(locator.Strategy)
	if strategy == "" {
		strategy = domain.LocateByCSS
	}

	return domain.Locator{Strategy: strategy, Value: locator.Value}
}
