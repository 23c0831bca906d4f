package application

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/bnema/balance-dispatcher/internal/domain"
)

const DefaultMessageTemplate = "Segue posição de clientes com saldo negativo para o assessor {{.Agent}}.\n(Mensagem automática)\n"

type MessageTemplate struct {
	tmpl *template.Template
}

type messageData struct {
	Agent   string
	Phone   string
	Records int
}

func NewMessageTemplate(text string) (*MessageTemplate, error) {
	if strings.TrimSpace(text) == "" {
		text = DefaultMessageTemplate
	}

	tmpl, err := template.New("message").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse message template: %w", err)
	}

	return &MessageTemplate{tmpl: tmpl}, nil
}

func (m *MessageTemplate) Render(recipient domain.Recipient, group domain.AgentGroup) (string, error) {
	var out strings.Builder
	err := m.tmpl.Execute(&out, messageData{
		Agent:   string(recipient.Agent),
		Phone:   string(recipient.Phone),
		Records: len(group.Records),
	})
	if err != nil {
		return "", fmt.Errorf("render message: %w", err)
	}

	return out.String(), nil
}
