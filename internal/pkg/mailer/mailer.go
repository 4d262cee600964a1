package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/mail"
	"strings"
	"text/template"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

var bodyTemplate = template.Must(template.New("upcoming").Parse(`Hi {{.Name}},

{{.Params.Message}}

{{.Params.EventTitle}}
{{.Params.EventDate}} at {{.Params.EventTime}}
{{- if .Params.Link}}

{{.Params.Link}}
{{- end}}
`))

// Mailer delivers messages as email through the Gmail API.
type Mailer struct {
	sender  string
	service *gmail.Service
	logger  *zap.SugaredLogger
}

func New(ctx context.Context, sender string, ts oauth2.TokenSource, logger *zap.SugaredLogger) (*Mailer, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Gmail API: %w", err)
	}

	return &Mailer{sender: sender, service: service, logger: logger}, nil
}

func (m *Mailer) Send(ctx context.Context, msg *model.Message) error {
	if msg.Email == "" {
		return fmt.Errorf("user %d has no email address", msg.UserID)
	}

	raw, err := compose(m.sender, msg)
	if err != nil {
		return err
	}

	sent, err := m.service.Users.Messages.
		Send("me", &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	m.logger.Debugw("mail sent", "user_id", msg.UserID, "gmail_id", sent.Id)
	return nil
}

// compose renders an RFC 5322 message.
func compose(sender string, msg *model.Message) ([]byte, error) {
	name := msg.DisplayName
	if name == "" {
		name = "there"
	}

	var body bytes.Buffer
	if err := bodyTemplate.Execute(&body, struct {
		Name   string
		Params model.MessageParams
	}{Name: name, Params: msg.Params}); err != nil {
		return nil, fmt.Errorf("render body: %w", err)
	}

	to := mail.Address{Name: msg.DisplayName, Address: msg.Email}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", sender)
	fmt.Fprintf(&b, "To: %s\r\n", to.String())
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(strings.ReplaceAll(body.String(), "\n", "\r\n"))

	return []byte(b.String()), nil
}
