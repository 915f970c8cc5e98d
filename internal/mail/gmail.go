package mail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

type GmailMailer struct {
	svc  *gmail.Service
	from string
}

// NewGmailMailer builds a sender from an OAuth client secret file and a stored
// user token. The token must already exist; there is no interactive flow.
func NewGmailMailer(ctx context.Context, credsPath, tokenPath, from string) (*GmailMailer, error) {
	b, err := os.ReadFile(credsPath)
	if err != nil {
		return nil, fmt.Errorf("read gmail credentials: %w", err)
	}
	cfg, err := google.ConfigFromJSON(b, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("parse gmail credentials: %w", err)
	}
	tok, err := tokenFromFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("read gmail token: %w", err)
	}
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return &GmailMailer{svc: svc, from: from}, nil
}

func (m *GmailMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := &gmail.Message{Raw: encodeMessage(m.from, to, subject, htmlBody)}
	if _, err := m.svc.Users.Messages.Send("me", msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gmail send to %s: %w", to, err)
	}
	return nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// encodeMessage renders an RFC 2822 HTML message, base64url encoded as the
// Gmail API expects in Message.Raw.
func encodeMessage(from, to, subject, htmlBody string) string {
	var b strings.Builder
	if from != "" {
		b.WriteString("From: " + from + "\r\n")
	}
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return base64.URLEncoding.EncodeToString([]byte(b.String()))
}
