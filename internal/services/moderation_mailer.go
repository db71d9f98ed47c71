package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ModerationMailer emails the trust & safety mailbox when an account is
// permanently banned, so every ban leaves an audit trail outside the
// database. Uses the SendGrid v3 mail send API.
type ModerationMailer struct {
	APIKey     string
	FromEmail  string
	ToEmail    string
	HTTPClient *http.Client
	Endpoint   string
}

func NewModerationMailer(apiKey string, fromEmail string, toEmail string) *ModerationMailer {
	return &ModerationMailer{
		APIKey:    strings.TrimSpace(apiKey),
		FromEmail: strings.TrimSpace(fromEmail),
		ToEmail:   strings.TrimSpace(toEmail),
		Endpoint:  "https://api.sendgrid.com/v3/mail/send",
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type sendGridEmailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridPersonalization struct {
	To         []sendGridEmailAddress `json:"to"`
	Subject    string                 `json:"subject"`
	CustomArgs map[string]string      `json:"custom_args,omitempty"`
}

type sendGridMailSendRequest struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridEmailAddress      `json:"from"`
	Content          []sendGridContent         `json:"content"`
}

// SendBanAlert emails the T&S mailbox that a user was permanently banned.
func (m *ModerationMailer) SendBanAlert(ctx context.Context, userID string, reportID string, strikeTotal int) error {
	if m == nil {
		return fmt.Errorf("moderation mailer not configured")
	}
	if m.APIKey == "" {
		return fmt.Errorf("missing SENDGRID_API_KEY")
	}
	if m.FromEmail == "" || m.ToEmail == "" {
		return fmt.Errorf("missing moderation mailer addresses")
	}

	subject := fmt.Sprintf("Permanent ban applied: user %s", userID)
	plain := fmt.Sprintf(
		"User %s was permanently banned.\nTriggering report: %s\nStrike total after enforcement: %d\n",
		userID,
		reportID,
		strikeTotal,
	)

	reqBody := sendGridMailSendRequest{
		Personalizations: []sendGridPersonalization{
			{
				To:      []sendGridEmailAddress{{Email: m.ToEmail}},
				Subject: subject,
				CustomArgs: map[string]string{
					"report_id": reportID,
				},
			},
		},
		From: sendGridEmailAddress{
			Email: m.FromEmail,
			Name:  "Trove Trust & Safety",
		},
		Content: []sendGridContent{
			{Type: "text/plain", Value: plain},
		},
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.APIKey)
	req.Header.Set("Content-Type", "application/json")

	client := m.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// SendGrid returns 202 Accepted on success.
	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("sendgrid mail send http %d", resp.StatusCode)
	}
	return nil
}
