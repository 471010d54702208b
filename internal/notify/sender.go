package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Sender delivers one email.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// ResendSender delivers through the Resend transactional email API.
// With no API key it logs the send and succeeds, so development and CI
// run the full notification path without outbound mail.
type ResendSender struct {
	Client  *http.Client
	BaseURL string
	APIKey  string
	From    string
}

func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		Client:  &http.Client{Timeout: 15 * time.Second},
		BaseURL: "https://api.resend.com/emails",
		APIKey:  apiKey,
		From:    from,
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (s *ResendSender) Send(ctx context.Context, to, subject, html string) error {
	if s.APIKey == "" {
		log.Printf("[Notify] RESEND_API_KEY not set; would send %q to %s", subject, to)
		return nil
	}

	body, err := json.Marshal(resendRequest{
		From:    s.From,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("marshaling email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.BaseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email API returned %d: %s", resp.StatusCode, msg)
	}

	log.Printf("[Notify] Sent %q to %s", subject, to)
	return nil
}
