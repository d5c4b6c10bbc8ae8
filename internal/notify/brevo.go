package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// BrevoNotifier sends transactional email through the Brevo v3 SMTP API.
type BrevoNotifier struct {
	apiURL     string
	apiKey     string
	senderName string
	sender     string
	client     *resty.Client
}

func NewBrevoNotifier(apiURL, apiKey, senderName, sender string) *BrevoNotifier {
	return &BrevoNotifier{
		apiURL:     apiURL,
		apiKey:     apiKey,
		senderName: senderName,
		sender:     sender,
		client:     resty.New(),
	}
}

type brevoAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoEmail struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

// Validate checks the configuration.
func (n *BrevoNotifier) Validate() error {
	if n.apiURL == "" {
		return errors.New("email API URL is required")
	}
	if n.apiKey == "" {
		return errors.New("email API key is required")
	}
	if n.sender == "" {
		return errors.New("email sender is required")
	}
	return nil
}

func (n *BrevoNotifier) Send(ctx context.Context, msg Message) error {
	if err := n.Validate(); err != nil {
		return err
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("api-key", n.apiKey).
		SetBody(brevoEmail{
			Sender:      brevoAddress{Name: n.senderName, Email: n.sender},
			To:          []brevoAddress{{Email: msg.To}},
			Subject:     msg.Subject,
			HTMLContent: msg.HTML,
		}).
		Post(n.apiURL)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("email API returned status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
