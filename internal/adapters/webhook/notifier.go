// Package webhook delivers completion events to an external automation
// endpoint. Delivery is fire-and-forget: errors are returned for logging only.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/notifier"
)

const defaultTimeout = 10 * time.Second

// Notifier implements notifier.Notifier by POSTing a JSON event.
type Notifier struct {
	url    string
	client *http.Client
}

func NewNotifier(url string) *Notifier {
	return NewNotifierWithHTTP(url, nil)
}

func NewNotifierWithHTTP(url string, httpClient *http.Client) *Notifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Notifier{url: url, client: httpClient}
}

type completedPayload struct {
	Event     string  `json:"event"`
	Subject   string  `json:"id"`
	Email     string  `json:"email"`
	FullName  string  `json:"full_name"`
	Slug      *string `json:"slug,omitempty"`
	Username  *string `json:"username,omitempty"`
	CreatedAt string  `json:"created_at"`
}

func (n *Notifier) ProfileCompleted(ctx context.Context, ev notifier.ProfileCompletedEvent) error {
	if n.url == "" {
		return fmt.Errorf("completion webhook URL not configured")
	}

	body, err := json.Marshal(completedPayload{
		Event:     "profile_completed",
		Subject:   string(ev.Subject),
		Email:     ev.Email,
		FullName:  ev.FullName,
		Slug:      ev.Slug,
		Username:  ev.Username,
		CreatedAt: ev.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver completion event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("deliver completion event: %s", resp.Status)
	}
	return nil
}
