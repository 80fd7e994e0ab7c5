// Package idp talks to the identity provider's admin API to keep its
// metadata copy of profile attributes in sync with the primary store.
package idp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/talentpoint-hq/candidate-profile-api/internal/domain"
)

const defaultTimeout = 10 * time.Second

// Client implements identity.Provider against an admin HTTP API
// (PUT {adminURL}/admin/users/{subject} with a user_metadata object).
type Client struct {
	adminURL   string
	serviceKey string
	client     *http.Client
}

func NewClient(adminURL, serviceKey string) *Client {
	return NewClientWithHTTP(adminURL, serviceKey, nil)
}

func NewClientWithHTTP(adminURL, serviceKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		adminURL:   strings.TrimRight(adminURL, "/"),
		serviceKey: serviceKey,
		client:     httpClient,
	}
}

func (c *Client) UpdateMetadata(ctx context.Context, subject domain.SubjectID, metadata map[string]any) error {
	if c.adminURL == "" {
		return fmt.Errorf("identity provider admin URL not configured")
	}

	body, err := json.Marshal(map[string]any{"user_metadata": metadata})
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	endpoint := c.adminURL + "/admin/users/" + url.PathEscape(string(subject))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("update identity metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("update identity metadata: %s: %s", resp.Status, snippet(resp.Body))
	}
	return nil
}

// snippet reads a short prefix of an error response body for diagnostics.
func snippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}
