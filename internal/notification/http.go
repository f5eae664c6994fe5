package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shibinnakam/cochin-backoffice/pkg/httpclient"
)

// HTTPSender delivers email through a transactional email HTTP API.
type HTTPSender struct {
	client  *httpclient.Client
	baseURL string
	apiKey  string
	from    string
}

// NewHTTPSender creates an API-backed email sender.
func NewHTTPSender(client *httpclient.Client, baseURL, apiKey, from string) *HTTPSender {
	return &HTTPSender{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		from:    from,
	}
}

// Name returns the name of this sender.
func (s *HTTPSender) Name() string {
	return "email-api"
}

// Send posts the email to the provider's send endpoint.
func (s *HTTPSender) Send(ctx context.Context, email *Email) error {
	payload := map[string]any{
		"from":    s.from,
		"to":      email.To,
		"subject": email.Subject,
		"html":    email.HTML,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<14))
		return fmt.Errorf("email provider returned status %d: %s", resp.StatusCode, string(raw))
	}

	return nil
}
