// Package evolution integrates with the Evolution API for outbound
// WhatsApp messages.
package evolution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/msalazar/tanda-service/internal/config"
	"github.com/sirupsen/logrus"
)

// Client handles integration with the Evolution messaging API
type Client struct {
	baseURL    string
	instanceID string
	token      string
	client     *http.Client
	log        *logrus.Logger
}

// NewClient initializes a new Evolution client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		baseURL:    cfg.EvolutionBaseURL,
		instanceID: cfg.EvolutionInstanceID,
		token:      cfg.EvolutionToken,
		client: &http.Client{
			Timeout: cfg.SendTimeout,
		},
		log: log,
	}
}

// SendText sends a text message to a phone number in E.164 form.
func (c *Client) SendText(ctx context.Context, phone, message string) error {
	payload := map[string]string{
		"instanceId": c.instanceID,
		"phone":      phone,
		"message":    message,
	}
	if err := c.post(ctx, "/message/sendText", payload); err != nil {
		return err
	}
	c.log.Debugf("Text message sent to %s", phone)
	return nil
}

// SendMedia sends a media attachment with an optional caption.
func (c *Client) SendMedia(ctx context.Context, phone, mediaURL, caption string) error {
	payload := map[string]string{
		"instanceId": c.instanceID,
		"phone":      phone,
		"mediaUrl":   mediaURL,
		"caption":    caption,
	}
	if err := c.post(ctx, "/message/sendMedia", payload); err != nil {
		return err
	}
	c.log.Debugf("Media message sent to %s", phone)
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload map[string]string) error {
	if c.baseURL == "" || c.token == "" {
		return fmt.Errorf("evolution messaging is not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, raw)
	}

	c.log.Debugf("Evolution %s responded %d in %s", path, resp.StatusCode, time.Since(start))
	return nil
}
