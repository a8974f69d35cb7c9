// Package copomex looks up Mexican postal codes through the copomex
// API.
package copomex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/msalazar/tanda-service/internal/config"
	"github.com/sirupsen/logrus"
)

// Address is the result of a postal code lookup.
type Address struct {
	State        string   `json:"state"`
	Municipality string   `json:"municipality"`
	Colonies     []string `json:"colonies"`
}

// Client handles integration with copomex
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	log     *logrus.Logger
}

// NewClient initializes a new copomex client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		baseURL: cfg.CopomexBaseURL,
		token:   cfg.CopomexToken,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// LookupByPostalCode resolves a postal code to its state, municipality
// and the deduplicated list of colonies.
func (c *Client) LookupByPostalCode(ctx context.Context, postalCode string) (*Address, error) {
	endpoint := fmt.Sprintf("%s/info_cp/%s?token=%s", c.baseURL, url.PathEscape(postalCode), url.QueryEscape(c.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var payload struct {
		Response struct {
			Estado       string   `json:"estado"`
			Municipio    string   `json:"municipio"`
			Asentamiento []string `json:"asentamiento"`
		} `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	seen := map[string]bool{}
	var colonies []string
	for _, colony := range payload.Response.Asentamiento {
		if seen[colony] {
			continue
		}
		seen[colony] = true
		colonies = append(colonies, colony)
	}

	c.log.Debugf("Postal code %s resolved to %s, %s", postalCode, payload.Response.Municipio, payload.Response.Estado)
	return &Address{
		State:        payload.Response.Estado,
		Municipality: payload.Response.Municipio,
		Colonies:     colonies,
	}, nil
}
