package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Config struct {
	BaseURL  string
	APIKey   string
	SenderID string
}

// GatewayProvider posts messages to an HTTP SMS gateway.
type GatewayProvider struct {
	cfg    Config
	client *http.Client
}

func NewGateway(cfg Config) *GatewayProvider {
	return &GatewayProvider{
		cfg: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (p *GatewayProvider) Send(ctx context.Context, to string, message string) error {
	payload, err := json.Marshal(map[string]string{
		"to":      to,
		"message": message,
		"sender":  p.cfg.SenderID,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}
