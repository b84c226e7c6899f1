// Package notify posts the batch run summary to a configured HTTP endpoint.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-retryablehttp"

	"batch-transcoder/pkg/models"
)

// Client delivers run summaries with transparent retries. Delivery failures
// are reported to the caller but must never affect the run's exit status.
type Client struct {
	url        string
	httpClient *http.Client
	log        hclog.Logger
}

// NewClient builds a client with a retrying transport.
func NewClient(url string, log hclog.Logger) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = nil // Silence default debug logger

	return &Client{
		url:        url,
		httpClient: retryClient.StandardClient(),
		log:        log,
	}
}

// PostSummary sends the summary as a JSON body.
func (c *Client) PostSummary(ctx context.Context, summary models.RunSummary) error {
	body, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post summary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("summary endpoint returned status %d", resp.StatusCode)
	}

	c.log.Info("run summary delivered", "url", c.url)
	return nil
}
