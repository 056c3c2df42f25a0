package mailapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/tourinfo/internal/domain"
)

// Client is the primary delivery channel: an HTTP JSON mail provider.
type Client struct {
	endpoint string
	apiKey   string
	from     string
	client   *http.Client
}

func NewClient(endpoint, apiKey, from string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		from:     from,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Name() string {
	return "mailapi"
}

type sendRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	From    string `json:"from"`
	ReplyTo string `json:"reply_to,omitempty"`
	Type    string `json:"type"`
}

type sendResponse struct {
	Success bool `json:"success"`
	Data    struct {
		ID string `json:"id"`
	} `json:"data"`
	Error string `json:"error"`
}

func (c *Client) Deliver(ctx context.Context, msg domain.DeliveryMessage) (string, error) {
	body, err := json.Marshal(sendRequest{
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		From:    c.from,
		ReplyTo: msg.ReplyTo,
		Type:    string(msg.Kind),
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", domain.MarkConnection(errors.Wrap(err, "send request"))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Newf("mail API error: %s", resp.Status)
	}

	var out sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.Wrap(err, "decode response")
	}
	if !out.Success {
		return "", errors.Newf("mail API rejected message: %s", out.Error)
	}
	return out.Data.ID, nil
}
