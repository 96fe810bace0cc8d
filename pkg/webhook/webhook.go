package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"github.com/txsociety/tonkit/pkg/core"
	"github.com/txsociety/tonkit/pkg/retry"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	deliveryHeader = "X-Delivery-Id"
	attempts       = 3
)

type Client struct {
	client *http.Client
	url    string
	delay  time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewClient(webhookURL string) (*Client, error) {
	_, err := url.ParseRequestURI(webhookURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid url: %s", core.ErrValidation, webhookURL)
	}
	return &Client{
		client: &http.Client{Timeout: 10 * time.Second},
		url:    webhookURL,
		delay:  time.Second,
	}, nil
}

// Send posts the record as JSON. Every attempt carries the same delivery id.
func (s *Client) Send(ctx context.Context, record core.TxRecord) error {
	jsonData, err := json.Marshal(record)
	if err != nil {
		return err
	}
	deliveryID, err := uuid.NewV7()
	if err != nil {
		return err
	}
	policy := retry.Policy{Attempts: attempts, Delay: s.delay, Linear: true, Sleep: s.sleep}
	_, err = retry.Do(ctx, policy, func(ctx context.Context) (struct{}, error) {
		err := s.doRequest(ctx, jsonData, deliveryID)
		if err != nil {
			slog.Info("webhook sending", "error", err.Error(), "delivery", deliveryID.String())
		}
		return struct{}{}, err
	})
	return err
}

func (s *Client) doRequest(ctx context.Context, body []byte, deliveryID uuid.UUID) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json; charset=UTF-8")
	request.Header.Set(deliveryHeader, deliveryID.String())
	response, err := s.client.Do(request)
	if err != nil {
		return fmt.Errorf("%w: webhook sending: %v", core.ErrTransport, err)
	}
	defer func() {
		err := response.Body.Close()
		if err != nil {
			slog.Error("response body close", "error", err.Error())
		}
	}()
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("%w: webhook response status: %v", core.ErrTransport, response.Status)
}
