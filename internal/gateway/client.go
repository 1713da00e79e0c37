package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

const (
	defaultTimeout  = 8 * time.Second
	maxResponseSize = 1 << 20
)

// APIError is a business rejection from an upstream endpoint (status < 500).
// Its message, when present, is surfaced to the user verbatim.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("upstream status %d", e.Status)
}

// UpstreamMessage returns the collaborator-supplied message, if any.
func (e *APIError) UpstreamMessage() string {
	return e.Message
}

type httpResult struct {
	status int
	body   []byte
}

// Client is the generic request/response abstraction over the upstream
// commerce API. Transport errors and 5xx responses feed a circuit breaker;
// business rejections (4xx) pass through as APIError without tripping it.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*httpResult]
}

func NewClient(baseURL string) *Client {
	settings := gobreaker.Settings{
		Name:    "commerce-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("[GATEWAY] [WARN] breaker %s: %s -> %s", name, from, to)
		},
	}

	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		breaker: gobreaker.NewCircuitBreaker[*httpResult](settings),
	}
}

// Do sends a JSON request and decodes a JSON response into out (when non-nil).
// A bearer credential is attached only when one is supplied.
func (c *Client) Do(ctx context.Context, method, path string, body any, bearer string, out any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	result, err := c.breaker.Execute(func() (*httpResult, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("upstream status %d", resp.StatusCode)
		}
		return &httpResult{status: resp.StatusCode, body: data}, nil
	})
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if result.status >= 400 {
		return &APIError{Status: result.status, Message: upstreamMessage(result.body)}
	}

	if out != nil && len(result.body) > 0 {
		if err := json.Unmarshal(result.body, out); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return nil
}

func upstreamMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if strings.TrimSpace(payload.Message) != "" {
		return strings.TrimSpace(payload.Message)
	}
	return strings.TrimSpace(payload.Error)
}
