// Package agent wraps the external language-agent service used for message
// classification and assistant replies.
//
// The service is the only collaborator with meaningful latency, so every call
// goes through a rate limiter and a circuit breaker, and callers bound each
// call with a context timeout. Callers are expected to degrade on error:
// analysis substitutes fallback labels, the assistant path skips its reply.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"golang.org/x/time/rate"

	"github.com/texasdave2/chatroom/internal/domain"
	"github.com/texasdave2/chatroom/internal/metrics"
)

const (
	requestTimeout = 15 * time.Second

	// Call budget towards the external service, shared by classify and
	// respond.
	callsPerSecond = 10
	callBurst      = 20
)

// Client talks to the agent service over HTTP JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cb         circuitbreaker.CircuitBreaker[any]
	limiter    *rate.Limiter
}

// NewClient creates a client for the agent service at baseURL.
func NewClient(baseURL string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("agent base URL is required")
	}

	cb := circuitbreaker.Builder[any]().
		WithFailureRateThreshold(60, 5, 10*time.Second).
		WithDelay(30 * time.Second).
		WithSuccessThreshold(1).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			slog.Warn("Circuit breaker state changed",
				"component", "agent",
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
			metrics.AgentCircuitBreakerState.Set(stateToFloat(e.NewState))
		}).
		Build()

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
		cb:         cb,
		limiter:    rate.NewLimiter(rate.Limit(callsPerSecond), callBurst),
	}, nil
}

func stateToFloat(state circuitbreaker.State) float64 {
	switch state {
	case circuitbreaker.ClosedState:
		return 0
	case circuitbreaker.HalfOpenState:
		return 1
	case circuitbreaker.OpenState:
		return 2
	default:
		return -1
	}
}

type classifyRequest struct {
	Text      string `json:"text"`
	Dimension string `json:"dimension"`
}

type classifyResponse struct {
	Label string `json:"label"`
}

// Classify asks the agent to label text along one dimension. The answer is
// normalized and validated against the dimension's fixed label set.
func (c *Client) Classify(ctx context.Context, text string, dim domain.Dimension) (string, error) {
	var resp classifyResponse
	err := c.post(ctx, "/classify", classifyRequest{Text: text, Dimension: string(dim)}, &resp)
	if err != nil {
		return "", err
	}

	label := strings.ToLower(strings.TrimSpace(resp.Label))
	if !domain.ValidLabel(dim, label) {
		return "", fmt.Errorf("agent returned label %q outside the %s label set", resp.Label, dim)
	}
	return label, nil
}

type respondRequest struct {
	Prompt string `json:"prompt"`
}

type respondResponse struct {
	Reply string `json:"reply"`
}

// Respond asks the agent for an assistant reply to a prompt.
func (c *Client) Respond(ctx context.Context, prompt string) (string, error) {
	var resp respondResponse
	if err := c.post(ctx, "/respond", respondRequest{Prompt: prompt}, &resp); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Reply) == "" {
		return "", fmt.Errorf("agent returned an empty reply")
	}
	return resp.Reply, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait aborted: %w", err)
	}
	if !c.cb.TryAcquirePermit() {
		return fmt.Errorf("agent call rejected: %w", circuitbreaker.ErrOpen)
	}

	err := c.doPost(ctx, path, payload, out)
	if err != nil {
		c.cb.RecordError(err)
		return err
	}
	c.cb.RecordSuccess()
	return nil
}

func (c *Client) doPost(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal agent request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build agent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("agent request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("agent returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read agent response: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode agent response: %w", err)
	}
	return nil
}
