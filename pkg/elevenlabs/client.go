// Package elevenlabs is a minimal client for the ElevenLabs Conversational
// AI API: agent reconfiguration and outbound batch calling.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.elevenlabs.io"

// Client performs voice-agent operations against the ElevenLabs API.
type Client interface {
	UpdateAgent(ctx context.Context, agentID string, req UpdateAgentRequest) error
	SubmitBatchCall(ctx context.Context, req BatchCallRequest) (*BatchCallResponse, error)
}

// UpdateAgentRequest rewrites the agent's conversation script.
type UpdateAgentRequest struct {
	FirstMessage string
	SystemPrompt string
}

// BatchCallRequest is the request body for POST /v1/convai/batch-calling/submit.
type BatchCallRequest struct {
	CallName           string      `json:"call_name"`
	AgentID            string      `json:"agent_id"`
	AgentPhoneNumberID string      `json:"agent_phone_number_id"`
	Recipients         []Recipient `json:"recipients"`
}

// Recipient is a single phone number in a batch call.
type Recipient struct {
	PhoneNumber string `json:"phone_number"`
}

// BatchCallResponse is the acknowledgement for a submitted batch.
type BatchCallResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// agentPatchBody mirrors the nested conversation_config shape of the agent
// PATCH endpoint.
type agentPatchBody struct {
	ConversationConfig struct {
		Agent struct {
			FirstMessage string `json:"first_message"`
			Prompt       string `json:"prompt"`
		} `json:"agent"`
	} `json:"conversation_config"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithTimeout overrides the default 30s request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithCallsPerMinute caps the outbound request rate. The agent is a shared
// resource; concurrent orchestrations must not hammer its config endpoint.
func WithCallsPerMinute(n float64) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(n/60.0), 1)
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an ElevenLabs API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) UpdateAgent(ctx context.Context, agentID string, req UpdateAgentRequest) error {
	var body agentPatchBody
	body.ConversationConfig.Agent.FirstMessage = req.FirstMessage
	body.ConversationConfig.Agent.Prompt = req.SystemPrompt

	_, err := c.do(ctx, http.MethodPatch, "/v1/convai/agents/"+agentID, body)
	return eris.Wrap(err, "elevenlabs: update agent")
}

func (c *httpClient) SubmitBatchCall(ctx context.Context, req BatchCallRequest) (*BatchCallResponse, error) {
	respBody, err := c.do(ctx, http.MethodPost, "/v1/convai/batch-calling/submit", req)
	if err != nil {
		return nil, eris.Wrap(err, "elevenlabs: submit batch call")
	}

	var result BatchCallResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "elevenlabs: unmarshal batch response")
	}
	return &result, nil
}

func (c *httpClient) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limit wait")
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, eris.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
