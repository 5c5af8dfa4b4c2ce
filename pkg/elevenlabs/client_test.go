package elevenlabs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateAgent(t *testing.T) {
	var gotPath, gotMethod, gotKey string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotKey = r.Header.Get("xi-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	err := c.UpdateAgent(context.Background(), "agent-1", UpdateAgentRequest{
		FirstMessage: "Hi, I am calling to book a table.",
		SystemPrompt: "You book restaurant tables.",
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1/convai/agents/agent-1", gotPath)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "test-key", gotKey)

	cc := gotBody["conversation_config"].(map[string]any)
	agent := cc["agent"].(map[string]any)
	assert.Equal(t, "Hi, I am calling to book a table.", agent["first_message"])
	assert.Equal(t, "You book restaurant tables.", agent["prompt"])
}

func TestUpdateAgent_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"invalid agent"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	err := c.UpdateAgent(context.Background(), "agent-1", UpdateAgentRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestSubmitBatchCall(t *testing.T) {
	var gotBody BatchCallRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/convai/batch-calling/submit", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(BatchCallResponse{ID: "batch-7", Status: "pending"})
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := c.SubmitBatchCall(context.Background(), BatchCallRequest{
		CallName:           "order_42",
		AgentID:            "agent-1",
		AgentPhoneNumberID: "phone-1",
		Recipients:         []Recipient{{PhoneNumber: "+15550100"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "batch-7", resp.ID)
	assert.Equal(t, "order_42", gotBody.CallName)
	require.Len(t, gotBody.Recipients, 1)
	assert.Equal(t, "+15550100", gotBody.Recipients[0].PhoneNumber)
}

func TestSubmitBatchCall_TransportError(t *testing.T) {
	c := NewClient("test-key", WithBaseURL("http://127.0.0.1:0"))
	_, err := c.SubmitBatchCall(context.Background(), BatchCallRequest{})
	assert.Error(t, err)
}

func TestWithTimeout_AbortsSlowRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL), WithTimeout(20*time.Millisecond))
	err := c.UpdateAgent(context.Background(), "agent-1", UpdateAgentRequest{})
	require.Error(t, err)

	slow := NewClient("test-key", WithBaseURL(srv.URL), WithTimeout(2*time.Second))
	require.NoError(t, slow.UpdateAgent(context.Background(), "agent-1", UpdateAgentRequest{}))
}

func TestRateLimiterStillCompletesBothCalls(t *testing.T) {
	var calls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	// High enough rate that the test does not stall.
	c := NewClient("test-key", WithBaseURL(srv.URL), WithCallsPerMinute(6000))
	require.NoError(t, c.UpdateAgent(context.Background(), "agent-1", UpdateAgentRequest{}))
	_, err := c.SubmitBatchCall(context.Background(), BatchCallRequest{})
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}
