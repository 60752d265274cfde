package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer creates a test HTTP server and registers cleanup.
func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// newTestClient creates a Client with the given configuration and registers cleanup.
func newTestClient(t *testing.T, cfg *Config) *Client {
	t.Helper()
	client := New(cfg)
	t.Cleanup(client.Close)
	return client
}

func TestNew(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		client := New(nil)
		assert.Equal(t, DefaultTimeout, client.defaultTimeout)
		assert.Equal(t, defaultUserAgent, client.userAgent)
	})

	t.Run("custom config", func(t *testing.T) {
		cfg := Config{DefaultTimeout: 5 * time.Second, UserAgent: "TestAgent/1.0"}
		client := New(&cfg)
		assert.Equal(t, 5*time.Second, client.defaultTimeout)
		assert.Equal(t, "TestAgent/1.0", client.userAgent)
	})

	t.Run("zero values use defaults", func(t *testing.T) {
		client := New(&Config{})
		assert.Equal(t, DefaultTimeout, client.defaultTimeout)
		assert.NotEmpty(t, client.userAgent)
	})
}

func TestGetSetsUserAgent(t *testing.T) {
	var receivedUA string
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		receivedUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("ok"))
	})

	client := newTestClient(t, &Config{UserAgent: "CustomAgent/2.0"})

	resp, err := client.Get(t.Context(), server.URL)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, "ok", string(body))
	assert.Equal(t, "CustomAgent/2.0", receivedUA)
}

func TestDefaultTimeoutApplies(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	client := newTestClient(t, &Config{DefaultTimeout: 50 * time.Millisecond})

	_, err := client.Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestContextDeadlineWins(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	client := newTestClient(t, &Config{DefaultTimeout: time.Minute})

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Get(ctx, server.URL)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestPostWithHeadersAndJSON(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodPost, "https://api.example.org/v1/messages",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
			assert.Equal(t, "secret", req.Header.Get("x-api-key"))
			body, _ := io.ReadAll(req.Body)
			assert.JSONEq(t, `{"model":"m","max_tokens":300}`, string(body))
			return httpmock.NewStringResponse(http.StatusOK, `{"id":"msg_1"}`), nil
		})

	client := newTestClient(t, &Config{Transport: transport})

	payload := struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
	}{"m", 300}
	resp, err := client.Post(t.Context(), "https://api.example.org/v1/messages", "", payload, map[string]string{"x-api-key": "secret"})
	require.NoError(t, err)

	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, DecodeJSON(resp, &out))
	assert.Equal(t, "msg_1", out.ID)
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestDecodeJSONStatusError(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, "https://erddap.example.org/data.json",
		httpmock.NewStringResponder(http.StatusNotFound, "Error {\n    code=404;\n}"))

	client := newTestClient(t, &Config{Transport: transport})

	resp, err := client.Get(t.Context(), "https://erddap.example.org/data.json")
	require.NoError(t, err)

	var out map[string]any
	err = DecodeJSON(resp, &out)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "code=404")
}

func TestHooks(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, "https://example.org/",
		httpmock.NewStringResponder(http.StatusOK, "{}"))

	client := newTestClient(t, &Config{Transport: transport})

	var before, after atomic.Int32
	var lastStatus atomic.Int32
	client.SetBeforeRequestHook(func(*http.Request) { before.Add(1) })
	client.SetAfterResponseHook(func(_ *http.Request, resp *http.Response, err error) {
		after.Add(1)
		if err == nil {
			lastStatus.Store(int32(resp.StatusCode))
		}
	})

	resp, err := client.Get(t.Context(), "https://example.org/")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, int32(1), before.Load())
	assert.Equal(t, int32(1), after.Load())
	assert.Equal(t, int32(http.StatusOK), lastStatus.Load())
}

func TestDoNilRequest(t *testing.T) {
	client := New(nil)
	_, err := client.Do(t.Context(), nil)
	require.Error(t, err)
}
