package loyverse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RequiresToken(t *testing.T) {
	_, err := NewClient(&ClientConfig{})
	assert.Error(t, err)

	_, err = NewClient(nil)
	assert.Error(t, err)
}

func TestClient_FetchLatestReceipt(t *testing.T) {
	payload := `{"receipts":[{"receipt_number":"2-1042","total_money":550}]}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/receipts", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "-created_at", r.URL.Query().Get("order_by"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer server.Close()

	client, err := NewClient(&ClientConfig{
		AccessToken: "test-token",
		BaseURL:     server.URL,
	})
	require.NoError(t, err)

	body, err := client.FetchLatestReceipt(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(body))
}

func TestClient_FetchLatestReceipt_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors":[{"code":"UNAUTHORIZED"}]}`))
	}))
	defer server.Close()

	client, err := NewClient(&ClientConfig{
		AccessToken: "bad-token",
		BaseURL:     server.URL,
	})
	require.NoError(t, err)

	_, err = client.FetchLatestReceipt(context.Background())
	assert.ErrorContains(t, err, "status 401")
}

func TestClient_FetchLatestReceipt_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>proxy error</html>"))
	}))
	defer server.Close()

	client, err := NewClient(&ClientConfig{
		AccessToken: "test-token",
		BaseURL:     server.URL,
	})
	require.NoError(t, err)

	_, err = client.FetchLatestReceipt(context.Background())
	assert.ErrorContains(t, err, "invalid JSON")
}
