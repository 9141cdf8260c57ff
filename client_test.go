package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBalance(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"object with numeric balance", `{"id":"ACC1000","balance":1000.0}`, "1000"},
		{"object with quoted balance", `{"balance":"12.50"}`, "12.5"},
		{"bare number", `250.75`, "250.75"},
		{"plain text number", `  42 `, "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBalance([]byte(tt.body))
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestParseBalance_Unparseable(t *testing.T) {
	for _, body := range []string{`{"id":"ACC1000"}`, `not a number`, `{"balance":null}`} {
		_, err := parseBalance([]byte(body))
		assert.Error(t, err, "body %q", body)
	}
}

func TestGetAuthToken(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"token field", `{"token":"tok-1"}`, "tok-1"},
		{"access_token fallback", `{"access_token":"tok-2"}`, "tok-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/authToken", r.URL.Path)
				assert.Equal(t, "enquiry", r.URL.Query().Get("claim"))
				w.Write([]byte(tt.response))
			}))
			defer server.Close()

			client := NewBankClient(testConfig(server.URL, true), nil)
			token, err := client.GetAuthToken(context.Background(), "alice", "pw", "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, token)
		})
	}
}

func TestGetAuthToken_MissingTokenField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"expires":3600}`))
	}))
	defer server.Close()

	client := NewBankClient(testConfig(server.URL, true), nil)
	_, err := client.GetAuthToken(context.Background(), "alice", "pw", "enquiry")
	assert.ErrorContains(t, err, "missing token field")
}

func TestGetAuthToken_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewBankClient(testConfig(server.URL, true), nil)
	_, err := client.GetAuthToken(context.Background(), "alice", "bad-pw", "enquiry")
	assert.ErrorContains(t, err, "status 401")
}

func TestTransfer_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`upstream down`))
	}))
	defer server.Close()

	client := NewBankClient(testConfig(server.URL, false), nil)
	_, _, err := client.Transfer(context.Background(), TransferPayload{FromAccount: "A", ToAccount: "B", Amount: 1})
	assert.ErrorContains(t, err, "status 502")
	assert.ErrorContains(t, err, "upstream down")
}

func TestTransfer_NonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("OK"))
	}))
	defer server.Close()

	client := NewBankClient(testConfig(server.URL, false), nil)
	receipt, fields, err := client.Transfer(context.Background(), TransferPayload{FromAccount: "A", ToAccount: "B", Amount: 1})
	require.NoError(t, err)
	assert.Equal(t, "OK", fields["text"])
	assert.Empty(t, receipt.TransactionID)
}

func TestValidateAccount_TimeoutIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	cfg := testConfig(server.URL, false)
	cfg.Timeout = 0.05
	client := NewBankClient(cfg, nil)
	err := client.ValidateAccount(context.Background(), "ACC1000")
	assert.Error(t, err)
}

func TestNewBankClient_Defaults(t *testing.T) {
	client := NewBankClient(TransferConfig{}, nil)
	assert.Equal(t, DefaultEndpoint, client.endpoint)
	assert.Equal(t, time.Duration(DefaultTimeout*float64(time.Second)), client.httpClient.Timeout)
}
