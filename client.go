package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BankClient issues the individual calls against the remote banking API.
// It holds no mutable state and is safe for concurrent use.
type BankClient struct {
	httpClient *http.Client
	endpoint   string
	authToken  string
	logger     *zap.Logger
}

func NewBankClient(cfg TransferConfig, logger *zap.Logger) *BankClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := time.Duration(cfg.Timeout * float64(time.Second))
	if timeout <= 0 {
		timeout = time.Duration(DefaultTimeout * float64(time.Second))
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &BankClient{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		authToken:  cfg.AuthToken,
		logger:     logger,
	}
}

// ValidateAccount reports whether the account refers to an existing,
// eligible account. Any non-200 response or transport failure is a
// validation failure.
func (c *BankClient) ValidateAccount(ctx context.Context, accountID string) error {
	reqURL := fmt.Sprintf("%s/accounts/validate/%s", apiBase(c.endpoint), url.PathEscape(accountID))
	resp, err := c.do(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("validation call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("account validation rejected",
			zap.String("account", accountID),
			zap.Int("status", resp.StatusCode))
		return fmt.Errorf("validation returned status %d", resp.StatusCode)
	}
	return nil
}

// GetBalance retrieves the current balance for the account.
func (c *BankClient) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	reqURL := fmt.Sprintf("%s/accounts/balance/%s", apiBase(c.endpoint), url.PathEscape(accountID))
	resp, err := c.do(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("balance call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decimal.Zero, fmt.Errorf("balance call returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("reading balance response: %w", err)
	}
	return parseBalance(body)
}

// GetAuthToken obtains a bearer token from the auth endpoint. Callers may
// ignore a failure and run unauthenticated.
func (c *BankClient) GetAuthToken(ctx context.Context, username, password, claim string) (string, error) {
	if claim == "" {
		claim = "enquiry"
	}
	reqURL := fmt.Sprintf("%s/authToken?claim=%s", apiBase(c.endpoint), url.QueryEscape(claim))
	creds, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return "", err
	}

	resp, err := c.do(ctx, http.MethodPost, reqURL, creds)
	if err != nil {
		return "", fmt.Errorf("auth token call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("auth token call returned status %d", resp.StatusCode)
	}

	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("decoding auth token response: %w", err)
	}
	// The API issues either {"token": ...} or {"access_token": ...}.
	for _, key := range []string{"token", "access_token"} {
		if token, ok := data[key].(string); ok && token != "" {
			c.logger.Info("obtained auth token", zap.String("username", username))
			return token, nil
		}
	}
	return "", fmt.Errorf("auth token response missing token field")
}

// Transfer POSTs the payload to the resolved transfer URL and returns the
// receipt. The full response body is returned as a map alongside the typed
// receipt.
func (c *BankClient) Transfer(ctx context.Context, payload TransferPayload) (*Receipt, map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}

	resp, err := c.do(ctx, http.MethodPost, ResolveTransferURL(c.endpoint), body)
	if err != nil {
		return nil, nil, fmt.Errorf("transfer call failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading transfer response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, fmt.Errorf("transfer returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		// Non-JSON 2xx bodies are still a success; keep the text around.
		fields = map[string]any{"text": string(raw)}
	}

	var receipt Receipt
	if err := mapstructure.Decode(fields, &receipt); err != nil {
		return nil, nil, fmt.Errorf("decoding transfer receipt: %w", err)
	}
	return &receipt, fields, nil
}

func (c *BankClient) do(ctx context.Context, method, reqURL string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	return c.httpClient.Do(req)
}

// parseBalance accepts the formats the banking API has been seen to produce:
// an object with a numeric balance field, a bare JSON number, or a
// plain-text number.
func parseBalance(body []byte) (decimal.Decimal, error) {
	var obj struct {
		Balance *decimal.Decimal `json:"balance"`
	}
	if err := json.Unmarshal(body, &obj); err == nil && obj.Balance != nil {
		return *obj.Balance, nil
	}

	var num decimal.Decimal
	if err := json.Unmarshal(body, &num); err == nil {
		return num, nil
	}

	if d, err := decimal.NewFromString(strings.TrimSpace(string(body))); err == nil {
		return d, nil
	}
	return decimal.Zero, fmt.Errorf("unable to parse balance from response %q", string(body))
}
