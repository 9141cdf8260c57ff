package app

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// BankRequestsTotal counts requests served by the mock bank, by path
// template and status code.
var BankRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mockbank_requests_total",
		Help: "Total requests served by the mock bank, by path template and status",
	},
	[]string{"path", "status"},
)

// Bank is the in-memory account store backing the mock banking API. It
// exists so the client has something real to run against in development and
// in end-to-end tests.
type Bank struct {
	// AuthRequired makes the transfer endpoint demand a bearer token
	// previously issued by /authToken. Set it before serving.
	AuthRequired bool

	mu       sync.Mutex
	accounts map[string]decimal.Decimal
	tokens   map[string]struct{}
}

func NewBank(accounts map[string]decimal.Decimal) *Bank {
	b := &Bank{
		accounts: make(map[string]decimal.Decimal, len(accounts)),
		tokens:   make(map[string]struct{}),
	}
	for id, balance := range accounts {
		b.accounts[id] = balance
	}
	return b
}

// Balance returns the current balance for an account.
func (b *Bank) Balance(accountID string) (decimal.Decimal, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	balance, ok := b.accounts[accountID]
	return balance, ok
}

// NewBankRouter wires the four banking endpoints plus /metrics.
func NewBankRouter(b *Bank) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/accounts/validate/{accountID}", http.HandlerFunc(b.ValidateAccountHandler)).Methods("GET")
	r.Handle("/accounts/balance/{accountID}", http.HandlerFunc(b.BalanceHandler)).Methods("GET")
	r.Handle("/transfer", http.HandlerFunc(b.TransferHandler)).Methods("POST")
	r.Handle("/authToken", http.HandlerFunc(b.AuthTokenHandler)).Methods("POST")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(NotFoundHandler)
	r.Use(metricsMiddleware)
	return r
}

func (b *Bank) ValidateAccountHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	accountID := vars["accountID"]

	if _, ok := b.Balance(accountID); !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Message: "Account not found: " + accountID})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": accountID, "status": "ACTIVE"})
}

func (b *Bank) BalanceHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	accountID := vars["accountID"]

	balance, ok := b.Balance(accountID)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Message: "Account not found: " + accountID})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": accountID, "balance": balance.InexactFloat64()})
}

func (b *Bank) TransferHandler(w http.ResponseWriter, r *http.Request) {
	if b.AuthRequired && !b.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Message: "Missing or invalid bearer token"})
		return
	}

	var payload TransferPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "Invalid transfer payload: " + err.Error()})
		return
	}
	amount := decimal.NewFromFloat(payload.Amount)
	if !amount.IsPositive() {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "Amount must be positive"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	from, ok := b.accounts[payload.FromAccount]
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Message: "Unknown source account: " + payload.FromAccount})
		return
	}
	to, ok := b.accounts[payload.ToAccount]
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Message: "Unknown destination account: " + payload.ToAccount})
		return
	}
	if from.LessThan(amount) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"status":           StatusFailed,
			"message":          "Insufficient funds",
			"availableBalance": from.InexactFloat64(),
			"requestedAmount":  payload.Amount,
		})
		return
	}

	b.accounts[payload.FromAccount] = from.Sub(amount)
	b.accounts[payload.ToAccount] = to.Add(amount)

	writeJSON(w, http.StatusOK, map[string]any{
		"transactionId": uuid.New().String(),
		"status":        StatusSuccess,
		"fromAccount":   payload.FromAccount,
		"toAccount":     payload.ToAccount,
		"amount":        payload.Amount,
	})
}

func (b *Bank) AuthTokenHandler(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "Invalid credentials payload: " + err.Error()})
		return
	}
	if creds.Username == "" || creds.Password == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "Username and password are required"})
		return
	}

	token := uuid.New().String()
	b.mu.Lock()
	b.tokens[token] = struct{}{}
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"token": token})
}

func (b *Bank) authorized(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, issued := b.tokens[token]
	return issued
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{Message: "Endpoint not found"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}
		BankRequestsTotal.WithLabelValues(path, strconv.Itoa(rec.status)).Inc()
	})
}
