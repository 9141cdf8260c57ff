package app

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const DefaultEndpoint = "http://localhost:8123/"
const DefaultTimeout = 5.0

// Status values carried by TransferResult.
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
	StatusDryRun  = "DRY_RUN"
)

// TransferRequest describes one attempted transfer. It is immutable for the
// duration of the attempt.
type TransferRequest struct {
	FromAccount string
	ToAccount   string
	Amount      decimal.Decimal
}

// TransferConfig is the resolved configuration the orchestrator consumes.
// It is read-only; the raw sources (ini file, .env, environment) are the
// config loader's business.
type TransferConfig struct {
	Endpoint  string
	DryRun    bool
	Timeout   float64 // seconds
	AuthToken string
}

// TransferPayload is the JSON body POSTed to the transfer endpoint.
type TransferPayload struct {
	FromAccount string  `json:"fromAccount"`
	ToAccount   string  `json:"toAccount"`
	Amount      float64 `json:"amount"`
}

// Receipt holds the well-known fields the banking API echoes back for a
// completed transfer. The full response is kept alongside in
// TransferResult.Fields.
type Receipt struct {
	TransactionID string `mapstructure:"transactionId" json:"transactionId,omitempty"`
	Status        string `mapstructure:"status" json:"status,omitempty"`
}

// TransferResult is the sole outcome of one orchestration call. Status tags
// the variant; the remaining fields are populated per variant. Callers
// branch on Status and Message only.
type TransferResult struct {
	Status           string           `json:"status"`
	Message          string           `json:"message,omitempty"`
	AvailableBalance *decimal.Decimal `json:"availableBalance,omitempty"`
	RequestedAmount  *decimal.Decimal `json:"requestedAmount,omitempty"`
	Payload          *TransferPayload `json:"payload,omitempty"`
	Receipt          *Receipt         `json:"receipt,omitempty"`
	Fields           map[string]any   `json:"-"`
}

func (r TransferResult) IsSuccess() bool { return r.Status == StatusSuccess }
func (r TransferResult) IsDryRun() bool  { return r.Status == StatusDryRun }

// SuccessResult wraps a completed transfer receipt.
func SuccessResult(receipt *Receipt, fields map[string]any) TransferResult {
	return TransferResult{Status: StatusSuccess, Receipt: receipt, Fields: fields}
}

// InsufficientFundsResult reports that the source balance cannot cover the
// requested amount. The transfer POST is never issued in this case.
func InsufficientFundsResult(available, requested decimal.Decimal) TransferResult {
	return TransferResult{
		Status:           StatusFailed,
		Message:          "Insufficient funds",
		AvailableBalance: &available,
		RequestedAmount:  &requested,
	}
}

// InvalidAccountResult identifies which account failed validation and why.
// An unreachable validation endpoint is treated the same as "could not
// validate".
func InvalidAccountResult(role, accountID string, err error) TransferResult {
	return TransferResult{
		Status:  StatusFailed,
		Message: fmt.Sprintf("%s account %s is invalid: %v", role, accountID, err),
	}
}

// DryRunResult carries the payload that would have been POSTed.
func DryRunResult(payload TransferPayload) TransferResult {
	return TransferResult{Status: StatusDryRun, Payload: &payload}
}

// NetworkErrorResult wraps a transport-level failure.
func NetworkErrorResult(err error) TransferResult {
	return TransferResult{Status: StatusFailed, Message: err.Error()}
}

// LocalErrorResult rejects bad caller input before any network call is made.
func LocalErrorResult(message string) TransferResult {
	return TransferResult{Status: StatusFailed, Message: message}
}
