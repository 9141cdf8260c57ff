package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ResolveTransferURL returns the URL the transfer POST goes to. A base
// endpoint gets "/transfer" appended; an endpoint already pointing at
// /transfer is used as-is, so the path is never appended twice.
func ResolveTransferURL(endpoint string) string {
	base := strings.TrimRight(endpoint, "/")
	if strings.HasSuffix(base, "/transfer") {
		return base
	}
	return base + "/transfer"
}

// apiBase returns the root the account and auth endpoints hang off, whether
// the configured endpoint is the API base or the transfer URL itself.
func apiBase(endpoint string) string {
	base := strings.TrimRight(endpoint, "/")
	return strings.TrimSuffix(base, "/transfer")
}

// TransferMoney runs the pre-flight sequence against the banking API and,
// unless the configuration asks for a dry run, POSTs the transfer.
//
// The sequence is strictly ordered and fail-fast: validate source, validate
// destination, fetch the source balance, compare, then transfer. A failed
// step ends the attempt; no step is retried and no later call is made.
// Every failure mode is folded into a TransferResult variant; the function
// never returns an error or panics across its boundary.
func TransferMoney(ctx context.Context, request TransferRequest, cfg TransferConfig, logger *zap.Logger) TransferResult {
	if logger == nil {
		logger = zap.NewNop()
	}

	if request.FromAccount == "" {
		return LocalErrorResult("source account id is required")
	}
	if request.ToAccount == "" {
		return LocalErrorResult("destination account id is required")
	}
	if !request.Amount.IsPositive() {
		return LocalErrorResult(fmt.Sprintf("amount must be positive, got %s", request.Amount))
	}

	client := NewBankClient(cfg, logger)

	if err := client.ValidateAccount(ctx, request.FromAccount); err != nil {
		logger.Warn("source account failed validation",
			zap.String("account", request.FromAccount), zap.Error(err))
		return InvalidAccountResult("source", request.FromAccount, err)
	}
	if err := client.ValidateAccount(ctx, request.ToAccount); err != nil {
		logger.Warn("destination account failed validation",
			zap.String("account", request.ToAccount), zap.Error(err))
		return InvalidAccountResult("destination", request.ToAccount, err)
	}

	balance, err := client.GetBalance(ctx, request.FromAccount)
	if err != nil {
		logger.Error("could not retrieve source balance",
			zap.String("account", request.FromAccount), zap.Error(err))
		return NetworkErrorResult(err)
	}

	if balance.LessThan(request.Amount) {
		logger.Warn("insufficient funds",
			zap.String("available", balance.String()),
			zap.String("requested", request.Amount.String()))
		return InsufficientFundsResult(balance, request.Amount)
	}

	payload := TransferPayload{
		FromAccount: request.FromAccount,
		ToAccount:   request.ToAccount,
		Amount:      request.Amount.InexactFloat64(),
	}

	if cfg.DryRun {
		logger.Info("dry run enabled, withholding transfer POST",
			zap.String("from", payload.FromAccount),
			zap.String("to", payload.ToAccount),
			zap.Float64("amount", payload.Amount))
		return DryRunResult(payload)
	}

	receipt, fields, err := client.Transfer(ctx, payload)
	if err != nil {
		logger.Error("transfer failed", zap.Error(err))
		return NetworkErrorResult(err)
	}

	logger.Info("transfer complete",
		zap.String("transactionId", receipt.TransactionID),
		zap.String("from", payload.FromAccount),
		zap.String("to", payload.ToAccount),
		zap.Float64("amount", payload.Amount))
	return SuccessResult(receipt, fields)
}
