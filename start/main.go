package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	app "bank-transfer-go/app"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config.ini (defaults to ./config.ini)")
		from       = flag.String("from", "ACC1000", "source account id")
		to         = flag.String("to", "ACC1001", "destination account id")
		amountArg  = flag.String("amount", "100.0", "amount to transfer")
		dev        = flag.Bool("dev", false, "console logging instead of JSON")
	)
	flag.Parse()

	logger, err := app.NewLogger(*dev)
	if err != nil {
		fmt.Fprintln(os.Stderr, "unable to build logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := app.LoadConfig(*configPath)

	amount, err := decimal.NewFromString(*amountArg)
	if err != nil {
		logger.Fatal("invalid amount", zap.String("amount", *amountArg), zap.Error(err))
	}

	// Token acquisition is optional; a failed attempt just runs the
	// transfer unauthenticated.
	if cfg.AuthToken == "" {
		username := os.Getenv("TRANSFER_USERNAME")
		password := os.Getenv("TRANSFER_PASSWORD")
		if username != "" && password != "" {
			client := app.NewBankClient(cfg, logger)
			token, err := client.GetAuthToken(context.Background(), username, password, "enquiry")
			if err != nil {
				logger.Warn("could not obtain auth token, continuing without one", zap.Error(err))
			} else {
				cfg.AuthToken = token
			}
		}
	}

	logger.Info("starting transfer",
		zap.String("endpoint", cfg.Endpoint),
		zap.Bool("dryRun", cfg.DryRun),
		zap.Float64("timeout", cfg.Timeout))

	result := app.TransferMoney(context.Background(), app.TransferRequest{
		FromAccount: *from,
		ToAccount:   *to,
		Amount:      amount,
	}, cfg, logger)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Fatal("unable to render result", zap.Error(err))
	}
	fmt.Println(string(out))

	if result.Status == app.StatusFailed {
		os.Exit(1)
	}
}
