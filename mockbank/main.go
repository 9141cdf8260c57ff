package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/bojanz/httpx"
	"github.com/gorilla/handlers"
	"github.com/shopspring/decimal"

	app "bank-transfer-go/app"
)

var HTTPPort = os.Getenv("PORT")

// Runs a standalone mock banking API with a couple of seeded accounts, for
// exercising the transfer client locally.
func main() {
	port := HTTPPort
	if port == "" {
		port = "8123"
	}

	bank := app.NewBank(map[string]decimal.Decimal{
		"ACC1000": decimal.NewFromFloat(1000.0),
		"ACC1001": decimal.NewFromFloat(250.0),
	})
	if os.Getenv("REQUIRE_AUTH") == "true" {
		bank.AuthRequired = true
	}

	r := app.NewBankRouter(bank)

	var cors = handlers.CORS(
		handlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type", "Authorization"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "HEAD", "OPTIONS"}),
		handlers.AllowedOrigins([]string{"*"}),
	)

	http.Handle("/", cors(r))
	server := httpx.NewServer(":"+port, http.DefaultServeMux)
	server.WriteTimeout = time.Second * 240

	log.Printf("mock bank listening on :%s (auth required: %t)", port, bank.AuthRequired)
	if err := server.Start(); err != nil {
		log.Fatal(err)
	}
}
