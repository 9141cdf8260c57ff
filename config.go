package app

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// LoadConfig resolves a TransferConfig from, in increasing precedence:
// built-in defaults, an ini file ([transfer] section), and environment
// variables. A .env file is loaded best-effort first; values already in the
// environment still win. A missing config file is not an error.
//
// Recognized settings:
//   - TRANSFER_ENDPOINT or [transfer].endpoint
//   - DRY_RUN or [transfer].dry_run
//   - TIMEOUT or [transfer].timeout (float seconds)
//   - TRANSFER_AUTH_TOKEN or [transfer].auth_token
func LoadConfig(path string) TransferConfig {
	_ = godotenv.Load()

	cfg := TransferConfig{
		Endpoint: DefaultEndpoint,
		DryRun:   true,
		Timeout:  DefaultTimeout,
	}

	if path == "" {
		path = "config.ini"
	}
	if file, err := ini.Load(path); err == nil {
		section := file.Section("transfer")
		cfg.Endpoint = section.Key("endpoint").MustString(cfg.Endpoint)
		if section.HasKey("dry_run") {
			cfg.DryRun = parseBool(section.Key("dry_run").String())
		}
		cfg.Timeout = section.Key("timeout").MustFloat64(cfg.Timeout)
		cfg.AuthToken = section.Key("auth_token").MustString(cfg.AuthToken)
	}

	if v := os.Getenv("TRANSFER_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("DRY_RUN"); v != "" {
		cfg.DryRun = parseBool(v)
	}
	if v := os.Getenv("TIMEOUT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Timeout = f
		}
	}
	if v := os.Getenv("TRANSFER_AUTH_TOKEN"); v != "" {
		cfg.AuthToken = v
	}

	return cfg
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
