package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mr-tron/base58"
)

const defaultConnectionString = "Host=localhost;Port=5432;Database=business_credits_db;Username=postgres;Password=postgres;Timeout=30;CommandTimeout=30"
const defaultHTTPAddr = ":8080"
const defaultChannelID = "CredeemApp"
const defaultChannelKey = "CredeemKey001"
const defaultRootAccount = "credeem.testnet"
const defaultLedgerRPCURL = "http://localhost:3030"
const defaultTokenWasmPath = "contracts/fungible_token.wasm"
const defaultTokenTotalSupply = "100000"
const defaultTokenDecimals = 8
const defaultTokenSpec = "ft-1.0.0"
const defaultBusinessInitialBalance = "3000000000000000000000000"
const defaultGasReserveAmount = "200000000000000000000000"
const defaultStorageDepositAmount = "1250000000000000000000"
const defaultCallGas = "300000000000000"
const defaultDatabaseMaxOpenConns = 20
const defaultDatabaseMaxIdleConns = 10
const defaultLedgerCallTimeout = 15 * time.Second
const defaultRequestTimeout = 60 * time.Second
const defaultRateLimitRPS = 20.0
const defaultRateLimitBurst = 40
const defaultReconcileMaxAttempts = 3
const defaultReconcileConcurrency = 4

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	LedgerDriverRPC     = "rpc"
	LedgerDriverSandbox = "sandbox"

	PayoutSourceBusiness = "business"
	PayoutSourcePlatform = "platform"
)

type Features struct {
	Rewards bool
	Swaps   bool
}

type DatabasePool struct {
	MaxOpenConns int
	MaxIdleConns int
}

type Config struct {
	HTTPAddr       string
	LogLevel       string
	DatabaseDSN    string
	DatabasePool   DatabasePool
	StorageDriver  string
	ChannelID      string
	ChannelKey     string
	ChannelKeyHash string

	RootAccount     string
	SignerPublicKey string
	LedgerDriver    string
	LedgerRPCURL    string

	LedgerCallTimeout time.Duration
	RequestTimeout    time.Duration

	TokenWasmPath          string
	TokenTotalSupply       string
	TokenDecimals          int
	TokenSpec              string
	BusinessInitialBalance string
	GasReserveAmount       string
	StorageDepositAmount   string
	CallGas                string
	SwapPayoutSource       string

	Features Features

	RateLimitRPS   float64
	RateLimitBurst int

	ReconcileSchedule    string
	ReconcileMaxAttempts int
	ReconcileConcurrency int
}

// Load reads configuration from the environment, after applying a .env file when one exists.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var errs []string
	cfg := Config{
		HTTPAddr:       stringEnv("HTTP_ADDR", defaultHTTPAddr),
		LogLevel:       stringEnv("LOG_LEVEL", "info"),
		DatabaseDSN:    normalizeConnectionString(stringEnv("DATABASE_DSN", defaultConnectionString)),
		StorageDriver:  strings.ToLower(stringEnv("STORAGE_DRIVER", StorageDriverPostgres)),
		ChannelID:      stringEnv("CHANNEL_ID", defaultChannelID),
		ChannelKey:     stringEnv("CHANNEL_KEY", defaultChannelKey),
		ChannelKeyHash: stringEnv("CHANNEL_KEY_HASH", ""),

		RootAccount:     stringEnv("ROOT_ACCOUNT", defaultRootAccount),
		SignerPublicKey: stringEnv("SIGNER_PUBLIC_KEY", ""),
		LedgerDriver:    strings.ToLower(stringEnv("LEDGER_DRIVER", LedgerDriverSandbox)),
		LedgerRPCURL:    stringEnv("LEDGER_RPC_URL", defaultLedgerRPCURL),

		TokenWasmPath:          stringEnv("TOKEN_WASM_PATH", defaultTokenWasmPath),
		TokenTotalSupply:       stringEnv("TOKEN_TOTAL_SUPPLY", defaultTokenTotalSupply),
		TokenSpec:              stringEnv("TOKEN_SPEC", defaultTokenSpec),
		BusinessInitialBalance: stringEnv("BUSINESS_INITIAL_BALANCE", defaultBusinessInitialBalance),
		GasReserveAmount:       stringEnv("GAS_RESERVE_AMOUNT", defaultGasReserveAmount),
		StorageDepositAmount:   stringEnv("STORAGE_DEPOSIT_AMOUNT", defaultStorageDepositAmount),
		CallGas:                stringEnv("CALL_GAS", defaultCallGas),
		SwapPayoutSource:       strings.ToLower(stringEnv("SWAP_PAYOUT_SOURCE", PayoutSourcePlatform)),

		ReconcileSchedule: stringEnv("RECONCILE_SCHEDULE", ""),
	}

	cfg.LedgerCallTimeout = durationEnv("LEDGER_CALL_TIMEOUT", defaultLedgerCallTimeout, &errs)
	cfg.RequestTimeout = durationEnv("REQUEST_TIMEOUT", defaultRequestTimeout, &errs)
	cfg.DatabasePool = DatabasePool{
		MaxOpenConns: intEnv("DATABASE_MAX_OPEN_CONNS", defaultDatabaseMaxOpenConns, &errs),
		MaxIdleConns: intEnv("DATABASE_MAX_IDLE_CONNS", defaultDatabaseMaxIdleConns, &errs),
	}
	cfg.TokenDecimals = intEnv("TOKEN_DECIMALS", defaultTokenDecimals, &errs)
	cfg.Features = Features{
		Rewards: boolEnv("FEATURE_REWARDS", true, &errs),
		Swaps:   boolEnv("FEATURE_SWAPS", true, &errs),
	}
	cfg.RateLimitRPS = floatEnv("RATE_LIMIT_RPS", defaultRateLimitRPS, &errs)
	cfg.RateLimitBurst = intEnv("RATE_LIMIT_BURST", defaultRateLimitBurst, &errs)
	cfg.ReconcileMaxAttempts = intEnv("RECONCILE_MAX_ATTEMPTS", defaultReconcileMaxAttempts, &errs)
	cfg.ReconcileConcurrency = intEnv("RECONCILE_CONCURRENCY", defaultReconcileConcurrency, &errs)

	errs = append(errs, cfg.validate()...)
	if len(errs) > 0 {
		return Config{}, errors.New(strings.Join(errs, "; "))
	}

	return cfg, nil
}

func (c Config) validate() []string {
	var errs []string

	switch c.StorageDriver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		errs = append(errs, "STORAGE_DRIVER must be postgres or memory")
	}

	if c.DatabasePool.MaxOpenConns < 1 {
		errs = append(errs, "DATABASE_MAX_OPEN_CONNS must be at least 1")
	}
	if c.DatabasePool.MaxIdleConns < 0 || c.DatabasePool.MaxIdleConns > c.DatabasePool.MaxOpenConns {
		errs = append(errs, "DATABASE_MAX_IDLE_CONNS must be between 0 and DATABASE_MAX_OPEN_CONNS")
	}

	switch c.LedgerDriver {
	case LedgerDriverRPC:
		if c.LedgerRPCURL == "" {
			errs = append(errs, "LEDGER_RPC_URL is required for the rpc ledger driver")
		}
		if c.SignerPublicKey == "" {
			errs = append(errs, "SIGNER_PUBLIC_KEY is required for the rpc ledger driver")
		}
	case LedgerDriverSandbox:
	default:
		errs = append(errs, "LEDGER_DRIVER must be rpc or sandbox")
	}

	if c.SignerPublicKey != "" {
		if err := ValidatePublicKey(c.SignerPublicKey); err != nil {
			errs = append(errs, "SIGNER_PUBLIC_KEY "+err.Error())
		}
	}

	switch c.SwapPayoutSource {
	case PayoutSourceBusiness, PayoutSourcePlatform:
	default:
		errs = append(errs, "SWAP_PAYOUT_SOURCE must be business or platform")
	}

	if strings.TrimSpace(c.RootAccount) == "" {
		errs = append(errs, "ROOT_ACCOUNT is required")
	}
	if c.LedgerCallTimeout <= 0 {
		errs = append(errs, "LEDGER_CALL_TIMEOUT must be greater than zero")
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, "REQUEST_TIMEOUT must be greater than zero")
	}
	if c.TokenDecimals < 0 {
		errs = append(errs, "TOKEN_DECIMALS must not be negative")
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		errs = append(errs, "RATE_LIMIT_RPS and RATE_LIMIT_BURST must not be negative")
	}
	if c.ReconcileConcurrency <= 0 {
		errs = append(errs, "RECONCILE_CONCURRENCY must be greater than zero")
	}

	return errs
}

// ValidatePublicKey accepts keys of the form "ed25519:<base58 32 bytes>".
func ValidatePublicKey(key string) error {
	curve, encoded, ok := strings.Cut(key, ":")
	if !ok || curve != "ed25519" {
		return errors.New("must be of the form ed25519:<base58>")
	}

	raw, err := base58.Decode(encoded)
	if err != nil {
		return fmt.Errorf("is not valid base58: %w", err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("must decode to 32 bytes, got %d", len(raw))
	}

	return nil
}

func stringEnv(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func durationEnv(key string, fallback time.Duration, errs *[]string) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, key+" must be a duration")
		return fallback
	}
	return value
}

func intEnv(key string, fallback int, errs *[]string) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, key+" must be an integer")
		return fallback
	}
	return value
}

func floatEnv(key string, fallback float64, errs *[]string) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*errs = append(*errs, key+" must be a number")
		return fallback
	}
	return value
}

func boolEnv(key string, fallback bool, errs *[]string) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		*errs = append(*errs, key+" must be true or false")
		return fallback
	}
	return value
}

func normalizeConnectionString(raw string) string {
	if strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://") {
		return raw
	}

	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
