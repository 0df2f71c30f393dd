// Package config loads the role configuration from the process
// environment (optionally backed by a .env file via godotenv), mirroring
// chantools' cmd/chantools/root.go ambient-config style: a flat struct
// populated once at startup, validated eagerly so a bad deployment fails
// before any network or chain call.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/lightninglabs/thunderswap/swap"
)

// Role is the client's role in a swap.
type Role string

const (
	RoleUser Role = "USER"
	RoleLP   Role = "LP"
)

// Config is every environment-sourced setting the engine needs.
type Config struct {
	ClientRole Role

	BitcoinRPCURL  string
	BitcoinRPCUser string
	BitcoinRPCPass string

	WIF     string
	Network string

	MinConfs       uint32
	LocktimeBlocks uint32
	FeeRateSatPerVB float64

	LPPubkeyHex string

	RLNBaseURL string
	RLNAPIKey  string

	HodlExpirySec   uint32
	ClientCommPort  uint16
	UserCommURL     string
}

// defaults are applied when the corresponding environment variable is unset.
const (
	defaultHodlExpirySec  = 86400
	defaultClientCommPort = 9999
)

// Load reads the configuration from the environment, first merging in a
// .env file (if present) without overriding variables already set in the
// environment. envFile may be empty to skip .env loading.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil &&
			!os.IsNotExist(err) {

			return nil, swap.Wrap(swap.KindConfigError, err,
				"loading env file %s", envFile)
		}
	}

	cfg := &Config{
		ClientRole:      Role(os.Getenv("CLIENT_ROLE")),
		BitcoinRPCURL:   os.Getenv("BITCOIN_RPC_URL"),
		BitcoinRPCUser:  os.Getenv("BITCOIN_RPC_USER"),
		BitcoinRPCPass:  os.Getenv("BITCOIN_RPC_PASS"),
		WIF:             os.Getenv("WIF"),
		Network:         os.Getenv("NETWORK"),
		LPPubkeyHex:     os.Getenv("LP_PUBKEY_HEX"),
		RLNBaseURL:      os.Getenv("RLN_BASE_URL"),
		RLNAPIKey:       os.Getenv("RLN_API_KEY"),
		HodlExpirySec:   defaultHodlExpirySec,
		ClientCommPort:  defaultClientCommPort,
		UserCommURL:     os.Getenv("USER_COMM_URL"),
	}

	var err error
	if cfg.MinConfs, err = parseUint32(os.Getenv("MIN_CONFS")); err != nil {
		return nil, swap.Wrap(swap.KindConfigError, err, "MIN_CONFS")
	}
	if cfg.LocktimeBlocks, err = parseUint32(
		os.Getenv("LOCKTIME_BLOCKS")); err != nil {

		return nil, swap.Wrap(swap.KindConfigError, err,
			"LOCKTIME_BLOCKS")
	}
	if v := os.Getenv("FEE_RATE_SAT_PER_VB"); v != "" {
		cfg.FeeRateSatPerVB, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, swap.Wrap(swap.KindConfigError, err,
				"FEE_RATE_SAT_PER_VB")
		}
	}
	if v := os.Getenv("HODL_EXPIRY_SEC"); v != "" {
		cfg.HodlExpirySec, err = parseUint32(v)
		if err != nil {
			return nil, swap.Wrap(swap.KindConfigError, err,
				"HODL_EXPIRY_SEC")
		}
	}
	if v := os.Getenv("CLIENT_COMM_PORT"); v != "" {
		port, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return nil, swap.Wrap(swap.KindConfigError, err,
				"CLIENT_COMM_PORT")
		}
		cfg.ClientCommPort = uint16(port)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseUint32(s string) (uint32, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func (c *Config) validate() error {
	if c.ClientRole != RoleUser && c.ClientRole != RoleLP {
		return swap.New(swap.KindConfigError,
			"CLIENT_ROLE must be USER or LP, got %q", c.ClientRole)
	}
	if c.BitcoinRPCURL == "" {
		return swap.New(swap.KindConfigError, "BITCOIN_RPC_URL is required")
	}
	if c.WIF == "" {
		return swap.New(swap.KindConfigError, "WIF is required")
	}
	if c.Network == "" {
		return swap.New(swap.KindConfigError, "NETWORK is required")
	}
	if c.FeeRateSatPerVB <= 0 {
		return swap.New(swap.KindConfigError,
			"FEE_RATE_SAT_PER_VB must be positive")
	}
	if c.LPPubkeyHex == "" {
		return swap.New(swap.KindConfigError, "LP_PUBKEY_HEX is required")
	}
	if c.RLNBaseURL == "" {
		return swap.New(swap.KindConfigError, "RLN_BASE_URL is required")
	}
	if c.ClientRole == RoleLP && c.UserCommURL == "" {
		return swap.New(swap.KindConfigError,
			"USER_COMM_URL is required when CLIENT_ROLE=LP")
	}
	return nil
}

// CheckTimelockSafety enforces that the on-chain
// timelock must mature well after the HODL invoice's own expiry, or a
// counterparty could be paid off-chain while the on-chain refund path is
// already spendable.
func CheckTimelockSafety(locktimeBlocks, hodlExpirySec uint32) error {
	const (
		secondsPerBlock = 600
		safetyMarginSec = 3600
	)

	locktimeSec := uint64(locktimeBlocks) * secondsPerBlock
	required := uint64(hodlExpirySec) + safetyMarginSec

	if locktimeSec <= required {
		return swap.New(swap.KindConfigError,
			"LOCKTIME_BLOCKS*600s (%ds) must exceed HODL_EXPIRY_SEC+3600s "+
				"(%ds)", locktimeSec, required)
	}
	return nil
}
