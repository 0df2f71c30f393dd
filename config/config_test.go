package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T, role string) {
	t.Helper()
	t.Setenv("CLIENT_ROLE", role)
	t.Setenv("BITCOIN_RPC_URL", "http://localhost:18443")
	t.Setenv("WIF", "cVtest")
	t.Setenv("NETWORK", "regtest")
	t.Setenv("FEE_RATE_SAT_PER_VB", "2.5")
	t.Setenv("LP_PUBKEY_HEX", "02"+"00000000000000000000000000000000000000000000000000000000000000")
	t.Setenv("RLN_BASE_URL", "http://localhost:3001")
}

func TestLoadUserRoleSucceeds(t *testing.T) {
	setRequiredEnv(t, "USER")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, RoleUser, cfg.ClientRole)
	require.Equal(t, 2.5, cfg.FeeRateSatPerVB)
	require.Equal(t, uint32(defaultHodlExpirySec), cfg.HodlExpirySec)
	require.Equal(t, uint16(defaultClientCommPort), cfg.ClientCommPort)
}

func TestLoadLPRoleRequiresUserCommURL(t *testing.T) {
	setRequiredEnv(t, "LP")

	_, err := Load("")
	require.Error(t, err)

	t.Setenv("USER_COMM_URL", "http://localhost:9999")
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, RoleLP, cfg.ClientRole)
}

func TestLoadRejectsUnknownRole(t *testing.T) {
	setRequiredEnv(t, "WIZARD")

	_, err := Load("")
	require.Error(t, err)
}

func TestLoadRejectsMissingRPCURL(t *testing.T) {
	setRequiredEnv(t, "USER")
	t.Setenv("BITCOIN_RPC_URL", "")

	_, err := Load("")
	require.Error(t, err)
}

func TestLoadRejectsNonPositiveFeeRate(t *testing.T) {
	setRequiredEnv(t, "USER")
	t.Setenv("FEE_RATE_SAT_PER_VB", "0")

	_, err := Load("")
	require.Error(t, err)
}

func TestCheckTimelockSafety(t *testing.T) {
	// 6 blocks * 600s = 3600s, well under expiry(86400)+3600 required.
	require.Error(t, CheckTimelockSafety(6, 86400))

	// 200 blocks * 600s = 120000s, comfortably over 86400+3600=90000.
	require.NoError(t, CheckTimelockSafety(200, 86400))
}
