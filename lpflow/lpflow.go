// Package lpflow drives the LP role's state machine: wait for the
// USER's submarine data, verify the on-chain HTLC against the decoded
// invoice, pay it, wait for the settlement preimage, and claim the HTLC.
// Mirrors userflow's explicit-state-enum shape so the two roles read as
// one family of orchestrator.
package lpflow

import (
	"time"

	"github.com/btcsuite/btclog"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"

	"github.com/lightninglabs/thunderswap/chainrpc"
	"github.com/lightninglabs/thunderswap/claimtx"
	"github.com/lightninglabs/thunderswap/config"
	"github.com/lightninglabs/thunderswap/crypto"
	"github.com/lightninglabs/thunderswap/rln"
	"github.com/lightninglabs/thunderswap/submarine"
	"github.com/lightninglabs/thunderswap/swap"
	"github.com/lightninglabs/thunderswap/verify"
)

// State is one of the LP orchestrator's named states.
type State string

const (
	StateAwaitingData   State = "AWAITING_DATA"
	StateVerified       State = "VERIFIED"
	StatePaying         State = "PAYING"
	StatePaymentSettled State = "PAYMENT_SETTLED"
	StateClaimed        State = "CLAIMED"
	StateFailed         State = "FAILED"
	StateTimedOut       State = "TIMED_OUT"
)

// pollDefaults are the poll cadence and attempt ceiling for each wait loop.
const (
	awaitingDataMaxAttempts = 1800
	awaitingDataInterval    = 2 * time.Second
	preimageMaxAttempts     = 120
	preimageInterval        = 5 * time.Second
)

// RLNClient is the subset of the RLN facade the LP flow calls.
type RLNClient interface {
	Decode(invoice string) (*rln.DecodeResult, error)
	Pay(invoice string) (*rln.PayResult, error)
	GetPaymentPreimage(paymentHash string) (*rln.GetPaymentPreimageResult,
		error)
}

// Params is everything one LP swap run needs.
type Params struct {
	Cfg        *config.Config
	Chain      *chainrpc.Client
	RLN        RLNClient
	Fetcher    *submarine.Fetcher
	PrivKey    *btcec.PrivateKey
	LPAddress  btcutil.Address
	Log        btclog.Logger
}

// Machine carries the mutable fields an LP run accumulates.
type Machine struct {
	p Params

	State State

	Data          swap.SubmarineData
	Decoded       *rln.DecodeResult
	Template      swap.HTLCTemplate
	FundingResult *verify.Result
	Preimage      swap.Preimage
	ClaimTxid     string

	Err error
}

// New begins a fresh run in AWAITING_DATA.
func New(p Params) *Machine {
	return &Machine{p: p, State: StateAwaitingData}
}

// Run drives the machine to a terminal state.
func (m *Machine) Run() State {
	for {
		if m.p.Log != nil {
			m.p.Log.Debugf("lp flow: entering state %s", m.State)
		}

		switch m.State {
		case StateAwaitingData:
			m.stepAwaitingData()
		case StateVerified:
			m.stepVerified()
		case StatePaying:
			m.stepPaying()
		case StatePaymentSettled:
			m.stepPaymentSettled()
		default:
			return m.State
		}

		switch m.State {
		case StateClaimed, StateFailed, StateTimedOut:
			return m.State
		}
	}
}

func (m *Machine) fail(err error) {
	m.Err = err
	m.State = StateFailed
}

// timeout records a terminal timeout, mirroring fail() so Run's caller
// always has a non-nil Err to report a non-zero exit on TIMED_OUT.
func (m *Machine) timeout(format string, args ...interface{}) {
	m.Err = swap.New(swap.KindNetworkTimeout, format, args...)
	m.State = StateTimedOut
}

func (m *Machine) stepAwaitingData() {
	for attempt := 0; attempt < awaitingDataMaxAttempts; attempt++ {
		data, ready, err := m.p.Fetcher.Fetch()
		if err == nil && ready {
			m.Data = *data
			m.State = StateVerified
			return
		}
		time.Sleep(awaitingDataInterval)
	}
	m.timeout("no submarine data received after %d attempts",
		awaitingDataMaxAttempts)
}

func (m *Machine) stepVerified() {
	decoded, err := m.p.RLN.Decode(m.Data.Invoice)
	if err != nil {
		m.fail(err)
		return
	}
	m.Decoded = decoded

	paymentHash, err := swap.PaymentHashFromHex(decoded.PaymentHash)
	if err != nil {
		m.fail(err)
		return
	}

	userPubkeyCompressed, err := crypto.ValidateCompressedPubkeyHex(
		m.Data.UserRefundPubkeyHex,
	)
	if err != nil {
		m.fail(err)
		return
	}
	lpPubkeyCompressed, err := crypto.ValidateCompressedPubkeyHex(
		m.p.Cfg.LPPubkeyHex,
	)
	if err != nil {
		m.fail(err)
		return
	}

	// tLock comes verbatim from the submarine data — never recomputed
	// from the current chain tip.
	m.Template = swap.HTLCTemplate{
		PaymentHash:          paymentHash,
		LPPubkeyCompressed:   lpPubkeyCompressed,
		UserPubkeyCompressed: userPubkeyCompressed,
		TLock:                m.Data.TLock,
	}

	result, err := verify.Verify(
		m.p.Chain, m.Data.FundingTxid, m.Data.FundingVout, m.Template,
		decoded.AmtMsat, int64(m.p.Cfg.MinConfs),
	)
	if err != nil {
		m.fail(err)
		return
	}
	m.FundingResult = result

	m.State = StatePaying
}

func (m *Machine) stepPaying() {
	result, err := m.p.RLN.Pay(m.Data.Invoice)
	if err != nil {
		m.fail(err)
		return
	}
	if result.Status == rln.StatusFailed {
		m.fail(swap.New(swap.KindRlnError, "payment failed"))
		return
	}
	m.State = StatePaymentSettled
}

func (m *Machine) stepPaymentSettled() {
	paymentHash := m.Template.PaymentHash

	for attempt := 0; attempt < preimageMaxAttempts; attempt++ {
		result, err := m.p.RLN.GetPaymentPreimage(paymentHash.String())
		if err == nil {
			switch result.Status {
			case rln.StatusSucceeded:
				if result.Preimage == "" {
					break
				}
				preimage, err := swap.PreimageFromHex(result.Preimage)
				if err != nil {
					m.fail(err)
					return
				}
				if preimage.Hash() != paymentHash {
					m.fail(swap.New(swap.KindPreimageMismatch,
						"SHA-256(preimage) does not match payment hash %s",
						paymentHash))
					return
				}
				m.Preimage = preimage
				m.claim()
				return
			case rln.StatusCancelled, rln.StatusFailed:
				m.fail(swap.New(swap.KindRlnError,
					"payment preimage poll: %s", result.Status))
				return
			}
		}
		time.Sleep(preimageInterval)
	}
	m.timeout("payment hash %s did not settle after %d attempts",
		paymentHash, preimageMaxAttempts)
}

func (m *Machine) claim() {
	outpoint := swap.FundingOutpoint{
		Vout:     m.Data.FundingVout,
		ValueSat: m.FundingResult.AmountSat,
	}
	txidBytes, err := txidFromHex(m.Data.FundingTxid)
	if err != nil {
		m.fail(err)
		return
	}
	outpoint.Txid = txidBytes

	result, err := claimtx.Claim(
		m.p.Chain, outpoint, m.Template, m.Preimage, m.p.PrivKey,
		m.p.LPAddress, m.p.Cfg.FeeRateSatPerVB,
	)
	if err != nil {
		m.fail(err)
		return
	}
	m.ClaimTxid = result.Txid
	m.State = StateClaimed
}
