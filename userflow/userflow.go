// Package userflow drives the USER role's state machine: create
// the HODL invoice, build the on-chain HTLC, fund it, publish the
// submarine data, and settle once the LP marks the invoice claimable.
// Structured the way cmd/chantools/recoverloopin.go drives a single
// linear recovery procedure through named steps, generalized here into an
// explicit resumable state enum.
package userflow

import (
	"time"

	"github.com/btcsuite/btclog"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/lightninglabs/thunderswap/chainrpc"
	"github.com/lightninglabs/thunderswap/config"
	"github.com/lightninglabs/thunderswap/deposit"
	"github.com/lightninglabs/thunderswap/htlc"
	"github.com/lightninglabs/thunderswap/rln"
	"github.com/lightninglabs/thunderswap/store"
	"github.com/lightninglabs/thunderswap/submarine"
	"github.com/lightninglabs/thunderswap/swap"
)

// State is one of the USER orchestrator's named states.
type State string

const (
	StateDraft              State = "DRAFT"
	StateInvoiced           State = "INVOICED"
	StateFundingBuilt       State = "FUNDING_BUILT"
	StateFundingConfirmed   State = "FUNDING_CONFIRMED"
	StatePublished          State = "PUBLISHED"
	StateWaitingClaimable   State = "WAITING_CLAIMABLE"
	StateSettling           State = "SETTLING"
	StateSettled            State = "SETTLED"
	StateFailed             State = "FAILED"
	StateTimedOut           State = "TIMED_OUT"
)

// pollDefaults are the poll cadence and attempt ceiling for the PUBLISHED and
// SETTLED polling loops.
const (
	publishedMaxAttempts = 120
	publishedInterval    = 5 * time.Second
	settledMaxAttempts   = 120
	settledInterval      = 5 * time.Second
	fundingMaxAttempts   = 360
	fundingInterval      = 5 * time.Second
)

// RLNClient is the subset of the RLN facade the USER flow calls.
type RLNClient interface {
	InvoiceHodl(req rln.InvoiceHodlRequest) (*rln.InvoiceHodlResult, error)
	GetPayment(paymentHash string) (*rln.GetPaymentResult, error)
	InvoiceSettle(req rln.InvoiceSettleRequest) error
	InvoiceStatus(invoice string) (*rln.InvoiceStatusResult, error)
}

// Params is everything one USER swap run needs.
type Params struct {
	Cfg          *config.Config
	Chain        *chainrpc.Client
	RLN          RLNClient
	Store        *store.Store
	Publisher    *submarine.Publisher
	PrivKey      *btcec.PrivateKey
	SignerScriptHex string
	SignerAddress   btcutil.Address
	NetParams       *chaincfg.Params
	LPPubkeyCompressed [33]byte
	AmountSat    uint64
	AmountMsat   uint64
	Log          btclog.Logger
}

// Machine carries the mutable fields a USER run accumulates as it
// transitions.
type Machine struct {
	p Params

	State State

	Preimage    swap.Preimage
	PaymentHash swap.PaymentHash
	Invoice     string
	PaymentSecret string
	TLock       uint32
	Template    swap.HTLCTemplate
	HTLCAddress btcutil.Address
	FundingTxid string
	FundingVout uint32

	Err error
}

// New begins a fresh run in DRAFT.
func New(p Params) *Machine {
	return &Machine{p: p, State: StateDraft}
}

// Run drives the machine to a terminal state, logging each transition.
func (m *Machine) Run() State {
	for {
		if m.Log() != nil {
			m.p.Log.Debugf("user flow: entering state %s", m.State)
		}

		switch m.State {
		case StateDraft:
			m.stepDraft()
		case StateInvoiced:
			m.stepInvoiced()
		case StateFundingBuilt:
			m.stepFundingBuilt()
		case StateFundingConfirmed:
			m.stepFundingConfirmed()
		case StatePublished:
			m.stepPublished()
		case StateSettling:
			m.stepSettling()
		case StateSettled:
			m.stepSettled()
			return m.State
		case StateFailed, StateTimedOut:
			return m.State
		default:
			return m.State
		}

		switch m.State {
		case StateFailed, StateTimedOut:
			return m.State
		}
	}
}

// Log is a nil-safe accessor so Run's debug line doesn't panic when no
// logger was configured.
func (m *Machine) Log() btclog.Logger {
	return m.p.Log
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

func (m *Machine) stepDraft() {
	if err := config.CheckTimelockSafety(
		m.p.Cfg.LocktimeBlocks, m.p.Cfg.HodlExpirySec,
	); err != nil {
		m.fail(err)
		return
	}

	preimage, err := swap.NewPreimage()
	if err != nil {
		m.fail(err)
		return
	}
	m.Preimage = preimage
	m.PaymentHash = preimage.Hash()

	result, err := m.p.RLN.InvoiceHodl(rln.InvoiceHodlRequest{
		PaymentHash: m.PaymentHash.String(),
		ExpirySec:   m.p.Cfg.HodlExpirySec,
		AmtMsat:     m.p.AmountMsat,
	})
	if err != nil {
		m.fail(err)
		return
	}
	m.Invoice = result.Invoice
	m.PaymentSecret = result.PaymentSecret

	record := swap.HodlRecord{
		PaymentHash:   m.PaymentHash.String(),
		Preimage:      m.Preimage.String(),
		AmountMsat:    m.p.AmountMsat,
		ExpirySec:     m.p.Cfg.HodlExpirySec,
		Invoice:       m.Invoice,
		PaymentSecret: m.PaymentSecret,
		CreatedAtMs:   time.Now().UnixMilli(),
	}
	if err := m.p.Store.Put(record); err != nil {
		m.fail(err)
		return
	}

	m.State = StateInvoiced
}

func (m *Machine) stepInvoiced() {
	tip, err := m.p.Chain.GetBlockCount()
	if err != nil {
		m.fail(err)
		return
	}
	m.TLock = uint32(tip) + m.p.Cfg.LocktimeBlocks

	m.Template = swap.HTLCTemplate{
		PaymentHash:          m.PaymentHash,
		LPPubkeyCompressed:   m.p.LPPubkeyCompressed,
		UserPubkeyCompressed: compressedFromPrivKey(m.p.PrivKey),
		TLock:                m.TLock,
	}

	out, _, err := htlc.Build(m.Template)
	if err != nil {
		m.fail(err)
		return
	}
	addr, err := m.taprootAddress(out.OutputKey)
	if err != nil {
		m.fail(err)
		return
	}
	m.HTLCAddress = addr

	m.State = StateFundingBuilt
}

func (m *Machine) stepFundingBuilt() {
	result, err := deposit.Build(
		m.p.Chain, m.p.PrivKey, m.p.SignerScriptHex, m.HTLCAddress,
		m.p.SignerAddress, m.p.AmountSat, m.p.Cfg.FeeRateSatPerVB,
	)
	if err != nil {
		m.fail(err)
		return
	}
	m.FundingTxid = result.Txid
	m.FundingVout = 0

	for attempt := 0; attempt < fundingMaxAttempts; attempt++ {
		rawTx, err := m.p.Chain.GetRawTransaction(m.FundingTxid)
		if err == nil && rawTx.Confirmations >= int64(m.p.Cfg.MinConfs) {
			m.State = StateFundingConfirmed
			return
		}
		time.Sleep(fundingInterval)
	}

	m.timeout("funding tx %s did not reach %d confirmations after %d attempts",
		m.FundingTxid, m.p.Cfg.MinConfs, fundingMaxAttempts)
}

func (m *Machine) stepFundingConfirmed() {
	record, err := m.p.Store.Get(m.PaymentHash.String())
	if err != nil {
		m.fail(err)
		return
	}
	record.FundingTxid = m.FundingTxid
	record.FundingVout = m.FundingVout
	record.FundingValueSat = m.p.AmountSat
	record.TLock = m.TLock
	record.LPPubkeyHex = hexCompressed(m.p.LPPubkeyCompressed)
	record.UserPubkeyHex = hexCompressed(m.Template.UserPubkeyCompressed)
	if err := m.p.Store.Put(*record); err != nil {
		m.fail(err)
		return
	}

	m.p.Publisher.Publish(swap.SubmarineData{
		Invoice:             m.Invoice,
		FundingTxid:         m.FundingTxid,
		FundingVout:         m.FundingVout,
		UserRefundPubkeyHex: hexCompressed(m.Template.UserPubkeyCompressed),
		TLock:               m.TLock,
	})
	m.State = StatePublished
}

func (m *Machine) stepPublished() {
	for attempt := 0; attempt < publishedMaxAttempts; attempt++ {
		result, err := m.p.RLN.GetPayment(m.PaymentHash.String())
		if err == nil && result.Payment.Inbound {
			switch result.Payment.Status {
			case rln.StatusClaimable:
				m.State = StateSettling
				return
			case rln.StatusSucceeded:
				m.State = StateSettled
				return
			case rln.StatusCancelled, rln.StatusFailed:
				m.fail(swap.New(swap.KindRlnError,
					"inbound payment %s", result.Payment.Status))
				return
			}
		}
		time.Sleep(publishedInterval)
	}
	m.timeout("payment hash %s did not become claimable after %d attempts",
		m.PaymentHash, publishedMaxAttempts)
}

func (m *Machine) stepSettling() {
	err := m.p.RLN.InvoiceSettle(rln.InvoiceSettleRequest{
		PaymentHash:     m.PaymentHash.String(),
		PaymentPreimage: m.Preimage.String(),
	})
	if err != nil {
		m.fail(err)
		return
	}
	m.State = StateSettled
}

func (m *Machine) stepSettled() {
	for attempt := 0; attempt < settledMaxAttempts; attempt++ {
		result, err := m.p.RLN.InvoiceStatus(m.Invoice)
		if err == nil {
			switch result.Status {
			case rln.StatusSucceeded, rln.StatusCancelled,
				rln.StatusFailed, rln.StatusExpired:
				return
			}
		}
		time.Sleep(settledInterval)
	}
}
