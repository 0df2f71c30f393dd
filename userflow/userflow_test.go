package userflow

import (
	"path/filepath"
	"testing"

	"github.com/lightninglabs/thunderswap/config"
	"github.com/lightninglabs/thunderswap/rln"
	"github.com/lightninglabs/thunderswap/store"
	"github.com/lightninglabs/thunderswap/swap"
	"github.com/stretchr/testify/require"
)

type mockRLN struct {
	invoiceHodlResult *rln.InvoiceHodlResult
	invoiceHodlErr    error
	invoiceHodlCalls  int

	getPaymentResult *rln.GetPaymentResult
	getPaymentErr    error

	invoiceSettleErr error

	invoiceStatusResult *rln.InvoiceStatusResult
	invoiceStatusErr    error
}

func (m *mockRLN) InvoiceHodl(rln.InvoiceHodlRequest) (*rln.InvoiceHodlResult, error) {
	m.invoiceHodlCalls++
	return m.invoiceHodlResult, m.invoiceHodlErr
}

func (m *mockRLN) GetPayment(string) (*rln.GetPaymentResult, error) {
	return m.getPaymentResult, m.getPaymentErr
}

func (m *mockRLN) InvoiceSettle(rln.InvoiceSettleRequest) error {
	return m.invoiceSettleErr
}

func (m *mockRLN) InvoiceStatus(string) (*rln.InvoiceStatusResult, error) {
	return m.invoiceStatusResult, m.invoiceStatusErr
}

func newTestMachine(t *testing.T, rlnClient RLNClient) *Machine {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "hodl_store.json"))
	require.NoError(t, err)

	return New(Params{
		Cfg: &config.Config{
			LocktimeBlocks: 200,
			HodlExpirySec:  3600,
		},
		RLN:        rlnClient,
		Store:      s,
		AmountMsat: 100000,
	})
}

func TestStepDraftCreatesInvoiceAndPersistsRecord(t *testing.T) {
	m := newTestMachine(t, &mockRLN{
		invoiceHodlResult: &rln.InvoiceHodlResult{
			Invoice:       "lnbc1...",
			PaymentSecret: "secret",
		},
	})

	m.stepDraft()

	require.Equal(t, StateInvoiced, m.State)
	require.Equal(t, "lnbc1...", m.Invoice)
	require.NotEqual(t, swap.PaymentHash{}, m.PaymentHash)

	record, err := m.p.Store.Get(m.PaymentHash.String())
	require.NoError(t, err)
	require.Equal(t, "lnbc1...", record.Invoice)
	require.Equal(t, m.Preimage.String(), record.Preimage)
}

func TestStepDraftFailsOnUnsafeTimelockWithoutCallingRLN(t *testing.T) {
	rlnMock := &mockRLN{}
	m := newTestMachine(t, rlnMock)
	m.p.Cfg.LocktimeBlocks = 1 // 600s, far below the 3600s+expiry floor

	m.stepDraft()

	require.Equal(t, StateFailed, m.State)
	require.Error(t, m.Err)
	require.Zero(t, rlnMock.invoiceHodlCalls)
}

func TestStepDraftFailsOnRLNError(t *testing.T) {
	m := newTestMachine(t, &mockRLN{
		invoiceHodlErr: swap.New(swap.KindRlnError, "node unreachable"),
	})

	m.stepDraft()

	require.Equal(t, StateFailed, m.State)
	require.Error(t, m.Err)
}

func TestStepPublishedTransitionsOnClaimable(t *testing.T) {
	m := newTestMachine(t, &mockRLN{
		getPaymentResult: &rln.GetPaymentResult{
			Payment: rln.Payment{Inbound: true, Status: rln.StatusClaimable},
		},
	})
	m.PaymentHash = swap.Preimage{1}.Hash()

	m.stepPublished()

	require.Equal(t, StateSettling, m.State)
}

func TestStepPublishedTransitionsOnSucceeded(t *testing.T) {
	m := newTestMachine(t, &mockRLN{
		getPaymentResult: &rln.GetPaymentResult{
			Payment: rln.Payment{Inbound: true, Status: rln.StatusSucceeded},
		},
	})
	m.PaymentHash = swap.Preimage{1}.Hash()

	m.stepPublished()

	require.Equal(t, StateSettled, m.State)
}

func TestStepPublishedFailsOnCancelled(t *testing.T) {
	m := newTestMachine(t, &mockRLN{
		getPaymentResult: &rln.GetPaymentResult{
			Payment: rln.Payment{Inbound: true, Status: rln.StatusCancelled},
		},
	})
	m.PaymentHash = swap.Preimage{1}.Hash()

	m.stepPublished()

	require.Equal(t, StateFailed, m.State)
}

func TestStepSettlingCallsInvoiceSettleWithPreimage(t *testing.T) {
	m := newTestMachine(t, &mockRLN{})
	m.Preimage = swap.Preimage{9}
	m.PaymentHash = m.Preimage.Hash()

	m.stepSettling()

	require.Equal(t, StateSettled, m.State)
}

func TestStepSettlingFailsOnRLNError(t *testing.T) {
	m := newTestMachine(t, &mockRLN{
		invoiceSettleErr: swap.New(swap.KindRlnError, "settle rejected"),
	})

	m.stepSettling()

	require.Equal(t, StateFailed, m.State)
}

func TestStepSettledReturnsOnTerminalStatus(t *testing.T) {
	m := newTestMachine(t, &mockRLN{
		invoiceStatusResult: &rln.InvoiceStatusResult{
			Status: rln.StatusSucceeded,
		},
	})

	// Should return promptly rather than looping settledMaxAttempts times.
	m.stepSettled()
}
