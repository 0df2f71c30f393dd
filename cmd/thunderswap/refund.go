package main

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/spf13/cobra"

	"github.com/lightninglabs/thunderswap/crypto"
	"github.com/lightninglabs/thunderswap/refundtx"
	"github.com/lightninglabs/thunderswap/swap"
)

type refundCommand struct {
	PaymentHash   string
	RefundAddress string

	cmd *cobra.Command
}

func newRefundCommand() *cobra.Command {
	cc := &refundCommand{}
	cc.cmd = &cobra.Command{
		Use:   "refund",
		Short: "Build the unsigned refund PSBT for a timed-out swap",
		Long: `Build the unsigned PSBT that spends the HTLC's refund leaf
back to an address of the caller's choosing, once tLock has matured.
The PSBT is printed base64-encoded; it still needs the user's refund key
to finalize the witness before broadcast.`,
		RunE: cc.execute,
	}
	cc.cmd.Flags().StringVar(
		&cc.PaymentHash, "payment_hash", "", "payment hash of the swap "+
			"to refund, as stored by the user run",
	)
	cc.cmd.Flags().StringVar(
		&cc.RefundAddress, "refund_address", "", "address to send the "+
			"refunded coins to",
	)
	return cc.cmd
}

func (c *refundCommand) execute(_ *cobra.Command, _ []string) error {
	if c.PaymentHash == "" {
		return swap.New(swap.KindInvalidInput, "--payment_hash is required")
	}
	if c.RefundAddress == "" {
		return swap.New(swap.KindInvalidInput, "--refund_address is required")
	}

	rt, err := loadRuntime()
	if err != nil {
		return err
	}

	record, err := rt.store.Get(c.PaymentHash)
	if err != nil {
		return err
	}
	if record.FundingTxid == "" {
		return swap.New(swap.KindInvalidInput,
			"swap %s was never funded, nothing to refund", c.PaymentHash)
	}

	paymentHash, err := swap.PaymentHashFromHex(record.PaymentHash)
	if err != nil {
		return err
	}
	lpPubkey, err := crypto.ValidateCompressedPubkeyHex(record.LPPubkeyHex)
	if err != nil {
		return err
	}
	userPubkey, err := crypto.ValidateCompressedPubkeyHex(record.UserPubkeyHex)
	if err != nil {
		return err
	}
	tmpl := swap.HTLCTemplate{
		PaymentHash:          paymentHash,
		LPPubkeyCompressed:   lpPubkey,
		UserPubkeyCompressed: userPubkey,
		TLock:                record.TLock,
	}

	txidHash, err := chainhash.NewHashFromStr(record.FundingTxid)
	if err != nil {
		return swap.New(swap.KindInvalidInput, "invalid stored txid: %v", err)
	}
	var txid [32]byte
	copy(txid[:], txidHash[:])

	outpoint := swap.FundingOutpoint{
		Txid:     txid,
		Vout:     record.FundingVout,
		ValueSat: record.FundingValueSat,
	}

	refundAddr, err := parseAddress(c.RefundAddress, rt.net.Chain)
	if err != nil {
		return err
	}

	packet, err := refundtx.Build(
		outpoint, tmpl, refundAddr, rt.cfg.FeeRateSatPerVB,
	)
	if err != nil {
		return err
	}

	b64, err := packet.B64Encode()
	if err != nil {
		return swap.Wrap(swap.KindInternalError, err, "encoding refund psbt")
	}

	fmt.Printf("unsigned refund psbt (tLock=%d):\n%s\n", record.TLock, b64)
	fmt.Printf("spends %s:%d, control block and refund script attached\n",
		txidHash.String(), record.FundingVout)
	return nil
}
