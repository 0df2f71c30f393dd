// Package htlc implements the Taproot HTLC script builder and the
// on-chain reconstruction the verifier needs: the deterministic
// unspendable internal key, the claim/refund tapleaves, the BIP-341
// TapLeaf/TapBranch/TapTweak hashing, the output key and scriptPubKey, and
// the control block for the claim-leaf script-path spend.
package htlc

import (
	"bytes"
	"encoding/binary"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/lightninglabs/thunderswap/swap"
)

// internalKeySeed is the nothing-up-my-sleeve ASCII seed. Every
// thunderswap HTLC across every swap shares this same internal key, proving
// the key-path spend is unavailable to anyone.
const internalKeySeed = "HODL_INVOICE_P2TR_HTLC_INTERNAL_KEY_v0"

// maxInternalKeyAttempts bounds the nothing-up-my-sleeve search.
const maxInternalKeyAttempts = 256

// InternalKey derives the deterministic, provably-unspendable Taproot
// internal key shared by all thunderswap HTLCs. The derivation is pure: the
// same seed and loop bound always produce the same 32 bytes.
func InternalKey() ([32]byte, error) {
	seed := []byte(internalKeySeed)

	for attempt := 0; attempt < maxInternalKeyAttempts; attempt++ {
		data := seed
		if attempt != 0 {
			var suffix [4]byte
			binary.BigEndian.PutUint32(suffix[:], uint32(attempt))
			data = append(append([]byte{}, seed...), suffix[:]...)
		}

		candidate := chainhash.HashB(data)

		if _, err := schnorr.ParsePubKey(candidate); err == nil {
			var out [32]byte
			copy(out[:], candidate)
			return out, nil
		}
	}

	return [32]byte{}, swap.New(swap.KindInternalError,
		"no valid nothing-up-my-sleeve internal key found in %d attempts",
		maxInternalKeyAttempts)
}

// ClaimScript builds the claim tapleaf script:
// OP_SHA256 <paymentHash> OP_EQUALVERIFY <lpPubkeyXOnly> OP_CHECKSIG
func ClaimScript(paymentHash swap.PaymentHash, lpXOnly [32]byte) ([]byte, error) {
	b := txscript.NewScriptBuilder()
	b.AddOp(txscript.OP_SHA256)
	b.AddData(paymentHash[:])
	b.AddOp(txscript.OP_EQUALVERIFY)
	b.AddData(lpXOnly[:])
	b.AddOp(txscript.OP_CHECKSIG)

	script, err := b.Script()
	if err != nil {
		return nil, swap.Wrap(swap.KindInternalError, err,
			"building claim script")
	}
	return script, nil
}

// RefundScript builds the refund tapleaf script:
// <tLock> OP_CHECKLOCKTIMEVERIFY OP_DROP <userPubkeyXOnly> OP_CHECKSIG
func RefundScript(tLock uint32, userXOnly [32]byte) ([]byte, error) {
	b := txscript.NewScriptBuilder()
	b.AddInt64(int64(tLock))
	b.AddOp(txscript.OP_CHECKLOCKTIMEVERIFY)
	b.AddOp(txscript.OP_DROP)
	b.AddData(userXOnly[:])
	b.AddOp(txscript.OP_CHECKSIG)

	script, err := b.Script()
	if err != nil {
		return nil, swap.Wrap(swap.KindInternalError, err,
			"building refund script")
	}
	return script, nil
}

// Tapleaves holds the claim and refund scripts for one HTLC template along
// with their tapleaf hashes (leaf version 0xc0).
type Tapleaves struct {
	ClaimScript   []byte
	RefundScript  []byte
	ClaimHash     chainhash.Hash
	RefundHash    chainhash.Hash
}

// BuildTapleaves constructs both tapleaves and their leaf hashes for a
// template.
func BuildTapleaves(tmpl swap.HTLCTemplate, lpXOnly, userXOnly [32]byte) (
	*Tapleaves, error) {

	claimScript, err := ClaimScript(tmpl.PaymentHash, lpXOnly)
	if err != nil {
		return nil, err
	}
	refundScript, err := RefundScript(tmpl.TLock, userXOnly)
	if err != nil {
		return nil, err
	}

	return &Tapleaves{
		ClaimScript:  claimScript,
		RefundScript: refundScript,
		ClaimHash:    txscript.NewBaseTapLeaf(claimScript).TapHash(),
		RefundHash:   txscript.NewBaseTapLeaf(refundScript).TapHash(),
	}, nil
}

// MerkleRoot sorts the two leaf hashes lexicographically and hashes them
// with the "TapBranch" tag.
func MerkleRoot(a, b chainhash.Hash) chainhash.Hash {
	lo, hi := a, b
	if bytes.Compare(lo[:], hi[:]) > 0 {
		lo, hi = hi, lo
	}
	return *chainhash.TaggedHash(chainhash.TagTapBranch, lo[:], hi[:])
}

// Output is the fully reconstructed on-chain Taproot HTLC output.
type Output struct {
	InternalKey  [32]byte
	MerkleRoot   chainhash.Hash
	OutputKey    [32]byte
	OutputOdd    bool
	ScriptPubKey []byte
}

// Build reconstructs the HTLC output (internal key, merkle root, tweaked
// output key, and the 34-byte `OP_1 || outputKey` scriptPubKey) for a
// template. This is used both to compute the deposit target address
// and, given an on-chain template, to verify it byte-for-byte.
func Build(tmpl swap.HTLCTemplate) (*Output, *Tapleaves, error) {
	lpXOnly, err := xOnly(tmpl.LPPubkeyCompressed)
	if err != nil {
		return nil, nil, err
	}
	userXOnly, err := xOnly(tmpl.UserPubkeyCompressed)
	if err != nil {
		return nil, nil, err
	}

	leaves, err := BuildTapleaves(tmpl, lpXOnly, userXOnly)
	if err != nil {
		return nil, nil, err
	}

	internalKeyBytes, err := InternalKey()
	if err != nil {
		return nil, nil, err
	}

	internalPubKey, err := schnorr.ParsePubKey(internalKeyBytes[:])
	if err != nil {
		return nil, nil, swap.Wrap(swap.KindInternalError, err,
			"parsing internal key")
	}

	merkleRoot := MerkleRoot(leaves.ClaimHash, leaves.RefundHash)

	outputKey := txscript.ComputeTaprootOutputKey(internalPubKey, merkleRoot[:])
	outputKeyBytes := schnorr.SerializePubKey(outputKey)
	odd := outputKey.SerializeCompressed()[0] == 0x03

	scriptPubKey := make([]byte, 0, 34)
	scriptPubKey = append(scriptPubKey, txscript.OP_1)
	scriptPubKey = append(scriptPubKey, byte(len(outputKeyBytes)))
	scriptPubKey = append(scriptPubKey, outputKeyBytes...)

	var outKeyArr [32]byte
	copy(outKeyArr[:], outputKeyBytes)

	return &Output{
		InternalKey:  internalKeyBytes,
		MerkleRoot:   merkleRoot,
		OutputKey:    outKeyArr,
		OutputOdd:    odd,
		ScriptPubKey: scriptPubKey,
	}, leaves, nil
}

// ClaimControlBlock derives the control block for the claim-leaf
// script-path spend: leaf version + output-key parity, the internal key,
// and the refund leaf hash as the single sibling.
func ClaimControlBlock(out *Output, leaves *Tapleaves) ([]byte, error) {
	internalPubKey, err := schnorr.ParsePubKey(out.InternalKey[:])
	if err != nil {
		return nil, swap.Wrap(swap.KindInternalError, err,
			"parsing internal key")
	}

	cb := txscript.ControlBlock{
		InternalKey:     internalPubKey,
		LeafVersion:     txscript.BaseLeafVersion,
		OutputKeyYIsOdd: out.OutputOdd,
		InclusionProof:  leaves.RefundHash[:],
	}

	blockBytes, err := cb.ToBytes()
	if err != nil {
		return nil, swap.Wrap(swap.KindInternalError, err,
			"serializing control block")
	}
	return blockBytes, nil
}

func xOnly(compressed [33]byte) ([32]byte, error) {
	var out [32]byte
	if _, err := schnorr.ParsePubKey(compressed[1:]); err != nil {
		return out, swap.New(swap.KindInvalidInput,
			"not a valid x-only curve point: %v", err)
	}
	copy(out[:], compressed[1:])
	return out, nil
}
