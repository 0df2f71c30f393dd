package swap

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// PreimageSize and PaymentHashSize are fixed at 32 bytes throughout the
// protocol (BIP-340 x-only coordinates and SHA-256 digests are both 32
// bytes, which is a convenient coincidence the script builder relies on).
const (
	PreimageSize    = 32
	PaymentHashSize = 32
)

// Preimage is the CSPRNG-generated secret whose SHA-256 is the PaymentHash.
type Preimage [PreimageSize]byte

// NewPreimage generates a fresh, cryptographically random preimage.
func NewPreimage() (Preimage, error) {
	var p Preimage
	if _, err := rand.Read(p[:]); err != nil {
		return p, Wrap(KindInternalError, err, "generating preimage")
	}
	return p, nil
}

// Hash returns the PaymentHash for this preimage.
func (p Preimage) Hash() PaymentHash {
	return sha256.Sum256(p[:])
}

func (p Preimage) String() string {
	return hex.EncodeToString(p[:])
}

// PreimageFromHex parses a 64-hex-character preimage.
func PreimageFromHex(s string) (Preimage, error) {
	var p Preimage
	b, err := hex.DecodeString(s)
	if err != nil {
		return p, New(KindInvalidInput, "preimage is not valid hex: %v", err)
	}
	if len(b) != PreimageSize {
		return p, New(KindInvalidInput, "preimage must be %d bytes, got %d",
			PreimageSize, len(b))
	}
	copy(p[:], b)
	return p, nil
}

// PaymentHash is the SHA-256 of a Preimage; unique per swap.
type PaymentHash [PaymentHashSize]byte

func (h PaymentHash) String() string {
	return hex.EncodeToString(h[:])
}

// PaymentHashFromHex parses and validates a 64-hex-character payment hash
// (must be exactly 64 hex characters).
func PaymentHashFromHex(s string) (PaymentHash, error) {
	var h PaymentHash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, New(KindInvalidInput, "payment hash is not valid hex: %v", err)
	}
	if len(b) != PaymentHashSize {
		return h, New(KindInvalidInput, "payment hash must be %d bytes, got %d",
			PaymentHashSize, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// HTLCTemplate is the complete description of one swap's on-chain HTLC,
// sufficient to reconstruct its scriptPubKey byte-for-byte.
type HTLCTemplate struct {
	PaymentHash         PaymentHash
	LPPubkeyCompressed  [33]byte
	UserPubkeyCompressed [33]byte
	TLock               uint32
}

func (t HTLCTemplate) String() string {
	return fmt.Sprintf("HTLCTemplate{hash=%s lp=%x user=%x tlock=%d}",
		t.PaymentHash, t.LPPubkeyCompressed, t.UserPubkeyCompressed, t.TLock)
}

// FundingOutpoint identifies and values the on-chain HTLC output.
type FundingOutpoint struct {
	Txid     [32]byte
	Vout     uint32
	ValueSat uint64
}

func (o FundingOutpoint) String() string {
	return fmt.Sprintf("%x:%d", reverse(o.Txid), o.Vout)
}

// reverse returns the byte-reversed (RPC display order) copy of a txid.
func reverse(in [32]byte) [32]byte {
	var out [32]byte
	for i := range in {
		out[i] = in[len(in)-1-i]
	}
	return out
}

// HodlRecord is the persisted, per-paymentHash record the USER creates
// before any on-chain activity. The USER flow reads it back to add the
// funding data once the HTLC confirms, and the refund command reads it to
// rebuild the refund transaction if the swap never reaches SETTLED.
// Settlement itself uses the preimage the USER flow holds in memory, not
// this record.
type HodlRecord struct {
	PaymentHash   string `json:"paymentHash"`
	Preimage      string `json:"preimage"`
	AmountMsat    uint64 `json:"amountMsat"`
	ExpirySec     uint32 `json:"expirySec"`
	Invoice       string `json:"invoice"`
	PaymentSecret string `json:"paymentSecret"`
	CreatedAtMs   int64  `json:"createdAtMs"`

	// Populated once the HTLC is funded; zero until then. Refund needs
	// all six to rebuild the exact HTLCTemplate and FundingOutpoint.
	FundingTxid        string `json:"fundingTxid,omitempty"`
	FundingVout        uint32 `json:"fundingVout,omitempty"`
	FundingValueSat    uint64 `json:"fundingValueSat,omitempty"`
	TLock              uint32 `json:"tLock,omitempty"`
	LPPubkeyHex        string `json:"lpPubkeyHex,omitempty"`
	UserPubkeyHex      string `json:"userPubkeyHex,omitempty"`
}

// SubmarineData is the minimal record USER publishes and LP fetches.
// TLock must be reused verbatim by LP — never recomputed.
type SubmarineData struct {
	Invoice                  string `json:"invoice"`
	FundingTxid              string `json:"fundingTxid"`
	FundingVout              uint32 `json:"fundingVout"`
	UserRefundPubkeyHex      string `json:"userRefundPubkeyHex"`
	TLock                    uint32 `json:"tLock"`
}
