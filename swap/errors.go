// Package swap holds the data model and error taxonomy shared by the
// atomic-swap engine: the payment hash, the HTLC template, the persisted
// HODL record and the submarine-data record USER hands to LP.
package swap

import "fmt"

// Kind identifies the class of a swap-engine error, independent of the
// wrapped message. Callers switch on Kind (via errors.Is against an
// &Error{Kind: ...} target, or errors.As and the Kind field) rather than
// parsing error strings.
type Kind string

const (
	KindInvalidInput         Kind = "InvalidInput"
	KindConfigError          Kind = "ConfigError"
	KindFundsUnavailable     Kind = "FundsUnavailable"
	KindTemplateMismatch     Kind = "TemplateMismatch"
	KindScriptPubKeyMismatch Kind = "ScriptPubKeyMismatch"
	KindAmountTooLow         Kind = "AmountTooLow"
	KindDustAfterFee         Kind = "DustAfterFee"
	KindPreimageMismatch     Kind = "PreimageMismatch"
	KindRpcError             Kind = "RpcError"
	KindRlnError             Kind = "RlnError"
	KindNetworkTimeout       Kind = "NetworkTimeout"
	KindInternalError        Kind = "InternalError"
)

// Error is a Kind-tagged error carrying an optional payment hash and txid
// (attached with WithHash/WithTxid) for user-visible reporting.
type Error struct {
	Kind        Kind
	Msg         string
	PaymentHash string
	Txid        string
	Err         error
}

func (e *Error) Error() string {
	switch {
	case e.PaymentHash != "" && e.Txid != "":
		return fmt.Sprintf("%s: %s (hash=%s txid=%s)", e.Kind, e.Msg,
			e.PaymentHash, e.Txid)
	case e.PaymentHash != "":
		return fmt.Sprintf("%s: %s (hash=%s)", e.Kind, e.Msg,
			e.PaymentHash)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is allows errors.Is(err, &Error{Kind: KindX}) style checks against Kind
// alone, ignoring the message/context fields.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New builds an *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given kind, wrapping an underlying error.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// WithHash attaches a payment hash to an error for user-visible reporting.
func (e *Error) WithHash(paymentHash string) *Error {
	e.PaymentHash = paymentHash
	return e
}

// WithTxid attaches a txid to an error for user-visible reporting.
func (e *Error) WithTxid(txid string) *Error {
	e.Txid = txid
	return e
}
