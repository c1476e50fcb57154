// Package queryerr defines the typed error kinds the query core returns to
// callers: a stable code plus a human-readable message, with an optional
// wrapped cause.
package queryerr

import "fmt"

// Code names one of the error kinds the query core's public operations can
// return.
type Code string

const (
	// TooManyTxs means a script-hash scan exceeded status.FundingTxnLimit.
	TooManyTxs Code = "TOO_MANY_TXS"
	// NotIndexed means a txid was requested that is neither in the store
	// nor in the mempool when one of the two was required.
	NotIndexed Code = "NOT_INDEXED"
	// MissingHeader means a header lookup by height or hash failed,
	// typically indicating a reorg in flight.
	MissingHeader Code = "MISSING_HEADER"
	// MissingBlockMeta means the BlockMeta row for a hash is absent.
	MissingBlockMeta Code = "MISSING_BLOCK_META"
	// MissingBlockTxids means the BlockTxids row for a hash is absent.
	MissingBlockTxids Code = "MISSING_BLOCK_TXIDS"
	// DaemonError means the upstream node daemon returned an error.
	DaemonError Code = "DAEMON_ERROR"
	// Corruption means an index invariant was violated: multiple
	// spenders for one outpoint, a malformed persisted row, or similar.
	// Fatal at the request level; the process continues.
	Corruption Code = "CORRUPTION"
)

// Error is the typed error value every query-core operation returns on
// failure. It wraps an optional underlying cause.
type Error struct {
	Code Code
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Msg == "" && e.Err == nil:
		return string(e.Code)
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Code, e.Msg)
	case e.Msg == "":
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with no underlying cause.
func New(code Code, msg string) error {
	return &Error{Code: code, Msg: msg}
}

// Wrap builds an Error that carries an underlying cause.
func Wrap(code Code, msg string, err error) error {
	return &Error{Code: code, Msg: msg, Err: err}
}

// Is reports whether err is a *Error with the given code, so callers can do
//
//	if queryerr.Is(err, queryerr.NotIndexed) { ... }
func Is(err error, code Code) bool {
	var e *Error
	for err != nil {
		if qe, ok := err.(*Error); ok {
			e = qe
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return e != nil && e.Code == code
}
