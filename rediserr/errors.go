// Package rediserr defines the structured error taxonomy used across
// redisq: transport failures, protocol decode failures, per-submission
// write failures, and RESP error replies. It is built on
// github.com/joomcode/errorx rather than plain wrapped errors so callers
// can branch on trait (Connectivity, Decode) instead of string matching.
package rediserr

import "github.com/joomcode/errorx"

var (
	// Connectivity marks errors that are fatal to the underlying
	// transport: the connection must be torn down and every outstanding
	// sink failed with the same error.
	Connectivity = errorx.RegisterTrait("connectivity")
	// Decode marks errors that leave the RESP stream desynchronized -
	// there is no way to know where the next reply begins.
	Decode = errorx.RegisterTrait("decode")
)

var (
	// ConnectionProperty carries the *redisconn.Connection (as fmt.Stringer)
	// that produced the error.
	ConnectionProperty = errorx.RegisterProperty("connection")
	// QueryProperty carries the query, if any, that was in flight.
	QueryProperty = errorx.RegisterProperty("query")
)

var namespace = errorx.NewNamespace("redisq")

var (
	// ConfigType: NewConnection was called with an invalid Config.
	ConfigType = namespace.NewType("config")
	// DialType: TCP/UNIX connect failed.
	DialType = namespace.NewType("dial", Connectivity)
	// IOType: read or write failed on an established socket, or the
	// socket hit its deadline.
	IOType = namespace.NewType("io", Connectivity)
	// DecodeType: a reply's RESP framing was malformed.
	DecodeType = namespace.NewType("decode", Connectivity, Decode)
	// EncodeType: a query argument could not be serialized to RESP.
	EncodeType = namespace.NewType("encode")
	// ClosedType: the connection was explicitly closed via Close/context
	// cancellation.
	ClosedType = namespace.NewType("closed", Connectivity)
	// NotConnectedType: a submission arrived while no transport existed
	// and reconnection is disabled.
	NotConnectedType = namespace.NewType("not_connected", Connectivity)
	// ResultType: wraps a RESP error reply (`-ERR ...`). Never fatal -
	// delivered to the caller as an ordinary Reply rather than surfaced
	// through the error return path.
	ResultType = namespace.NewType("result")
)

// IsFatal reports whether err is fatal to the connection that produced
// it, i.e. carries the Connectivity trait.
func IsFatal(err error) bool {
	return errorx.HasTrait(err, Connectivity)
}

// WithConnection annotates err with the connection that produced it,
// unless it already carries one - the first annotation wins, so an
// error that already crossed one connection boundary keeps that
// identity. Errors that are not *errorx.Error pass through unchanged.
func WithConnection(err error, conn interface{ String() string }) error {
	if err == nil {
		return nil
	}
	xerr, ok := err.(*errorx.Error)
	if !ok {
		return err
	}
	if _, ok := xerr.Property(ConnectionProperty); ok {
		return xerr
	}
	return xerr.WithProperty(ConnectionProperty, conn.String())
}

// WithQuery annotates err with the query that was in flight.
func WithQuery(err error, query interface{}) error {
	if err == nil {
		return nil
	}
	xerr, ok := err.(*errorx.Error)
	if !ok {
		return err
	}
	return xerr.WithProperty(QueryProperty, query)
}
