package obwire

import (
	"github.com/hugozhu/obclient/errors"
)

// Error codes.
const (
	// CodeTruncated indicates fewer bytes were available than a fixed-width field requires.
	CodeTruncated errors.ErrCode = iota + 1
	// CodeMalformedPacket indicates a framing or encoding invariant was violated.
	CodeMalformedPacket
	// CodeInvalidLength indicates an inbound packet declared an impossible length.
	CodeInvalidLength
	// CodeNotConnected indicates an operation was issued on a connection that is not ready.
	CodeNotConnected
	// CodeAuthFailed indicates the server rejected the startup exchange.
	CodeAuthFailed
	// CodeUnexpectedPacket indicates the startup reply carried an unexpected tag.
	CodeUnexpectedPacket
	// CodeDrainLimit indicates ready-for-query never arrived within the drain bound.
	CodeDrainLimit
)

// Global error instances.
var (
	ErrTruncated        = errors.ClassCodec.New(CodeTruncated, "truncated input: need %d bytes, %d remain")
	ErrMalformedPacket  = errors.ClassCodec.New(CodeMalformedPacket, "malformed packet: %s")
	ErrInvalidLength    = errors.ClassProtocol.New(CodeInvalidLength, "invalid packet length %d")
	ErrNotConnected     = errors.ClassProtocol.New(CodeNotConnected, "connection is not ready")
	ErrAuthFailed       = errors.ClassHandshake.New(CodeAuthFailed, "authentication failed with status %d")
	ErrUnexpectedPacket = errors.ClassHandshake.New(CodeUnexpectedPacket, "unexpected packet tag '%c' during startup")
	ErrDrainLimit       = errors.ClassHandshake.New(CodeDrainLimit, "no ready-for-query within %d packets")
)
