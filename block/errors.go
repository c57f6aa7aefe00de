package block

import "fmt"

// ErrorCode classifies a BlockError by the error kind taxonomy in the
// subsystem's error-handling design: precondition, cryptographic,
// resource, and transition failures. Integrity failures are not errors —
// they are negative ValidationReport results (see validator.go).
type ErrorCode string

const (
	ErrUninitializedContext ErrorCode = "ERR_UNINITIALIZED_CONTEXT"
	ErrInvalidSize          ErrorCode = "ERR_INVALID_SIZE"
	ErrPayloadTooLarge      ErrorCode = "ERR_PAYLOAD_TOO_LARGE"
	ErrPlaintextTooLarge    ErrorCode = "ERR_PLAINTEXT_TOO_LARGE"
	ErrInvalidTransition    ErrorCode = "ERR_INVALID_TRANSITION"
	ErrNotFree              ErrorCode = "ERR_NOT_FREE"
	ErrNilBlock             ErrorCode = "ERR_NIL_BLOCK"
	ErrSplitTooLarge        ErrorCode = "ERR_SPLIT_TOO_LARGE"
	ErrRemainderTooSmall    ErrorCode = "ERR_REMAINDER_TOO_SMALL"
	ErrCryptoFailure        ErrorCode = "ERR_CRYPTO_FAILURE"
	ErrSerializeFailure     ErrorCode = "ERR_SERIALIZE_FAILURE"
	ErrDeserializeFailure   ErrorCode = "ERR_DESERIALIZE_FAILURE"
	ErrVersionIncompatible  ErrorCode = "ERR_VERSION_INCOMPATIBLE"
	ErrResourceFailure      ErrorCode = "ERR_RESOURCE_FAILURE"
)

// BlockError is the sole error type this subsystem returns. It never
// crosses the boundary as a panic or exception; every fallible operation
// returns (value, error) and the error, when non-nil, is always a
// *BlockError.
type BlockError struct {
	Code ErrorCode
	Msg  string
}

func (e *BlockError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func blockerr(code ErrorCode, msg string) error {
	return &BlockError{Code: code, Msg: msg}
}

func blockerrf(code ErrorCode, format string, args ...any) error {
	return &BlockError{Code: code, Msg: fmt.Sprintf(format, args...)}
}
