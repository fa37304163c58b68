package puffin

import "fmt"

// Kind is the programmatic discriminant carried by every [Error]. Callers
// should branch on Kind; the message is for logs, not control flow.
type Kind uint8

// Error kinds, grouped the way result.h groups ErrorCode.
const (
	KindInvalidArgument Kind = iota
	KindInvalidState

	KindInvalidMagic
	KindInvalidFooterSize
	KindInvalidFooterPayload
	KindInvalidFileLength

	KindStreamNotInitialized
	KindStreamSeekError
	KindStreamReadError
	KindStreamWriteError
	KindIncompleteRead
	KindIncompleteWrite

	KindUnknownCodec
	KindCompressionError
	KindDecompressionError

	KindUnimplemented
	KindInternalError
)

var kindNames = [...]string{
	"InvalidArgument",
	"InvalidState",
	"InvalidMagic",
	"InvalidFooterSize",
	"InvalidFooterPayload",
	"InvalidFileLength",
	"StreamNotInitialized",
	"StreamSeekError",
	"StreamReadError",
	"StreamWriteError",
	"IncompleteRead",
	"IncompleteWrite",
	"UnknownCodec",
	"CompressionError",
	"DecompressionError",
	"Unimplemented",
	"InternalError",
}

// String returns the kind's name, e.g. "InvalidMagic".
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Error is returned by every fallible operation in this package.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	switch {
	case e.Message == "" && e.Cause == nil:
		return e.Kind.String()
	case e.Cause == nil:
		return e.Message
	case e.Message == "":
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	default:
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a sentinel *Error with the same Kind,
// regardless of message or wrapped cause. This lets callers write
// errors.Is(err, puffin.ErrInvalidMagic) without caring about wrapping.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

func newErr(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapErr(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Sentinel errors for errors.Is comparisons against a Kind. These carry no
// message. Failures with details to report are built with newErr/wrapErr;
// ErrInvalidState (writer) and ErrStreamNotInitialized (reader) are also
// returned as-is for operations called in the wrong state.
var (
	ErrInvalidArgument      = &Error{Kind: KindInvalidArgument}
	ErrInvalidState         = &Error{Kind: KindInvalidState}
	ErrInvalidMagic         = &Error{Kind: KindInvalidMagic}
	ErrInvalidFooterSize    = &Error{Kind: KindInvalidFooterSize}
	ErrInvalidFooterPayload = &Error{Kind: KindInvalidFooterPayload}
	ErrInvalidFileLength    = &Error{Kind: KindInvalidFileLength}
	ErrStreamNotInitialized = &Error{Kind: KindStreamNotInitialized}
	ErrStreamSeekError      = &Error{Kind: KindStreamSeekError}
	ErrStreamReadError      = &Error{Kind: KindStreamReadError}
	ErrStreamWriteError     = &Error{Kind: KindStreamWriteError}
	ErrIncompleteRead       = &Error{Kind: KindIncompleteRead}
	ErrIncompleteWrite      = &Error{Kind: KindIncompleteWrite}
	ErrUnknownCodec         = &Error{Kind: KindUnknownCodec}
	ErrCompressionError     = &Error{Kind: KindCompressionError}
	ErrDecompressionError   = &Error{Kind: KindDecompressionError}
	ErrUnimplemented        = &Error{Kind: KindUnimplemented}
	ErrInternalError        = &Error{Kind: KindInternalError}
)
