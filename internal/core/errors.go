package core

import "errors"

// Error codes for domain errors surfaced to clients.
const (
	ErrCodeNotAuthenticated = "not_authenticated"
	ErrCodeInvalidProfile   = "invalid_profile"
	ErrCodeRoomNotFound     = "room_not_found"
	ErrCodeInvalidEnvelope  = "invalid_envelope"
	ErrCodeFileTooLarge     = "file_too_large"
	ErrCodeNotAMember       = "not_a_member"
	ErrCodeBadRequest       = "bad_request"
	ErrCodeInternal         = "internal"
)

// ErrUnknownConn is returned for operations on a connection id that is not
// in the registry.
var ErrUnknownConn = errors.New("unknown connection")

// RelayError wraps a code and human-readable message.
type RelayError struct {
	Code    string
	Message string
}

func (e *RelayError) Error() string {
	return e.Message
}

func relayError(code, msg string) *RelayError {
	return &RelayError{Code: code, Message: msg}
}
