package core

import "time"

// AlgorithmAESGCM is the only cipher identifier the relay accepts.
// The server never decrypts; the identifier is checked purely so that
// malformed or downgraded envelopes are rejected before fan-out.
const AlgorithmAESGCM = "AES-256-GCM"

const (
	// minCiphertextBytes is the smallest plausible ciphertext+tag for AES-GCM.
	minCiphertextBytes = 16
	// ivBytes is the GCM nonce length the clients agreed on.
	ivBytes = 12
	// DefaultMaxFileBytes caps encrypted file shares at 10 MiB.
	DefaultMaxFileBytes = 10 * 1024 * 1024
)

// EncryptedPayload is the opaque ciphertext blob produced by the client-side
// crypto layer. The core validates shape only, never content.
type EncryptedPayload struct {
	Encrypted []byte
	IV        []byte
	Algorithm string
}

// MessageEnvelope carries one encrypted chat message through the relay.
// Envelopes are transient: relayed, never stored.
type MessageEnvelope struct {
	MessageID string
	RoomID    string
	Sender    string
	Payload   *EncryptedPayload
	Timestamp time.Time
}

// FileMetadata is the cleartext descriptor attached to an encrypted file.
type FileMetadata struct {
	Name     string
	Size     int64
	MimeType string
}

// FileEnvelope carries one encrypted file share through the relay.
type FileEnvelope struct {
	FileID    string
	RoomID    string
	Sender    string
	Data      *EncryptedPayload
	Metadata  *FileMetadata
	Timestamp time.Time
}

func validPayload(p *EncryptedPayload) bool {
	if p == nil {
		return false
	}
	if len(p.Encrypted) < minCiphertextBytes {
		return false
	}
	if len(p.IV) != ivBytes {
		return false
	}
	return p.Algorithm == AlgorithmAESGCM
}

// ValidateMessageEnvelope checks the shape contract of an inbound encrypted
// message. Returns nil when the envelope may be relayed.
func ValidateMessageEnvelope(env *MessageEnvelope) *RelayError {
	if env == nil || env.RoomID == "" {
		return relayError(ErrCodeInvalidEnvelope, "missing room id")
	}
	if !validPayload(env.Payload) {
		return relayError(ErrCodeInvalidEnvelope, "malformed encrypted payload")
	}
	return nil
}

// ValidateFileEnvelope checks the shape contract of an inbound encrypted file
// share and enforces the size cap. maxBytes <= 0 falls back to the default.
func ValidateFileEnvelope(env *FileEnvelope, maxBytes int64) *RelayError {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileBytes
	}
	if env == nil || env.RoomID == "" {
		return relayError(ErrCodeInvalidEnvelope, "missing room id")
	}
	if env.FileID == "" {
		return relayError(ErrCodeInvalidEnvelope, "missing file id")
	}
	if env.Metadata == nil {
		return relayError(ErrCodeInvalidEnvelope, "missing file metadata")
	}
	if env.Metadata.Size > maxBytes {
		return relayError(ErrCodeFileTooLarge, "file exceeds size limit")
	}
	if !validPayload(env.Data) {
		return relayError(ErrCodeInvalidEnvelope, "malformed encrypted payload")
	}
	return nil
}
