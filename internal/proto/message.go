package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeAuthenticate = "authenticate"
	InboundTypeSetupProfile = "setupProfile"
	InboundTypeCreateRoom   = "createRoom"
	InboundTypeJoinRoom     = "joinRoom"
	InboundTypeLeaveRoom    = "leaveRoom"
	InboundTypeSendMessage  = "sendMessage"
	InboundTypeShareFile    = "shareFile"
	InboundTypeTyping       = "typing"

	OutboundTypeAuthenticated    = "authenticated"
	OutboundTypeProfileComplete  = "profileSetupComplete"
	OutboundTypeProfileFailed    = "profileSetupFailed"
	OutboundTypeRoomCreated      = "roomCreated"
	OutboundTypeRoomJoined       = "roomJoined"
	OutboundTypeUserJoined       = "userJoined"
	OutboundTypeUserLeft         = "userLeft"
	OutboundTypeNewMessage       = "newMessage"
	OutboundTypeMessageDelivered = "messageDelivered"
	OutboundTypeMessageFailed    = "messageSendFailed"
	OutboundTypeNewFile          = "newFile"
	OutboundTypeFileShared       = "fileShared"
	OutboundTypeFileFailed       = "fileShareFailed"
	OutboundTypeUserTyping       = "userTyping"
	OutboundTypeError            = "error"
)

// EncryptedPayload is the opaque ciphertext blob relayed between clients.
type EncryptedPayload struct {
	Encrypted Base64Bytes `json:"encrypted"`
	IV        Base64Bytes `json:"iv"`
	Algorithm string      `json:"algorithm"`
}

// FileMetadata is the cleartext descriptor of an encrypted file.
type FileMetadata struct {
	Name     string `json:"name,omitempty"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType,omitempty"`
}

// SetupProfileData sets the connection's display name.
type SetupProfileData struct {
	DisplayName string `json:"displayName"`
}

// JoinRoomData requests to join a specific room code.
type JoinRoomData struct {
	RoomCode string `json:"roomCode"`
}

// SendMessageData is an encrypted chat message from the client.
type SendMessageData struct {
	RoomID           string            `json:"roomId"`
	MessageID        string            `json:"messageId"`
	EncryptedMessage *EncryptedPayload `json:"encryptedMessage"`
}

// ShareFileData is an encrypted file share from the client.
type ShareFileData struct {
	RoomID        string            `json:"roomId"`
	FileID        string            `json:"fileId"`
	EncryptedFile *EncryptedPayload `json:"encryptedFile"`
	FileMetadata  *FileMetadata     `json:"fileMetadata"`
}

// TypingData is a typing indicator from the client.
type TypingData struct {
	RoomID   string `json:"roomId"`
	IsTyping bool   `json:"isTyping"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg,omitempty"`
}

// AuthenticatedData acks a successful authenticate.
type AuthenticatedData struct {
	Success      bool   `json:"success"`
	AnonymousID  string `json:"anonymousId"`
	SessionToken string `json:"sessionToken,omitempty"`
}

// ProfileInfo is the echo of an accepted profile.
type ProfileInfo struct {
	DisplayName string `json:"displayName"`
}

// ProfileCompleteData acks a successful profile setup.
type ProfileCompleteData struct {
	Success bool         `json:"success"`
	Profile *ProfileInfo `json:"profile"`
}

// ProfileFailedData reports a profile validation failure.
type ProfileFailedData struct {
	Error string `json:"error"`
}

// RoomInfo describes a room as seen by a member.
type RoomInfo struct {
	ID           string `json:"id"`
	Participants int    `json:"participants"`
}

// RoomCreatedData acks room creation to the creator.
type RoomCreatedData struct {
	Success bool     `json:"success"`
	Room    RoomInfo `json:"room"`
}

// RoomJoinedData acks a join to the joiner.
type RoomJoinedData struct {
	Success bool     `json:"success"`
	Room    RoomInfo `json:"room"`
}

// UserJoinedData notifies existing members about a join.
type UserJoinedData struct {
	RoomID       string `json:"roomId"`
	User         string `json:"user"`
	Participants int    `json:"participants"`
}

// UserLeftData notifies remaining members about a departure.
type UserLeftData struct {
	RoomID       string `json:"roomId"`
	User         string `json:"user"`
	Participants int    `json:"participants"`
}

// NewMessageData relays an encrypted message to room members.
type NewMessageData struct {
	MessageID        string            `json:"messageId"`
	RoomID           string            `json:"roomId"`
	Sender           string            `json:"sender"`
	EncryptedPayload *EncryptedPayload `json:"encryptedPayload"`
	Timestamp        int64             `json:"timestamp"`
}

// MessageDeliveredData acks a relayed message to its sender.
type MessageDeliveredData struct {
	MessageID string `json:"messageId"`
	Delivered bool   `json:"delivered"`
}

// MessageFailedData reports a rejected message to its sender.
type MessageFailedData struct {
	Error     string `json:"error"`
	MessageID string `json:"messageId,omitempty"`
}

// NewFileData relays an encrypted file to room members.
type NewFileData struct {
	FileID        string            `json:"fileId"`
	RoomID        string            `json:"roomId"`
	Sender        string            `json:"sender"`
	EncryptedFile *EncryptedPayload `json:"encryptedFile"`
	FileMetadata  *FileMetadata     `json:"fileMetadata"`
	Timestamp     int64             `json:"timestamp"`
}

// FileSharedData acks a relayed file to its sender.
type FileSharedData struct {
	FileID string `json:"fileId"`
	Shared bool   `json:"shared"`
}

// FileFailedData reports a rejected file share to its sender.
type FileFailedData struct {
	Error  string `json:"error"`
	FileID string `json:"fileId,omitempty"`
}

// UserTypingData relays a typing indicator to other room members.
type UserTypingData struct {
	RoomID   string `json:"roomId"`
	User     string `json:"user"`
	IsTyping bool   `json:"isTyping"`
}
