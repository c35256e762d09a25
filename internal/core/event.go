package core

// EventKind is a notification the core emits to connections.
type EventKind int

const (
	// EventAuthenticated acks a successful authenticate, sender only.
	EventAuthenticated EventKind = iota
	// EventProfileComplete acks a successful profile setup, sender only.
	EventProfileComplete
	// EventProfileFailed reports a profile validation failure, sender only.
	EventProfileFailed
	// EventRoomCreated delivers the fresh room info to its creator.
	EventRoomCreated
	// EventRoomJoined delivers room info to a connection that joined.
	EventRoomJoined
	// EventUserJoined tells existing members someone joined their room.
	EventUserJoined
	// EventUserLeft tells remaining members someone left their room.
	EventUserLeft
	// EventNewMessage relays an encrypted message to other room members.
	EventNewMessage
	// EventMessageDelivered acks a relayed message, sender only.
	EventMessageDelivered
	// EventMessageFailed reports a rejected message, sender only.
	EventMessageFailed
	// EventNewFile relays an encrypted file to other room members.
	EventNewFile
	// EventFileShared acks a relayed file, sender only.
	EventFileShared
	// EventFileFailed reports a rejected file share, sender only.
	EventFileFailed
	// EventUserTyping relays a typing indicator to other room members.
	EventUserTyping
	// EventError notifies a connection about a domain error.
	EventError
)

// Event is sent to connections to describe what happened in the system.
type Event struct {
	Kind         EventKind
	Room         string
	User         string
	Participants int
	IsTyping     bool
	SessionToken string
	AnonymousID  string
	Profile      *Profile
	Message      *MessageEnvelope
	File         *FileEnvelope
	MessageID    string
	FileID       string
	Error        *RelayError
}
