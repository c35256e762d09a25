package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandAuthenticate marks the transport session as ready.
	CommandAuthenticate CommandKind = iota
	// CommandSetupProfile sets the connection's display name.
	CommandSetupProfile
	// CommandCreateRoom creates a room and joins the creator to it.
	CommandCreateRoom
	// CommandJoinRoom subscribes the connection to a room code.
	CommandJoinRoom
	// CommandLeaveRoom unsubscribes the connection from a room.
	CommandLeaveRoom
	// CommandSendMessage relays an encrypted message to room members.
	CommandSendMessage
	// CommandShareFile relays an encrypted file to room members.
	CommandShareFile
	// CommandTyping relays a typing indicator to room members.
	CommandTyping
)

// Command represents an action requested by a connection.
type Command struct {
	Kind        CommandKind
	Room        string
	DisplayName string
	IsTyping    bool
	Message     *MessageEnvelope
	File        *FileEnvelope
}
