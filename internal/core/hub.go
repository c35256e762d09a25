package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// TokenIssuer mints the opaque session token returned in the authenticate
// ack. The hub never inspects tokens.
type TokenIssuer interface {
	Issue(anonymousID string) (string, error)
}

// HubConfig tunes the dispatcher and its reaper.
type HubConfig struct {
	// ConnectionIdleTTL evicts connections idle for longer than this.
	ConnectionIdleTTL time.Duration
	// RoomIdleTTL evicts rooms idle for longer than this.
	RoomIdleTTL time.Duration
	// ReapInterval is the sweep period.
	ReapInterval time.Duration
	// MaxFileBytes caps fileMetadata.size on shared files.
	MaxFileBytes int64
	// AllowImplicitJoin makes joinRoom of an unknown code create the room
	// instead of rejecting with room_not_found.
	AllowImplicitJoin bool
}

func (c *HubConfig) applyDefaults() {
	if c.ConnectionIdleTTL <= 0 {
		c.ConnectionIdleTTL = 30 * time.Minute
	}
	if c.RoomIdleTTL <= 0 {
		c.RoomIdleTTL = 60 * time.Minute
	}
	if c.ReapInterval <= 0 {
		c.ReapInterval = 5 * time.Minute
	}
	if c.MaxFileBytes <= 0 {
		c.MaxFileBytes = DefaultMaxFileBytes
	}
}

// Stats is a point-in-time snapshot of registry sizes.
type Stats struct {
	Connections int `json:"connections"`
	Rooms       int `json:"rooms"`
}

type clientCommand struct {
	client *Client
	cmd    *Command
}

// Hub is the relay dispatcher. It owns both registries and processes every
// inbound event to completion on a single goroutine, so registry operations
// never interleave and the membership invariant cannot be torn. The reaper
// runs on the same goroutine via a ticker in Run's select.
type Hub struct {
	cfg    HubConfig
	tokens TokenIssuer
	log    *zerolog.Logger

	connections *ConnectionRegistry
	rooms       *RoomRegistry

	register   chan *Client
	unregister chan *Client
	commands   chan clientCommand
	statsReq   chan chan Stats

	now func() time.Time
}

// NewHub creates the dispatcher. tokens may be nil, in which case the
// authenticate ack carries no session token.
func NewHub(cfg HubConfig, tokens TokenIssuer, logger *zerolog.Logger) *Hub {
	cfg.applyDefaults()
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		cfg:         cfg,
		tokens:      tokens,
		log:         logger,
		connections: NewConnectionRegistry(),
		rooms:       NewRoomRegistry(),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		commands:    make(chan clientCommand),
		statsReq:    make(chan chan Stats),
		now:         time.Now,
	}
}

// RegisterClient hands a new transport session to the hub and starts pumping
// its commands into the dispatch loop. The pump exits when the transport
// closes the client's Commands channel.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
	go func() {
		for cmd := range c.Commands {
			h.commands <- clientCommand{client: c, cmd: cmd}
		}
	}()
}

// UnregisterClient removes a disconnected session, cleaning up its room
// membership and notifying remaining members.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Stats answers through the hub goroutine so the registries are never read
// concurrently with event processing.
func (h *Hub) Stats(ctx context.Context) (Stats, error) {
	reply := make(chan Stats, 1)
	select {
	case h.statsReq <- reply:
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
}

// Run processes events until ctx is cancelled. Exactly one Run per hub.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.cfg.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case c := <-h.register:
			h.attach(c)
		case c := <-h.unregister:
			h.detach(c)
		case cc := <-h.commands:
			h.dispatch(cc.client, cc.cmd)
		case reply := <-h.statsReq:
			reply <- Stats{Connections: h.connections.Len(), Rooms: h.rooms.Len()}
		case now := <-ticker.C:
			h.reap(now)
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) attach(c *Client) {
	if !h.connections.Add(c, h.now()) {
		h.log.Warn().Str("conn_id", c.ID).Msg("duplicate connection id ignored")
		return
	}
	h.log.Debug().Str("conn_id", c.ID).Str("anon_id", c.AnonymousID).Msg("connection registered")
}

func (h *Hub) detach(c *Client) {
	removed := h.connections.Remove(c.ID)
	if removed == nil {
		// Already reaped; the transport's disconnect raced the sweep.
		return
	}
	for _, code := range roomCodes(removed) {
		room, wasMember := h.rooms.Leave(code, removed)
		if wasMember && room != nil && !room.Empty() {
			room.Broadcast(&Event{
				Kind:         EventUserLeft,
				Room:         code,
				User:         removed.AnonymousID,
				Participants: room.Participants(),
			}, removed.ID)
		}
	}
	close(removed.Events)
	h.log.Debug().Str("conn_id", c.ID).Msg("connection removed")
}

// dispatch routes one inbound command. Commands may trail in from a pump
// after their connection was removed; those are dropped here.
func (h *Hub) dispatch(c *Client, cmd *Command) {
	if h.connections.Get(c.ID) != c {
		return
	}
	now := h.now()
	h.connections.Touch(c.ID, now)

	switch cmd.Kind {
	case CommandAuthenticate:
		h.handleAuthenticate(c, now)
	case CommandSetupProfile:
		h.handleSetupProfile(c, cmd, now)
	case CommandCreateRoom:
		h.handleCreateRoom(c, now)
	case CommandJoinRoom:
		h.handleJoinRoom(c, cmd, now)
	case CommandLeaveRoom:
		h.handleLeaveRoom(c, cmd)
	case CommandSendMessage:
		h.handleSendMessage(c, cmd, now)
	case CommandShareFile:
		h.handleShareFile(c, cmd, now)
	case CommandTyping:
		h.handleTyping(c, cmd)
	default:
		c.send(&Event{Kind: EventError, Error: relayError(ErrCodeBadRequest, "unknown command")})
	}
}

func (h *Hub) handleAuthenticate(c *Client, now time.Time) {
	if _, err := h.connections.Authenticate(c.ID, now); err != nil {
		c.send(&Event{Kind: EventError, Error: relayError(ErrCodeInternal, "unknown connection")})
		return
	}
	var token string
	if h.tokens != nil {
		issued, err := h.tokens.Issue(c.AnonymousID)
		if err != nil {
			h.log.Error().Err(err).Str("conn_id", c.ID).Msg("failed to issue session token")
			c.send(&Event{Kind: EventError, Error: relayError(ErrCodeInternal, "could not issue session token")})
			return
		}
		token = issued
	}
	c.send(&Event{
		Kind:         EventAuthenticated,
		AnonymousID:  c.AnonymousID,
		SessionToken: token,
	})
}

func (h *Hub) handleSetupProfile(c *Client, cmd *Command, now time.Time) {
	profile, rerr := h.connections.SetProfile(c.ID, cmd.DisplayName, now)
	if rerr != nil {
		c.send(&Event{Kind: EventProfileFailed, Error: rerr})
		return
	}
	c.send(&Event{Kind: EventProfileComplete, Profile: profile})
}

func (h *Hub) handleCreateRoom(c *Client, now time.Time) {
	if !c.Authenticated {
		c.send(&Event{Kind: EventError, Error: relayError(ErrCodeNotAuthenticated, "authenticate first")})
		return
	}
	room, err := h.rooms.Create(c, now)
	if err != nil {
		h.log.Error().Err(err).Msg("room creation failed")
		c.send(&Event{Kind: EventError, Error: relayError(ErrCodeInternal, "could not create room")})
		return
	}
	h.log.Info().Str("room", room.ID).Str("anon_id", c.AnonymousID).Msg("room created")
	c.send(&Event{Kind: EventRoomCreated, Room: room.ID, Participants: room.Participants()})
}

func (h *Hub) handleJoinRoom(c *Client, cmd *Command, now time.Time) {
	if !c.Authenticated {
		c.send(&Event{Kind: EventError, Error: relayError(ErrCodeNotAuthenticated, "authenticate first")})
		return
	}
	if cmd.Room == "" {
		c.send(&Event{Kind: EventError, Error: relayError(ErrCodeBadRequest, "room code is required")})
		return
	}
	existing := h.rooms.Get(cmd.Room)
	if existing == nil && !h.cfg.AllowImplicitJoin {
		c.send(&Event{Kind: EventError, Room: cmd.Room, Error: relayError(ErrCodeRoomNotFound, "no such room")})
		return
	}
	alreadyMember := existing != nil && existing.Has(c.ID)

	room := h.rooms.Join(cmd.Room, c, now)
	c.send(&Event{Kind: EventRoomJoined, Room: room.ID, Participants: room.Participants()})
	if !alreadyMember {
		room.Broadcast(&Event{
			Kind:         EventUserJoined,
			Room:         room.ID,
			User:         c.AnonymousID,
			Participants: room.Participants(),
		}, c.ID)
	}
}

func (h *Hub) handleLeaveRoom(c *Client, cmd *Command) {
	room, wasMember := h.rooms.Leave(cmd.Room, c)
	if !wasMember {
		c.send(&Event{Kind: EventError, Room: cmd.Room, Error: relayError(ErrCodeRoomNotFound, "not in that room")})
		return
	}
	if room != nil && !room.Empty() {
		room.Broadcast(&Event{
			Kind:         EventUserLeft,
			Room:         cmd.Room,
			User:         c.AnonymousID,
			Participants: room.Participants(),
		}, c.ID)
	}
}

func (h *Hub) handleSendMessage(c *Client, cmd *Command, now time.Time) {
	env := cmd.Message
	if env == nil {
		c.send(&Event{Kind: EventMessageFailed, Error: relayError(ErrCodeInvalidEnvelope, "missing envelope")})
		return
	}
	if !c.Authenticated {
		c.send(&Event{Kind: EventMessageFailed, MessageID: env.MessageID, Error: relayError(ErrCodeNotAuthenticated, "authenticate first")})
		return
	}
	if env.RoomID == "" {
		c.send(&Event{Kind: EventMessageFailed, MessageID: env.MessageID, Error: relayError(ErrCodeInvalidEnvelope, "missing room id")})
		return
	}
	// Membership is checked against the connection's own room set, never the
	// payload's claim, so a connection cannot inject into rooms it never
	// joined.
	if _, member := c.Rooms[env.RoomID]; !member {
		c.send(&Event{Kind: EventMessageFailed, MessageID: env.MessageID, Error: relayError(ErrCodeNotAMember, "not a member of that room")})
		return
	}
	if rerr := ValidateMessageEnvelope(env); rerr != nil {
		c.send(&Event{Kind: EventMessageFailed, MessageID: env.MessageID, Error: rerr})
		return
	}

	env.Sender = c.AnonymousID
	env.Timestamp = now
	h.rooms.Touch(env.RoomID, now)
	if room := h.rooms.Get(env.RoomID); room != nil {
		room.Broadcast(&Event{Kind: EventNewMessage, Room: env.RoomID, Message: env}, c.ID)
	}
	c.send(&Event{Kind: EventMessageDelivered, MessageID: env.MessageID})
}

func (h *Hub) handleShareFile(c *Client, cmd *Command, now time.Time) {
	env := cmd.File
	if env == nil {
		c.send(&Event{Kind: EventFileFailed, Error: relayError(ErrCodeInvalidEnvelope, "missing envelope")})
		return
	}
	if !c.Authenticated {
		c.send(&Event{Kind: EventFileFailed, FileID: env.FileID, Error: relayError(ErrCodeNotAuthenticated, "authenticate first")})
		return
	}
	if env.RoomID == "" {
		c.send(&Event{Kind: EventFileFailed, FileID: env.FileID, Error: relayError(ErrCodeInvalidEnvelope, "missing room id")})
		return
	}
	if _, member := c.Rooms[env.RoomID]; !member {
		c.send(&Event{Kind: EventFileFailed, FileID: env.FileID, Error: relayError(ErrCodeNotAMember, "not a member of that room")})
		return
	}
	if rerr := ValidateFileEnvelope(env, h.cfg.MaxFileBytes); rerr != nil {
		c.send(&Event{Kind: EventFileFailed, FileID: env.FileID, Error: rerr})
		return
	}

	env.Sender = c.AnonymousID
	env.Timestamp = now
	h.rooms.Touch(env.RoomID, now)
	if room := h.rooms.Get(env.RoomID); room != nil {
		room.Broadcast(&Event{Kind: EventNewFile, Room: env.RoomID, File: env}, c.ID)
	}
	c.send(&Event{Kind: EventFileShared, FileID: env.FileID})
}

func (h *Hub) handleTyping(c *Client, cmd *Command) {
	// Typing carries no state mutation and does not refresh room activity.
	if _, member := c.Rooms[cmd.Room]; !member {
		return
	}
	if room := h.rooms.Get(cmd.Room); room != nil {
		room.Broadcast(&Event{
			Kind:     EventUserTyping,
			Room:     cmd.Room,
			User:     c.AnonymousID,
			IsTyping: cmd.IsTyping,
		}, c.ID)
	}
}

// reap sweeps both registries. It runs on the dispatch goroutine, so no
// event processing can interleave with the sweep. Reaped entities get no
// broadcast: an evicted connection's transport is detached by closing its
// event channel, and evicted rooms have nobody attached who cleanly cares.
func (h *Hub) reap(now time.Time) {
	staleConns := h.connections.EvictStale(now, h.cfg.ConnectionIdleTTL)
	for _, c := range staleConns {
		for _, code := range roomCodes(c) {
			h.rooms.Leave(code, c)
		}
		close(c.Events)
	}

	staleRooms := h.rooms.EvictStale(now, h.cfg.RoomIdleTTL)

	if len(staleConns) > 0 || len(staleRooms) > 0 {
		h.log.Info().
			Int("connections", len(staleConns)).
			Int("rooms", len(staleRooms)).
			Msg("reaped stale state")
	}
}

// roomCodes copies the membership keys so Leave can mutate the set while we
// iterate.
func roomCodes(c *Client) []string {
	codes := make([]string, 0, len(c.Rooms))
	for code := range c.Rooms {
		codes = append(codes, code)
	}
	return codes
}
