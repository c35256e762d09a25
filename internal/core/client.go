package core

import "time"

// Profile is the optional display identity a connection may set once
// authenticated. It never links back to a real identity.
type Profile struct {
	DisplayName string
}

// Client is one live transport session as seen by the core layer.
//
// All fields except the channels are owned by the hub goroutine and must not
// be touched by the transport once the client is registered.
type Client struct {
	// ID is the opaque session identifier assigned by the transport layer.
	ID string
	// AnonymousID is a random identifier used for display and logging,
	// deliberately independent of ID.
	AnonymousID string

	Authenticated bool
	Profile       *Profile

	// Rooms holds the codes of every room this connection belongs to.
	Rooms map[string]struct{}

	// LastActivity is refreshed on every inbound event from this connection.
	LastActivity time.Time

	Commands chan *Command
	Events   chan *Event
}

// NewClient constructs a client with initialized channels and room set.
func NewClient(id, anonymousID string) *Client {
	return &Client{
		ID:          id,
		AnonymousID: anonymousID,
		Rooms:       make(map[string]struct{}),
		Commands:    make(chan *Command, 8),
		Events:      make(chan *Event, 32),
	}
}

// send delivers an event without blocking. Slow consumers drop events; the
// transport owns any retry policy.
func (c *Client) send(event *Event) {
	select {
	case c.Events <- event:
	default:
	}
}
