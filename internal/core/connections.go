package core

import (
	"strings"
	"time"
	"unicode/utf8"
)

// maxDisplayNameLen bounds profile display names after trimming.
const maxDisplayNameLen = 50

// ConnectionRegistry has exclusive ownership of the mapping from connection
// id to live session state. It is owned by the hub goroutine: every mutation
// runs to completion inside one event cycle, so no locking is needed or
// wanted here.
type ConnectionRegistry struct {
	clients map[string]*Client
}

// NewConnectionRegistry builds an empty registry.
func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{clients: make(map[string]*Client)}
}

// Add inserts a freshly connected client. Returns false without touching the
// registry if the id is already present, which should not occur under normal
// transport semantics.
func (r *ConnectionRegistry) Add(c *Client, now time.Time) bool {
	if _, exists := r.clients[c.ID]; exists {
		return false
	}
	c.Authenticated = false
	c.LastActivity = now
	r.clients[c.ID] = c
	return true
}

// Get returns the client for id, or nil.
func (r *ConnectionRegistry) Get(id string) *Client {
	return r.clients[id]
}

// Authenticate marks the session ready and refreshes activity.
func (r *ConnectionRegistry) Authenticate(id string, now time.Time) (*Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, ErrUnknownConn
	}
	c.Authenticated = true
	c.LastActivity = now
	return c, nil
}

// SetProfile validates and sets the display name. A repeat call overwrites
// the prior profile.
func (r *ConnectionRegistry) SetProfile(id, displayName string, now time.Time) (*Profile, *RelayError) {
	c, ok := r.clients[id]
	if !ok {
		return nil, relayError(ErrCodeInternal, "unknown connection")
	}
	if !c.Authenticated {
		return nil, relayError(ErrCodeNotAuthenticated, "authenticate before setting a profile")
	}
	name := strings.TrimSpace(displayName)
	if name == "" || utf8.RuneCountInString(name) > maxDisplayNameLen {
		return nil, relayError(ErrCodeInvalidProfile, "display name must be 1-50 characters")
	}
	c.Profile = &Profile{DisplayName: name}
	c.LastActivity = now
	return c.Profile, nil
}

// Touch refreshes the activity timestamp for id, if present.
func (r *ConnectionRegistry) Touch(id string, now time.Time) {
	if c, ok := r.clients[id]; ok {
		c.LastActivity = now
	}
}

// Remove deletes and returns the client, or nil if absent.
func (r *ConnectionRegistry) Remove(id string) *Client {
	c, ok := r.clients[id]
	if !ok {
		return nil
	}
	delete(r.clients, id)
	return c
}

// EvictStale removes every client idle for longer than maxIdle and returns
// them so the caller can clean up room membership and detach transports.
func (r *ConnectionRegistry) EvictStale(now time.Time, maxIdle time.Duration) []*Client {
	var evicted []*Client
	for id, c := range r.clients {
		if now.Sub(c.LastActivity) > maxIdle {
			delete(r.clients, id)
			evicted = append(evicted, c)
		}
	}
	return evicted
}

// Len reports the number of live connections.
func (r *ConnectionRegistry) Len() int {
	return len(r.clients)
}
