package core

import (
	"crypto/rand"
	"errors"
	"time"
)

const (
	roomCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	roomCodeLen      = 8
	// roomCodeRetries bounds regeneration on code collision so Create can
	// never spin.
	roomCodeRetries = 5
)

var errCodeSpaceExhausted = errors.New("could not generate a unique room code")

// Room groups the connections subscribed to one short-lived code.
type Room struct {
	ID           string
	LastActivity time.Time

	participants map[string]*Client
}

func newRoom(id string, now time.Time) *Room {
	return &Room{
		ID:           id,
		LastActivity: now,
		participants: make(map[string]*Client),
	}
}

// Broadcast sends an event to every member except exceptID. Empty exceptID
// reaches everyone.
func (r *Room) Broadcast(event *Event, exceptID string) {
	for id, member := range r.participants {
		if id == exceptID {
			continue
		}
		member.send(event)
	}
}

// Participants reports the current member count.
func (r *Room) Participants() int {
	return len(r.participants)
}

// Has reports whether the connection id is a member.
func (r *Room) Has(connID string) bool {
	_, ok := r.participants[connID]
	return ok
}

// Empty returns true if no connections remain in the room.
func (r *Room) Empty() bool {
	return len(r.participants) == 0
}

// RoomRegistry has exclusive ownership of room state. Like the connection
// registry it is owned by the hub goroutine and holds no locks.
//
// Membership is kept mutually consistent with Client.Rooms: a connection id
// is in a room's participants iff the room's code is in the client's room
// set. Join and Leave update both sides in the same call.
type RoomRegistry struct {
	rooms map[string]*Room
}

// NewRoomRegistry builds an empty registry.
func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[string]*Room)}
}

// Get returns the room for code, or nil.
func (r *RoomRegistry) Get(code string) *Room {
	return r.rooms[code]
}

// Create generates a fresh code, inserts a room with the creator as sole
// participant, and returns it.
func (r *RoomRegistry) Create(creator *Client, now time.Time) (*Room, error) {
	code, err := r.newCode()
	if err != nil {
		return nil, err
	}
	room := newRoom(code, now)
	room.participants[creator.ID] = creator
	creator.Rooms[code] = struct{}{}
	r.rooms[code] = room
	return room, nil
}

// Join adds the connection to the room for code, creating the room if the
// code is unknown. Refreshes the room's activity.
func (r *RoomRegistry) Join(code string, c *Client, now time.Time) *Room {
	room, ok := r.rooms[code]
	if !ok {
		room = newRoom(code, now)
		r.rooms[code] = room
	}
	room.participants[c.ID] = c
	c.Rooms[code] = struct{}{}
	room.LastActivity = now
	return room
}

// Leave removes the connection from the room. An emptied room is deleted
// immediately rather than waiting for the reaper. Departures do not refresh
// activity; only positive actions do. Returns the room (nil if the code is
// unknown) and whether the connection was a member.
func (r *RoomRegistry) Leave(code string, c *Client) (*Room, bool) {
	room, ok := r.rooms[code]
	if !ok {
		delete(c.Rooms, code)
		return nil, false
	}
	if _, member := room.participants[c.ID]; !member {
		delete(c.Rooms, code)
		return room, false
	}
	delete(room.participants, c.ID)
	delete(c.Rooms, code)
	if room.Empty() {
		delete(r.rooms, code)
	}
	return room, true
}

// Touch refreshes a room's activity; called on message and file relays, not
// on typing indicators.
func (r *RoomRegistry) Touch(code string, now time.Time) {
	if room, ok := r.rooms[code]; ok {
		room.LastActivity = now
	}
}

// EvictStale removes every room that is empty or idle for longer than
// maxIdle, returning the evicted rooms. Members of an evicted room (stale
// but non-empty) keep their transport; the caller detaches them.
func (r *RoomRegistry) EvictStale(now time.Time, maxIdle time.Duration) []*Room {
	var evicted []*Room
	for code, room := range r.rooms {
		if room.Empty() || now.Sub(room.LastActivity) > maxIdle {
			delete(r.rooms, code)
			for _, member := range room.participants {
				delete(member.Rooms, code)
			}
			evicted = append(evicted, room)
		}
	}
	return evicted
}

// Len reports the number of live rooms.
func (r *RoomRegistry) Len() int {
	return len(r.rooms)
}

func (r *RoomRegistry) newCode() (string, error) {
	for attempt := 0; attempt < roomCodeRetries; attempt++ {
		code, err := randomCode(roomCodeLen)
		if err != nil {
			return "", err
		}
		if _, exists := r.rooms[code]; !exists {
			return code, nil
		}
	}
	return "", errCodeSpaceExhausted
}

func randomCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, length)
	for i, b := range buf {
		out[i] = roomCodeAlphabet[int(b)%len(roomCodeAlphabet)]
	}
	return string(out), nil
}
