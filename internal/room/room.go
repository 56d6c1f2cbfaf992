// internal/room/room.go
package room

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// Role identifies what a connection may do inside a room.
type Role string

const (
	RoleHost       Role = "host"
	RoleManager    Role = "manager"
	RoleContestant Role = "contestant"
	RoleViewer     Role = "viewer"
)

// Connection is a single participant's live presence. The transport layer
// constructs one per socket and drains OutChan back to the client.
type Connection struct {
	ID   uuid.UUID
	Role Role
	Name string // display name; empty for viewers

	// Token is the stable submission identity issued at join. It outlives the
	// transport connection id so a reconnecting contestant resumes their
	// prior ledger entry.
	Token uuid.UUID

	Cancel  func()
	OutChan chan Event
}

// NewConnection builds a Connection with a buffered outbound queue.
func NewConnection(id uuid.UUID) *Connection {
	return &Connection{ID: id, OutChan: make(chan Event, 16)}
}

// Write pushes an event onto the connection's OutChan non-blockingly.
// A full or abandoned queue drops the event rather than stalling the room.
func (conn *Connection) Write(ev Event) {
	select {
	case conn.OutChan <- ev:
	default:
		logrus.Warnf("connection %s: outbound queue full, dropped event %q", conn.ID, ev.Type)
	}
}

// WriteError reports a recoverable failure back to this connection only.
func (conn *Connection) WriteError(err error) {
	conn.Write(ErrorEvent(err))
}

// ResultDisplayConfig lets the viewer role reproduce a consistent leaderboard
// ordering; entirely optional.
type ResultDisplayConfig struct {
	SortKey              string   `json:"sortKey,omitempty"`
	KnownContestantNames []string `json:"knownContestantNames,omitempty"`
}

// Options are the per-room settings fixed by the creating host.
type Options struct {
	// FirstBuzzLocks locks the buzz channel right after the first accepted
	// press, when the channel was opened with a bounded duration.
	FirstBuzzLocks bool
	Display        ResultDisplayConfig
}

// Room is one isolated live session, addressed by a short code. All state is
// guarded by Mu; every inbound action and the auto-lock callback serialize
// through it, so no two actions on the same room ever interleave.
type Room struct {
	Code string

	// HostID is the connection currently holding host privilege, or uuid.Nil
	// while the slot is vacant (e.g. after the host disconnected).
	HostID uuid.UUID

	// Contestants and Managers are ordered rosters with case-sensitive
	// name uniqueness. Connections holds every live participant, viewers
	// included, keyed by connection id.
	Contestants []*Connection
	Managers    []*Connection
	Connections map[uuid.UUID]*Connection

	Answer *Channel
	Buzz   *Channel

	// Answers maps contestant token -> latest accepted answer.
	// Buzzes is append-ordered: insertion order is the buzz-in order.
	Answers map[uuid.UUID]*AnswerEntry
	Buzzes  []BuzzEntry

	Opts Options

	Mu sync.Mutex

	clock clockwork.Clock
	log   *logrus.Logger
}

func newRoom(code string, opts Options, clock clockwork.Clock, logger *logrus.Logger) *Room {
	return &Room{
		Code:        code,
		Connections: make(map[uuid.UUID]*Connection),
		Answer:      &Channel{Kind: ChannelAnswer, State: StateLocked},
		Buzz:        &Channel{Kind: ChannelBuzz, State: StateLocked},
		Answers:     make(map[uuid.UUID]*AnswerEntry),
		Opts:        opts,
		clock:       clock,
		log:         logger,
	}
}

// channelByKind resolves a kind to the room's channel record.
func (r *Room) channelByKind(kind ChannelKind) *Channel {
	if kind == ChannelBuzz {
		return r.Buzz
	}
	return r.Answer
}

// isCrewUnsafe reports whether the connection holds gate privileges here.
// Assumes lock is held.
func (r *Room) isCrewUnsafe(conn *Connection) bool {
	if conn.ID == r.HostID {
		return true
	}
	for _, m := range r.Managers {
		if m.ID == conn.ID {
			return true
		}
	}
	return false
}

// memberUnsafe returns the room's view of a connection, if present.
// Assumes lock is held.
func (r *Room) memberUnsafe(id uuid.UUID) (*Connection, bool) {
	conn, ok := r.Connections[id]
	return conn, ok
}

// nameTakenUnsafe checks name uniqueness across both rosters; the stricter
// rule keeps contestant and manager names disjoint. Assumes lock is held.
func (r *Room) nameTakenUnsafe(name string) bool {
	for _, c := range r.Contestants {
		if c.Name == name {
			return true
		}
	}
	for _, m := range r.Managers {
		if m.Name == name {
			return true
		}
	}
	return false
}

// rosterEventUnsafe builds the roster_update payload. Assumes lock is held.
func (r *Room) rosterEventUnsafe() Event {
	contestants := make([]string, 0, len(r.Contestants))
	for _, c := range r.Contestants {
		contestants = append(contestants, c.Name)
	}
	managers := make([]string, 0, len(r.Managers))
	for _, m := range r.Managers {
		managers = append(managers, m.Name)
	}
	hostPresent := r.HostID != uuid.Nil
	return Event{
		Type: EventRoster,
		Payload: map[string]interface{}{
			"code":        r.Code,
			"hostPresent": hostPresent,
			"managers":    managers,
			"contestants": contestants,
		},
	}
}

// Roster sends the current roster to the requesting connection. Any member of
// the room may ask; outsiders get RoomNotFound semantics from the caller.
func (r *Room) Roster(actor *Connection) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if _, ok := r.memberUnsafe(actor.ID); !ok {
		return ErrUnauthorized
	}
	actor.Write(r.rosterEventUnsafe())
	return nil
}
