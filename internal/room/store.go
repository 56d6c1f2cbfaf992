// internal/room/store.go
package room

import (
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// Store is the process-wide registry of live rooms, keyed by room code. It is
// injected rather than ambient so tests construct a fresh one. Rooms are
// never evicted; they live for the process.
type Store struct {
	mu    sync.Mutex
	rooms map[string]*Room

	clock clockwork.Clock
	log   *logrus.Logger
}

// NewStore builds an empty registry. Production passes
// clockwork.NewRealClock(); tests pass a fake clock to drive auto-locks
// deterministically.
func NewStore(clock clockwork.Clock, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Store{
		rooms: make(map[string]*Room),
		clock: clock,
		log:   logger,
	}
}

// Get looks up a room by code.
func (s *Store) Get(code string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[code]
	return r, ok
}

// getOrCreate constructs the room on first claim or returns the existing one.
// Options only apply on creation; a reclaim must not mutate anything but the
// host slot.
func (s *Store) getOrCreate(code string, opts Options) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[code]; ok {
		return r, false
	}
	r := newRoom(code, opts, s.clock, s.log)
	s.rooms[code] = r
	return r, true
}

// Claim creates the room for a code, or takes over the host slot of an
// existing one (host handover after a disconnect). Either way the caller
// becomes the host and is sent the current ledgers, so a re-host picks up the
// session exactly where it stood.
func (s *Store) Claim(code string, conn *Connection, opts Options) *Room {
	r, created := s.getOrCreate(code, opts)

	r.Mu.Lock()
	r.HostID = conn.ID
	conn.Role = RoleHost
	r.Connections[conn.ID] = conn

	answers := r.leaderboardRowsUnsafe()
	buzzes := make([]BuzzEntry, len(r.Buzzes))
	copy(buzzes, r.Buzzes)
	ack := Event{
		Type: EventRoomClaimed,
		Payload: map[string]interface{}{
			"code":     code,
			"created":  created,
			"answers":  answers,
			"buzzes":   buzzes,
			"channels": []ChannelSnapshot{r.Answer.Snapshot(), r.Buzz.Snapshot()},
		},
	}
	conn.Write(ack)
	r.broadcastCrewUnsafe(r.rosterEventUnsafe())
	r.Mu.Unlock()

	if created {
		s.log.WithFields(logFields(code, "")).Infof("room created by %s", conn.ID)
	} else {
		s.log.WithFields(logFields(code, "")).Infof("room reclaimed by %s", conn.ID)
	}
	return r
}

// Rooms returns a copy of the registry map, for diagnostics.
func (s *Store) Rooms() map[string]*Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*Room, len(s.rooms))
	for k, v := range s.rooms {
		out[k] = v
	}
	return out
}
