// internal/room/presence.go
package room

import (
	"github.com/google/uuid"
)

// tokenForNameUnsafe resolves the submission token for a joining contestant.
// A name with a surviving answer-ledger entry gets its old token back, so a
// reconnecting contestant resumes their prior submission instead of forking a
// duplicate row. Assumes lock is held.
func (r *Room) tokenForNameUnsafe(name string) uuid.UUID {
	for _, e := range r.Answers {
		if e.Name == name {
			return e.Token
		}
	}
	for _, b := range r.Buzzes {
		if b.Name == name {
			return b.Token
		}
	}
	return uuid.New()
}

// JoinContestant admits a connection to the contestant roster. The display
// name must be unused across contestants and managers (case-sensitive). The
// ack carries both channel snapshots so a late joiner can reconstruct
// remaining time locally, plus the issued submission token.
func (s *Store) JoinContestant(code string, conn *Connection, name string) error {
	r, ok := s.Get(code)
	if !ok {
		return ErrRoomNotFound
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.nameTakenUnsafe(name) {
		return ErrNameTaken
	}

	conn.Role = RoleContestant
	conn.Name = name
	conn.Token = r.tokenForNameUnsafe(name)
	r.Contestants = append(r.Contestants, conn)
	r.Connections[conn.ID] = conn

	conn.Write(Event{
		Type: EventJoinSuccess,
		Payload: map[string]interface{}{
			"code":     code,
			"role":     RoleContestant,
			"name":     name,
			"token":    conn.Token,
			"channels": []ChannelSnapshot{r.Answer.Snapshot(), r.Buzz.Snapshot()},
		},
	})
	r.broadcastCrewUnsafe(r.rosterEventUnsafe())
	s.log.WithFields(logFields(code, "")).Infof("contestant %q joined (%s)", name, conn.ID)
	return nil
}

// JoinManager admits a connection to the manager roster. The host connection
// itself cannot double as a manager.
func (s *Store) JoinManager(code string, conn *Connection, name string) error {
	r, ok := s.Get(code)
	if !ok {
		return ErrRoomNotFound
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()

	if conn.ID == r.HostID {
		return ErrAlreadyHost
	}
	if r.nameTakenUnsafe(name) {
		return ErrNameTaken
	}

	conn.Role = RoleManager
	conn.Name = name
	r.Managers = append(r.Managers, conn)
	r.Connections[conn.ID] = conn

	conn.Write(Event{
		Type: EventJoinSuccess,
		Payload: map[string]interface{}{
			"code":     code,
			"role":     RoleManager,
			"name":     name,
			"channels": []ChannelSnapshot{r.Answer.Snapshot(), r.Buzz.Snapshot()},
		},
	})
	r.broadcastCrewUnsafe(r.rosterEventUnsafe())
	s.log.WithFields(logFields(code, "")).Infof("manager %q joined (%s)", name, conn.ID)
	return nil
}

// JoinViewer admits an anonymous observer. No uniqueness check; the ack
// carries the current results with elapsed times plus the display config.
func (s *Store) JoinViewer(code string, conn *Connection) error {
	r, ok := s.Get(code)
	if !ok {
		return ErrRoomNotFound
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()

	conn.Role = RoleViewer
	r.Connections[conn.ID] = conn

	conn.Write(Event{
		Type: EventJoinSuccess,
		Payload: map[string]interface{}{
			"code":    code,
			"role":    RoleViewer,
			"results": r.leaderboardRowsUnsafe(),
			"display": r.Opts.Display,
		},
	})
	return nil
}

// Leave handles a disconnect. It scans rooms for the connection's single
// presence entry: a departing host leaves the slot vacant (the room persists,
// awaiting a reclaim) and any scheduled auto-locks are cancelled by locking
// both gates; contestants and managers are removed from their roster. The
// crew is notified either way. Search stops at the first match.
func (s *Store) Leave(connID uuid.UUID) {
	for code, r := range s.Rooms() {
		if s.leaveRoom(r, code, connID) {
			return
		}
	}
}

func (s *Store) leaveRoom(r *Room, code string, connID uuid.UUID) bool {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	conn, ok := r.Connections[connID]
	if !ok {
		return false
	}
	delete(r.Connections, connID)

	if connID == r.HostID {
		r.HostID = uuid.Nil
		for _, ch := range []*Channel{r.Answer, r.Buzz} {
			if ch.State == StateOpen {
				ch.lockUnsafe()
				r.broadcastRoomUnsafe(channelStatusEvent(ch))
			}
		}
		r.broadcastCrewUnsafe(Event{
			Type:    EventPresenceLeft,
			Payload: map[string]interface{}{"connectionId": connID, "role": RoleHost},
		})
		r.broadcastCrewUnsafe(r.rosterEventUnsafe())
		s.log.WithFields(logFields(code, "")).Infof("host %s disconnected, slot vacated", connID)
		return true
	}

	switch conn.Role {
	case RoleContestant:
		r.Contestants = removeConn(r.Contestants, connID)
	case RoleManager:
		r.Managers = removeConn(r.Managers, connID)
	case RoleViewer:
		// Anonymous; nothing to announce.
		return true
	}

	r.broadcastCrewUnsafe(Event{
		Type:    EventPresenceLeft,
		Payload: map[string]interface{}{"connectionId": connID, "role": conn.Role, "name": conn.Name},
	})
	r.broadcastCrewUnsafe(r.rosterEventUnsafe())
	s.log.WithFields(logFields(code, "")).Infof("%s %q left (%s)", conn.Role, conn.Name, connID)
	return true
}

func removeConn(roster []*Connection, connID uuid.UUID) []*Connection {
	for i, c := range roster {
		if c.ID == connID {
			return append(roster[:i], roster[i+1:]...)
		}
	}
	return roster
}
