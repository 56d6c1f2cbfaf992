// internal/room/broadcast.go
package room

import "github.com/sirupsen/logrus"

// Audience routing. Every mutating action notifies one of three audience
// classes: the whole room, the crew (host + managers), or the acting
// connection alone. The crew-only class exists so one contestant's answer is
// never leaked to the others mid-round.

// broadcastRoomUnsafe sends an event to every live connection in the room,
// viewers included. Assumes lock is held; Connection.Write never blocks.
func (r *Room) broadcastRoomUnsafe(ev Event) {
	for _, conn := range r.Connections {
		conn.Write(ev)
	}
}

// broadcastCrewUnsafe sends an event to the host and all managers.
// Assumes lock is held.
func (r *Room) broadcastCrewUnsafe(ev Event) {
	for _, conn := range r.Connections {
		if conn.ID == r.HostID || conn.Role == RoleManager {
			conn.Write(ev)
		}
	}
}

func logFields(code, channel string) logrus.Fields {
	f := logrus.Fields{"room": code}
	if channel != "" {
		f["channel"] = channel
	}
	return f
}
