// internal/room/events.go
package room

// EventType is an enum-like type for the outbound room protocol.
type EventType string

const (
	EventRoomClaimed   EventType = "room_claimed"    // ack to a create/claim, includes current ledgers
	EventJoinSuccess   EventType = "join_success"    // ack to the joining connection only
	EventChannelStatus EventType = "channel_status"  // room-wide gate open/lock notification
	EventNewAnswer     EventType = "new_answer"      // host+manager live feed
	EventNewBuzz       EventType = "new_buzz"        // host+manager live feed
	EventLeaderboard   EventType = "leaderboard"     // room-wide, pre-computed elapsed times
	EventRoster        EventType = "roster_update"   // host/manager/contestant lists
	EventPresenceLeft  EventType = "presence_left"   // host+manager notification of a departure
	EventResetAck      EventType = "reset_ack"       // ack to the resetting connection only
	EventError         EventType = "error"           // named failure, acting connection only
)

// Event holds one outbound message in a consistent format. Payload keys are
// event-specific; clients dispatch on Type.
type Event struct {
	Type    EventType              `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// ErrorEvent wraps a recoverable engine failure for the acting connection.
func ErrorEvent(err error) Event {
	return Event{
		Type: EventError,
		Payload: map[string]interface{}{
			"error":   errorCode(err),
			"message": err.Error(),
		},
	}
}

func channelStatusEvent(ch *Channel) Event {
	return Event{
		Type:    EventChannelStatus,
		Payload: map[string]interface{}{"channel": ch.Snapshot()},
	}
}
