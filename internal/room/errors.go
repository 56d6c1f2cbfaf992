// internal/room/errors.go
package room

import "errors"

// Sentinel errors for every recoverable failure the engine reports. All of
// these go back to the acting connection as an "error" event; none of them
// affect other participants or tear down the room.
var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrNameTaken           = errors.New("name already taken in this room")
	ErrChannelLocked       = errors.New("channel is locked")
	ErrDuplicateSubmission = errors.New("already buzzed this round")
	ErrUnauthorized        = errors.New("host or manager privileges required")
	ErrAlreadyHost         = errors.New("connection already holds the host slot")
)

// errorCode maps a sentinel to the wire-level error name clients switch on.
func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, ErrNameTaken):
		return "name_taken"
	case errors.Is(err, ErrChannelLocked):
		return "channel_locked"
	case errors.Is(err, ErrDuplicateSubmission):
		return "duplicate_submission"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrAlreadyHost):
		return "already_host"
	default:
		return "internal"
	}
}
