// internal/room/channel.go
package room

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// ChannelKind names one of the two independently gated response modes.
type ChannelKind string

const (
	ChannelAnswer ChannelKind = "answer"
	ChannelBuzz   ChannelKind = "buzz"
)

// ChannelState is the gate position.
type ChannelState string

const (
	StateLocked ChannelState = "locked"
	StateOpen   ChannelState = "open"
)

// Channel is the gating state machine for one response mode of one room.
// Invariant: autoLock is non-nil iff State is Open and Duration > 0; every
// transition out of Open cancels it exactly once.
type Channel struct {
	Kind  ChannelKind
	State ChannelState

	// StartedAt is the server-authoritative session start, recorded at Open
	// time. Client-supplied times are never trusted for elapsed math.
	StartedAt time.Time

	// Duration is the configured bound in seconds; 0 means unbounded.
	Duration int

	autoLock clockwork.Timer
}

// ChannelSnapshot is the wire form of a channel's state. StartTime (unix
// milliseconds) is present only while the gate is open with a bound, so late
// joiners can reconstruct the remaining time locally.
type ChannelSnapshot struct {
	Kind      ChannelKind  `json:"channel"`
	State     ChannelState `json:"state"`
	Duration  int          `json:"duration,omitempty"`
	StartTime int64        `json:"startTime,omitempty"`
}

// Snapshot renders the channel for the wire. Callers hold the room lock or
// own the channel exclusively.
func (ch *Channel) Snapshot() ChannelSnapshot {
	snap := ChannelSnapshot{Kind: ch.Kind, State: ch.State}
	if ch.State == StateOpen {
		snap.Duration = ch.Duration
		if ch.Duration > 0 {
			snap.StartTime = ch.StartedAt.UnixMilli()
		}
	}
	return snap
}

// cancelAutoLockUnsafe stops a pending auto-lock, idempotently. Assumes the
// room lock is held.
func (ch *Channel) cancelAutoLockUnsafe() {
	if ch.autoLock != nil {
		ch.autoLock.Stop()
		ch.autoLock = nil
	}
}

// lockUnsafe transitions the channel to Locked from any state. Assumes the
// room lock is held. Broadcasting is up to the caller.
func (ch *Channel) lockUnsafe() {
	ch.cancelAutoLockUnsafe()
	ch.State = StateLocked
	ch.StartedAt = time.Time{}
	ch.Duration = 0
}

// OpenChannel opens a gate on behalf of a host or manager. A duration > 0
// schedules the auto-lock; duration 0 leaves the gate open until an explicit
// lock. Opening the buzz gate always starts a fresh round, clearing prior
// presses. The new status is broadcast to the whole room.
func (r *Room) OpenChannel(actor *Connection, kind ChannelKind, duration int) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if !r.isCrewUnsafe(actor) {
		return ErrUnauthorized
	}

	ch := r.channelByKind(kind)
	ch.cancelAutoLockUnsafe()
	ch.State = StateOpen
	ch.StartedAt = r.clock.Now()
	if duration < 0 {
		duration = 0
	}
	ch.Duration = duration

	if kind == ChannelBuzz {
		r.Buzzes = nil
	}

	if duration > 0 {
		// Capture the timer so the callback can tell whether it is still the
		// scheduled one; a reopen or explicit lock replaces or clears it, and
		// a stale firing must not lock the new session.
		var timer clockwork.Timer
		timer = r.clock.AfterFunc(time.Duration(duration)*time.Second, func() {
			r.autoLockFired(ch, timer)
		})
		ch.autoLock = timer
	}

	r.log.WithFields(logFields(r.Code, string(kind))).Infof("channel opened (duration=%ds)", duration)
	r.broadcastRoomUnsafe(channelStatusEvent(ch))
	return nil
}

// LockChannel closes a gate on behalf of a host or manager and broadcasts the
// new status to the whole room.
func (r *Room) LockChannel(actor *Connection, kind ChannelKind) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if !r.isCrewUnsafe(actor) {
		return ErrUnauthorized
	}

	ch := r.channelByKind(kind)
	ch.lockUnsafe()
	r.log.WithFields(logFields(r.Code, string(kind))).Info("channel locked")
	r.broadcastRoomUnsafe(channelStatusEvent(ch))
	return nil
}

// autoLockFired is the deferred auto-lock callback. It serializes against the
// room like any other action and ignores stale timers that lost a race with
// an explicit lock or a reopen.
func (r *Room) autoLockFired(ch *Channel, timer clockwork.Timer) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if ch.autoLock != timer {
		return
	}
	ch.autoLock = nil
	ch.State = StateLocked
	ch.StartedAt = time.Time{}
	ch.Duration = 0
	r.log.WithFields(logFields(r.Code, string(ch.Kind))).Info("channel auto-locked")
	r.broadcastRoomUnsafe(channelStatusEvent(ch))
}

// ChannelSnapshot returns a locked read of one channel's state.
func (r *Room) ChannelSnapshot(kind ChannelKind) ChannelSnapshot {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.channelByKind(kind).Snapshot()
}
