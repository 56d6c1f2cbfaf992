// internal/room/helpers_test.go
package room

import (
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// setupRoom builds a fresh store on a fake clock, claims a room and returns
// the host connection with its claim ack already drained.
func setupRoom(t *testing.T, code string, opts Options) (*Store, *clockwork.FakeClock, *Room, *Connection) {
	t.Helper()
	fc := clockwork.NewFakeClock()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	st := NewStore(fc, logger)
	host := NewConnection(uuid.New())
	r := st.Claim(code, host, opts)
	drain(host)
	return st, fc, r, host
}

func joinContestant(t *testing.T, st *Store, code, name string) *Connection {
	t.Helper()
	conn := NewConnection(uuid.New())
	require.NoError(t, st.JoinContestant(code, conn, name))
	drain(conn)
	return conn
}

// drain empties a connection's outbound queue.
func drain(conn *Connection) {
	for {
		select {
		case <-conn.OutChan:
		default:
			return
		}
	}
}

// waitEvent blocks until the connection receives an event of the given type,
// discarding others. Auto-lock callbacks may be delivered asynchronously, so
// assertions on broadcasts go through here.
func waitEvent(t *testing.T, conn *Connection, typ EventType) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-conn.OutChan:
			if ev.Type == typ {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q event", typ)
			return Event{}
		}
	}
}

// expectNoEvent asserts that no event of the given type arrives within a
// short grace period.
func expectNoEvent(t *testing.T, conn *Connection, typ EventType) {
	t.Helper()
	deadline := time.After(100 * time.Millisecond)
	for {
		select {
		case ev := <-conn.OutChan:
			if ev.Type == typ {
				t.Fatalf("unexpected %q event: %+v", typ, ev)
			}
		case <-deadline:
			return
		}
	}
}

// autoLockArmed reads the pending-timer invariant under the room lock.
func autoLockArmed(r *Room, kind ChannelKind) bool {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.channelByKind(kind).autoLock != nil
}

// channelState reads the gate position under the room lock.
func channelState(r *Room, kind ChannelKind) ChannelState {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.channelByKind(kind).State
}

// requireInvariant checks that the auto-lock handle is present iff the
// channel is open with a bound.
func requireInvariant(t *testing.T, r *Room, kind ChannelKind) {
	t.Helper()
	r.Mu.Lock()
	defer r.Mu.Unlock()
	ch := r.channelByKind(kind)
	want := ch.State == StateOpen && ch.Duration > 0
	require.Equal(t, want, ch.autoLock != nil,
		"auto-lock handle presence must match state=%s duration=%d", ch.State, ch.Duration)
}
