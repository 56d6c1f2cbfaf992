// internal/room/store_test.go
package room

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimCreatesLockedEmptyRoom(t *testing.T) {
	_, _, r, host := setupRoom(t, "ABCD", Options{})

	r.Mu.Lock()
	defer r.Mu.Unlock()
	assert.Equal(t, host.ID, r.HostID)
	assert.Equal(t, RoleHost, host.Role)
	assert.Equal(t, StateLocked, r.Answer.State)
	assert.Equal(t, StateLocked, r.Buzz.State)
	assert.Empty(t, r.Contestants)
	assert.Empty(t, r.Managers)
	assert.Empty(t, r.Answers)
	assert.Empty(t, r.Buzzes)
}

func TestGetUnknownCode(t *testing.T) {
	st, _, _, _ := setupRoom(t, "ABCD", Options{})

	_, ok := st.Get("WXYZ")
	assert.False(t, ok)
}

func TestReclaimHandsOverHostAndKeepsLedgers(t *testing.T) {
	st, fc, r, host := setupRoom(t, "ABCD", Options{})
	alice := joinContestant(t, st, "ABCD", "Alice")
	require.NoError(t, r.OpenChannel(host, ChannelAnswer, 0))
	require.NoError(t, r.OpenChannel(host, ChannelBuzz, 0))
	require.NoError(t, r.SubmitAnswer(alice, "42"))
	fc.Advance(time.Second)
	require.NoError(t, r.PressBuzz(alice))

	// Host drops; the room is not deleted.
	st.Leave(host.ID)
	kept, ok := st.Get("ABCD")
	require.True(t, ok)
	require.Same(t, r, kept)

	// A second connection claims the same code and becomes the new host,
	// receiving the ledgers unchanged.
	successor := NewConnection(uuid.New())
	r2 := st.Claim("ABCD", successor, Options{})
	require.Same(t, r, r2)

	ev := waitEvent(t, successor, EventRoomClaimed)
	assert.Equal(t, false, ev.Payload["created"])
	answers := ev.Payload["answers"].([]LeaderboardRow)
	require.Len(t, answers, 1)
	assert.Equal(t, "42", answers[0].Answer)
	buzzes := ev.Payload["buzzes"].([]BuzzEntry)
	require.Len(t, buzzes, 1)
	assert.Equal(t, "Alice", buzzes[0].Name)

	r.Mu.Lock()
	assert.Equal(t, successor.ID, r.HostID)
	// Roster untouched by the handover.
	require.Len(t, r.Contestants, 1)
	r.Mu.Unlock()

	// The new host holds gate privileges immediately.
	require.NoError(t, r.OpenChannel(successor, ChannelAnswer, 0))
}

func TestReclaimIgnoresOptions(t *testing.T) {
	st, _, r, host := setupRoom(t, "ABCD", Options{FirstBuzzLocks: true})
	st.Leave(host.ID)

	successor := NewConnection(uuid.New())
	st.Claim("ABCD", successor, Options{FirstBuzzLocks: false})

	r.Mu.Lock()
	defer r.Mu.Unlock()
	assert.True(t, r.Opts.FirstBuzzLocks, "a reclaim mutates only the host slot")
}

func TestRoomsAreIsolated(t *testing.T) {
	st, _, r1, h1 := setupRoom(t, "AAAA", Options{})
	h2 := NewConnection(uuid.New())
	r2 := st.Claim("BBBB", h2, Options{})

	require.NoError(t, r1.OpenChannel(h1, ChannelAnswer, 0))
	assert.Equal(t, StateLocked, channelState(r2, ChannelAnswer))
}
