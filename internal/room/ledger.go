// internal/room/ledger.go
package room

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// AnswerEntry is the latest accepted free-text answer for one contestant.
// OpenedAt pins the answer-channel session start the entry was submitted
// against, so elapsed times stay computable after the gate locks or the host
// slot changes hands.
type AnswerEntry struct {
	Token       uuid.UUID `json:"-"`
	Name        string    `json:"name"`
	Answer      string    `json:"answer"`
	SubmittedAt time.Time `json:"submittedAt"`
	OpenedAt    time.Time `json:"-"`
}

// BuzzEntry is one accepted buzzer press; ledger insertion order is the
// buzz-in order.
type BuzzEntry struct {
	Token     uuid.UUID `json:"-"`
	Name      string    `json:"name"`
	PressedAt time.Time `json:"pressedAt"`
}

// LeaderboardRow is one line of the computed results, with the elapsed time
// pre-computed server-side so clients never need the session start for
// display math.
type LeaderboardRow struct {
	Name           string  `json:"name"`
	Answer         string  `json:"answer,omitempty"`
	ElapsedSeconds float64 `json:"elapsedSeconds"`
}

// elapsedSeconds computes an entry's time-to-answer. A zero session start
// (channel never opened for this entry) reports 0.
func (e *AnswerEntry) elapsedSeconds() float64 {
	if e.OpenedAt.IsZero() || e.SubmittedAt.Before(e.OpenedAt) {
		return 0
	}
	return e.SubmittedAt.Sub(e.OpenedAt).Seconds()
}

// SubmitAnswer records a contestant's free-text answer. The latest answer
// wins: a repeat submission from the same token overwrites in place, which is
// how contestants change their mind before the gate locks. The accepted
// record feeds only the host+manager live view, never other contestants.
func (r *Room) SubmitAnswer(actor *Connection, text string) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	member, ok := r.memberUnsafe(actor.ID)
	if !ok || member.Role != RoleContestant {
		return ErrUnauthorized
	}
	if r.Answer.State != StateOpen {
		return ErrChannelLocked
	}

	now := r.clock.Now()
	entry, exists := r.Answers[member.Token]
	if exists {
		entry.Answer = text
		entry.SubmittedAt = now
		entry.OpenedAt = r.Answer.StartedAt
	} else {
		entry = &AnswerEntry{
			Token:       member.Token,
			Name:        member.Name,
			Answer:      text,
			SubmittedAt: now,
			OpenedAt:    r.Answer.StartedAt,
		}
		r.Answers[member.Token] = entry
	}

	r.broadcastCrewUnsafe(Event{
		Type: EventNewAnswer,
		Payload: map[string]interface{}{
			"name":           entry.Name,
			"answer":         entry.Answer,
			"elapsedSeconds": entry.elapsedSeconds(),
		},
	})
	return nil
}

// PressBuzz records a buzzer press. At most one press per token per open
// session; repeats are rejected, not overwritten. With the room's
// FirstBuzzLocks option set and a bounded open, the first accepted press
// closes the gate immediately ("first-to-buzz wins").
func (r *Room) PressBuzz(actor *Connection) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	member, ok := r.memberUnsafe(actor.ID)
	if !ok || member.Role != RoleContestant {
		return ErrUnauthorized
	}
	if r.Buzz.State != StateOpen {
		return ErrChannelLocked
	}
	for _, b := range r.Buzzes {
		if b.Token == member.Token {
			return ErrDuplicateSubmission
		}
	}

	entry := BuzzEntry{Token: member.Token, Name: member.Name, PressedAt: r.clock.Now()}
	r.Buzzes = append(r.Buzzes, entry)

	r.broadcastCrewUnsafe(Event{
		Type: EventNewBuzz,
		Payload: map[string]interface{}{
			"name":      entry.Name,
			"pressedAt": entry.PressedAt.UnixMilli(),
			"position":  len(r.Buzzes),
		},
	})

	if r.Opts.FirstBuzzLocks && r.Buzz.Duration > 0 && len(r.Buzzes) == 1 {
		r.Buzz.lockUnsafe()
		r.log.WithFields(logFields(r.Code, string(ChannelBuzz))).Info("channel locked by first buzz")
		r.broadcastRoomUnsafe(channelStatusEvent(r.Buzz))
	}
	return nil
}

// ResetAnswers clears the answer ledger. Only an explicit reset does this;
// reopening the answer gate keeps prior entries. The whole room gets a fresh
// (empty) leaderboard so every view stays consistent.
func (r *Room) ResetAnswers(actor *Connection) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if !r.isCrewUnsafe(actor) {
		return ErrUnauthorized
	}
	r.Answers = make(map[uuid.UUID]*AnswerEntry)
	actor.Write(Event{Type: EventResetAck, Payload: map[string]interface{}{"channel": ChannelAnswer}})
	r.broadcastRoomUnsafe(r.leaderboardEventUnsafe())
	return nil
}

// ResetBuzz clears the buzz ledger without touching the gate.
func (r *Room) ResetBuzz(actor *Connection) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if !r.isCrewUnsafe(actor) {
		return ErrUnauthorized
	}
	r.Buzzes = nil
	actor.Write(Event{Type: EventResetAck, Payload: map[string]interface{}{"channel": ChannelBuzz}})
	return nil
}

// leaderboardRowsUnsafe computes the ordered results: elapsed ascending, name
// as the tiebreaker. Assumes lock is held.
func (r *Room) leaderboardRowsUnsafe() []LeaderboardRow {
	rows := make([]LeaderboardRow, 0, len(r.Answers))
	for _, e := range r.Answers {
		rows = append(rows, LeaderboardRow{
			Name:           e.Name,
			Answer:         e.Answer,
			ElapsedSeconds: e.elapsedSeconds(),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ElapsedSeconds != rows[j].ElapsedSeconds {
			return rows[i].ElapsedSeconds < rows[j].ElapsedSeconds
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

func (r *Room) leaderboardEventUnsafe() Event {
	return Event{
		Type: EventLeaderboard,
		Payload: map[string]interface{}{
			"code":    r.Code,
			"results": r.leaderboardRowsUnsafe(),
			"display": r.Opts.Display,
		},
	}
}

// LeaderboardRows returns the computed results under the room lock, elapsed
// ascending. Used by the request/response results endpoint and viewer joins.
func (r *Room) LeaderboardRows() []LeaderboardRow {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.leaderboardRowsUnsafe()
}

// RefreshLeaderboard recomputes the results and broadcasts them to the entire
// room: viewers, contestants and crew alike.
func (r *Room) RefreshLeaderboard(actor *Connection) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if !r.isCrewUnsafe(actor) {
		return ErrUnauthorized
	}
	r.broadcastRoomUnsafe(r.leaderboardEventUnsafe())
	return nil
}

// BuzzOrder returns the buzz ledger in arrival order under the room lock.
func (r *Room) BuzzOrder() []BuzzEntry {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	out := make([]BuzzEntry, len(r.Buzzes))
	copy(out, r.Buzzes)
	return out
}
