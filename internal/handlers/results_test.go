// internal/handlers/results_test.go
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizbuzz/quizbuzz/internal/room"
)

func newTestServer(t *testing.T) (*Server, *clockwork.FakeClock) {
	t.Helper()
	fc := clockwork.NewFakeClock()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	store := room.NewStore(fc, logger)
	return NewServer(store, logger, nil), fc
}

func TestResultsHandler(t *testing.T) {
	srv, fc := newTestServer(t)

	host := room.NewConnection(uuid.New())
	r := srv.Store.Claim("ABCD", host, room.Options{})

	alice := room.NewConnection(uuid.New())
	require.NoError(t, srv.Store.JoinContestant("ABCD", alice, "Alice"))
	bob := room.NewConnection(uuid.New())
	require.NoError(t, srv.Store.JoinContestant("ABCD", bob, "Bob"))

	require.NoError(t, r.OpenChannel(host, room.ChannelAnswer, 0))
	fc.Advance(4 * time.Second)
	require.NoError(t, r.SubmitAnswer(bob, "first in"))
	fc.Advance(2 * time.Second)
	require.NoError(t, r.SubmitAnswer(alice, "second in"))

	req := httptest.NewRequest("GET", "/rooms/ABCD/results", nil)
	w := httptest.NewRecorder()
	srv.ResultsHandler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Code    string `json:"code"`
		Results []struct {
			Name           string  `json:"name"`
			Answer         string  `json:"answer"`
			ElapsedSeconds float64 `json:"elapsedSeconds"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ABCD", resp.Code)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "Bob", resp.Results[0].Name)
	assert.InDelta(t, 4.0, resp.Results[0].ElapsedSeconds, 0.01)
	assert.Equal(t, "Alice", resp.Results[1].Name)
	assert.InDelta(t, 6.0, resp.Results[1].ElapsedSeconds, 0.01)
}

func TestResultsHandlerUnknownRoom(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/rooms/WXYZ/results", nil)
	w := httptest.NewRecorder()
	srv.ResultsHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResultsHandlerBadPath(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/rooms/ABCD", nil)
	w := httptest.NewRecorder()
	srv.ResultsHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResultsHandlerMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest("POST", "/rooms/ABCD/results", nil)
	w := httptest.NewRecorder()
	srv.ResultsHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
