// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/quizbuzz/quizbuzz/internal/middleware"
	"github.com/quizbuzz/quizbuzz/internal/room"
)

// packet is the inbound event envelope. Every action carries the room code;
// the remaining fields are action-specific.
type packet struct {
	Type     string `json:"type"`
	Code     string `json:"code,omitempty"`
	Name     string `json:"name,omitempty"`
	Duration int    `json:"duration,omitempty"`
	Answer   string `json:"answer,omitempty"`

	// Claim-time room options.
	FirstBuzzLocks       bool     `json:"firstBuzzLocks,omitempty"`
	SortKey              string   `json:"sortKey,omitempty"`
	KnownContestantNames []string `json:"knownContestantNames,omitempty"`
}

var errMissingCode = errors.New("room code required")
var errMissingName = errors.New("display name required")

// WSHandler upgrades the connection and runs the read/write pumps. One socket
// is one connection identity; a dropped socket drives presence cleanup.
func (s *Server) WSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		remoteAddr := r.RemoteAddr

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"quizbuzz"},
			OriginPatterns: s.originPatterns,
		})
		if err != nil {
			s.logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "quizbuzz" {
			c.Close(BadSubprotocolError, "client must speak the quizbuzz subprotocol")
			return
		}

		middleware.LogWebSocketConnect(s.logger, remoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		conn := room.NewConnection(uuid.New())
		conn.Cancel = cancel

		go s.writePump(ctx, c, conn)
		readErr := s.readPump(ctx, c, conn)

		// Disconnect: remove the connection's single presence entry, if any.
		s.Store.Leave(conn.ID)
		cancel()
		middleware.LogWebSocketDisconnect(s.logger, remoteAddr, r.URL.Path, readErr)
	}
}

// readPump decodes inbound packets and dispatches them until the socket
// closes. Malformed payloads are rejected at this boundary and never reach
// the engine.
func (s *Server) readPump(ctx context.Context, c *websocket.Conn, conn *room.Connection) error {
	for {
		typ, msg, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway {
				return nil
			}
			if strings.Contains(err.Error(), "context canceled") {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			s.logger.Warnf("connection %s: non-text message type %d ignored", conn.ID, typ)
			continue
		}

		var pkt packet
		if err := json.Unmarshal(msg, &pkt); err != nil {
			s.logger.Warnf("connection %s: invalid json: %v", conn.ID, err)
			conn.WriteError(errors.New("invalid JSON payload"))
			continue
		}

		s.dispatch(conn, pkt)
	}
}

// dispatch routes one inbound event to the engine. Every recoverable failure
// comes back as an error event to this connection only.
func (s *Server) dispatch(conn *room.Connection, pkt packet) {
	if pkt.Code == "" {
		conn.WriteError(errMissingCode)
		return
	}

	switch pkt.Type {
	case "claim_room":
		s.Store.Claim(pkt.Code, conn, room.Options{
			FirstBuzzLocks: pkt.FirstBuzzLocks,
			Display: room.ResultDisplayConfig{
				SortKey:              pkt.SortKey,
				KnownContestantNames: pkt.KnownContestantNames,
			},
		})
	case "join_contestant":
		if pkt.Name == "" {
			conn.WriteError(errMissingName)
			return
		}
		s.report(conn, s.Store.JoinContestant(pkt.Code, conn, pkt.Name))
	case "join_manager":
		if pkt.Name == "" {
			conn.WriteError(errMissingName)
			return
		}
		s.report(conn, s.Store.JoinManager(pkt.Code, conn, pkt.Name))
	case "join_viewer":
		s.report(conn, s.Store.JoinViewer(pkt.Code, conn))
	case "open_answers":
		s.withRoom(conn, pkt.Code, func(r *room.Room) error {
			return r.OpenChannel(conn, room.ChannelAnswer, pkt.Duration)
		})
	case "lock_answers":
		s.withRoom(conn, pkt.Code, func(r *room.Room) error {
			return r.LockChannel(conn, room.ChannelAnswer)
		})
	case "open_buzz":
		s.withRoom(conn, pkt.Code, func(r *room.Room) error {
			return r.OpenChannel(conn, room.ChannelBuzz, pkt.Duration)
		})
	case "lock_buzz":
		s.withRoom(conn, pkt.Code, func(r *room.Room) error {
			return r.LockChannel(conn, room.ChannelBuzz)
		})
	case "submit_answer":
		s.withRoom(conn, pkt.Code, func(r *room.Room) error {
			return r.SubmitAnswer(conn, pkt.Answer)
		})
	case "press_buzz":
		s.withRoom(conn, pkt.Code, func(r *room.Room) error {
			return r.PressBuzz(conn)
		})
	case "roster":
		s.withRoom(conn, pkt.Code, func(r *room.Room) error {
			return r.Roster(conn)
		})
	case "reset_answers":
		s.withRoom(conn, pkt.Code, func(r *room.Room) error {
			return r.ResetAnswers(conn)
		})
	case "reset_buzz":
		s.withRoom(conn, pkt.Code, func(r *room.Room) error {
			return r.ResetBuzz(conn)
		})
	case "leaderboard":
		s.withRoom(conn, pkt.Code, func(r *room.Room) error {
			return r.RefreshLeaderboard(conn)
		})
	default:
		s.logger.Warnf("connection %s: unknown action %q", conn.ID, pkt.Type)
		conn.WriteError(errors.New("unknown action type: " + pkt.Type))
	}
}

// withRoom resolves the room code and runs one engine operation against it.
func (s *Server) withRoom(conn *room.Connection, code string, op func(*room.Room) error) {
	r, ok := s.Store.Get(code)
	if !ok {
		conn.WriteError(room.ErrRoomNotFound)
		return
	}
	s.report(conn, op(r))
}

func (s *Server) report(conn *room.Connection, err error) {
	if err != nil {
		conn.WriteError(err)
	}
}

// writePump drains the connection's outbound queue onto the socket and keeps
// the connection alive with periodic pings.
func (s *Server) writePump(ctx context.Context, c *websocket.Conn, conn *room.Connection) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-conn.OutChan:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				s.logger.Warnf("connection %s: failed to marshal outgoing event: %v", conn.ID, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				s.logger.Warnf("connection %s: websocket write failed: %v", conn.ID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				s.logger.Warnf("connection %s: ping failed, assuming disconnect: %v", conn.ID, err)
				return
			}
		}
	}
}
