// internal/handlers/server.go
package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/quizbuzz/quizbuzz/internal/room"
)

// Server wires the room engine to its transports: the websocket event stream
// and the request/response results endpoint.
type Server struct {
	Store *room.Store

	logger         *logrus.Logger
	originPatterns []string
}

// NewServer builds a Server around an injected room store.
func NewServer(store *room.Store, logger *logrus.Logger, originPatterns []string) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if len(originPatterns) == 0 {
		originPatterns = []string{"*"}
	}
	return &Server{Store: store, logger: logger, originPatterns: originPatterns}
}
