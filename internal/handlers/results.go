// internal/handlers/results.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/quizbuzz/quizbuzz/internal/room"
)

// resultsResponse is the request/response view of a room's answer ledger,
// elapsed seconds ascending.
type resultsResponse struct {
	Code    string                   `json:"code"`
	Results []room.LeaderboardRow    `json:"results"`
	Display room.ResultDisplayConfig `json:"display"`
}

// ResultsHandler serves GET /rooms/{code}/results: the answer ledger
// reformatted with elapsed times. Unknown codes 404.
func (s *Server) ResultsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		parts := strings.Split(strings.Trim(strings.TrimPrefix(req.URL.Path, "/rooms/"), "/"), "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] != "results" {
			http.Error(w, "expected /rooms/{code}/results", http.StatusBadRequest)
			return
		}
		code := parts[0]

		r, ok := s.Store.Get(code)
		if !ok {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		r.Mu.Lock()
		display := r.Opts.Display
		r.Mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resultsResponse{
			Code:    code,
			Results: r.LeaderboardRows(),
			Display: display,
		})
	}
}
