package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

// apiResponse is the envelope for the small REST surface. The timing
// fields let clients measure server latency without a clock sync.
type apiResponse struct {
	StatusCode    int   `json:"statusCode"`
	RespStartTime int64 `json:"respStartTime"`
	RespEndTime   int64 `json:"respEndTime"`
	NetRespTime   int64 `json:"netRespTime"`
	Data          any   `json:"data"`
}

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	r.Use(s.corsMiddleware)

	r.HandleFunc("/", s.HealthHandler)
	r.HandleFunc("/rooms-available", s.GetJoinableRooms)
	r.HandleFunc("/ws", s.gw.HandleWebSocket)

	return r
}

// CORS middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "false")

		// If it's a websocket upgrade, skip further CORS checks
		if strings.ToLower(r.Header.Get("Upgrade")) == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"rooms":  s.rooms.Count(),
	})
}

// GetJoinableRooms lists public lobbies with open seats so clients can
// offer a quick-join button.
func (s *Server) GetJoinableRooms(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()
	rooms := s.rooms.JoinableRooms()

	resp := apiResponse{
		StatusCode:    http.StatusOK,
		RespStartTime: startTime,
		Data:          rooms,
	}
	if len(rooms) == 0 {
		resp.StatusCode = http.StatusNotFound
		resp.Data = "No joinable rooms available"
	}

	endTime := time.Now().UnixMilli()
	resp.RespEndTime = endTime
	resp.NetRespTime = endTime - startTime

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("encode rooms response", "error", err)
	}
}
