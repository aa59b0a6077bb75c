package server

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// Apply CORS middleware
	r.Use(s.corsMiddleware)

	r.HandleFunc("/health", s.HealthHandler).Methods(http.MethodGet)

	r.HandleFunc("/register", s.RegisterHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/login", s.LoginHandler).Methods(http.MethodPost, http.MethodOptions)

	r.HandleFunc("/rooms", s.CreateRoomHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/rooms", s.ListRoomsHandler).Methods(http.MethodGet)
	r.HandleFunc("/rooms/validate", s.ValidateRoomHandler).Methods(http.MethodPost, http.MethodOptions)

	r.HandleFunc("/leaderboard", s.LeaderboardHandler).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}/stats", s.UserStatsHandler).Methods(http.MethodGet)

	r.HandleFunc("/ws/{roomId}", s.gateway.HandleWebSocket)

	return r
}

// CORS middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// CORS Headers
		w.Header().Set("Access-Control-Allow-Origin", "*") // Wildcard allows all origins
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "false") // Credentials not allowed with wildcard origins

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
