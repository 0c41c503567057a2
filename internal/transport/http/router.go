package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"quiz-engine/internal/app"
)

const defaultTopN = 10

// NewRouter exposes read-only quiz queries over HTTP and the session websocket.
func NewRouter(service *app.QuizService, logger *slog.Logger) *mux.Router {
	ws := NewWSHandler(service, logger)

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/questions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, service.SearchQuestions(r.URL.Query().Get("q")))
	}).Methods(http.MethodGet)
	r.HandleFunc("/leaderboard/{category}", func(w http.ResponseWriter, r *http.Request) {
		n := defaultTopN
		if raw := r.URL.Query().Get("n"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				http.Error(w, "n must be a non-negative integer", http.StatusBadRequest)
				return
			}
			n = parsed
		}
		ranked, _ := strconv.ParseBool(r.URL.Query().Get("ranked"))
		writeJSON(w, http.StatusOK, service.TopScores(r.Context(), mux.Vars(r)["category"], n, ranked))
	}).Methods(http.MethodGet)
	r.HandleFunc("/users/{username}/scores", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, service.UserScores(mux.Vars(r)["username"]))
	}).Methods(http.MethodGet)
	r.HandleFunc("/ws", ws.ServeWS)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
