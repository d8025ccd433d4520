// Package httpapi wires the client-facing endpoints onto a gorilla/mux
// router with CORS.
package httpapi

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/nanovote/votewatch/internal/broadcast"
	"github.com/nanovote/votewatch/internal/election"
	"github.com/nanovote/votewatch/internal/xlog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server hosts the client-facing endpoints.
type Server struct {
	store  *election.Store
	detail *broadcast.DetailSource
	hub    *broadcast.Hub
	log    xlog.Logger

	pageTemplate *template.Template
}

// NewServer builds the router. store backs GET /raw/<hash>; detail backs
// both election_details endpoints; hub backs GET /ws.
func NewServer(store *election.Store, detail *broadcast.DetailSource, hub *broadcast.Hub) http.Handler {
	s := &Server{
		store:        store,
		detail:       detail,
		hub:          hub,
		log:          xlog.New("component", "httpapi"),
		pageTemplate: template.Must(template.New("index").Parse(indexTemplate)),
	}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/raw/{hash}", s.handleRaw).Methods(http.MethodGet)
	r.HandleFunc("/election_details/{hash}", s.handleElectionDetailsHTML).Methods(http.MethodGet)
	r.HandleFunc("/api/election_details/{hash}", s.handleElectionDetailsJSON).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return cors.Default().Handler(r)
}

// indexTemplate is a minimal stand-in for the real HTML page; HTML
// templating lives outside this package, and the overview feed itself
// arrives over /ws.
const indexTemplate = `<!doctype html>
<html><head><title>vote overview</title></head>
<body><div id="app" data-ws="/ws"></div></body></html>`

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.pageTemplate.Execute(w, nil); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	hash := mux.Vars(r)["hash"]
	record, ok, err := s.store.Get(r.Context(), hash)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		s.log.Error("raw lookup failed", "hash", hash, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		writeJSONError(w, http.StatusOK, "No election data found")
		return
	}
	json.NewEncoder(w).Encode(record)
}

func (s *Server) handleElectionDetailsJSON(w http.ResponseWriter, r *http.Request) {
	hash := mux.Vars(r)["hash"]
	d, err := s.detail.Get(r.Context(), hash)
	w.Header().Set("Content-Type", "application/json")
	if errors.Is(err, broadcast.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	json.NewEncoder(w).Encode(d)
}

func (s *Server) handleElectionDetailsHTML(w http.ResponseWriter, r *http.Request) {
	hash := mux.Vars(r)["hash"]
	d, err := s.detail.Get(r.Context(), hash)
	if errors.Is(err, broadcast.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// Detail-page rendering lives in an external template; this writes
	// the minimal data such a template would consume.
	json.NewEncoder(w).Encode(d)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("ws upgrade failed", "error", err)
		return
	}
	s.hub.Register(conn)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
