// Package httpapi is the request/response transport: one POST carries one
// dense pose command. Cross-origin headers are present on every response,
// success and error alike, so the browser-based operator UI can read them.
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/banshee-data/servobridge/internal/bridge"
	"github.com/banshee-data/servobridge/internal/command"
	"github.com/banshee-data/servobridge/internal/monitoring"
)

// maxBody bounds request bodies; a dense pose is a few hundred bytes.
const maxBody = 64 << 10

// Server handles the /servo endpoint against a shared bridge.
type Server struct {
	bridge *bridge.Bridge
}

// NewServer creates a Server dispatching into b.
func NewServer(b *bridge.Bridge) *Server {
	return &Server{bridge: b}
}

// ServeMux returns the transport's routes.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/servo", s.servoHandler)
	mux.HandleFunc("/", s.notFoundHandler)
	return mux
}

func cors(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

func (s *Server) servoHandler(w http.ResponseWriter, r *http.Request) {
	cors(w)
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
	case http.MethodPost:
		s.applyCommand(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (s *Server) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	cors(w)
	http.Error(w, "not found", http.StatusNotFound)
}

func (s *Server) applyCommand(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		s.writeError(w, "read body: "+err.Error())
		return
	}

	msg, err := command.Parse(body)
	if err != nil {
		s.writeError(w, err.Error())
		return
	}
	// This transport carries the dense form only; sparse updates and pings
	// belong to the streaming transport.
	pose, ok := msg.(command.Pose)
	if !ok {
		s.writeError(w, command.ErrInvalid.Error()+": expected a humanoid16 command")
		return
	}

	// A rate-limited drop is still a 204: the client keeps its cadence and
	// treats drops as harmless.
	s.bridge.Apply("http", pose)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeError(w http.ResponseWriter, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": reason}); err != nil {
		monitoring.Logf("httpapi: write error response: %v", err)
	}
}
