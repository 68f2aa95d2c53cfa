// Package wsapi is the streaming transport: a persistent WebSocket whose
// text frames each carry one command. A malformed frame is logged and
// skipped; the connection survives it. Session state is nothing beyond the
// handle to the shared bridge, so a dropped connection simply ends its loop.
package wsapi

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/banshee-data/servobridge/internal/bridge"
	"github.com/banshee-data/servobridge/internal/command"
	"github.com/banshee-data/servobridge/internal/monitoring"
)

var pongFrame = []byte(`{"type":"pong"}`)

// Server upgrades connections and feeds their frames to a shared bridge.
type Server struct {
	bridge *bridge.Bridge
}

// NewServer creates a Server dispatching into b.
func NewServer(b *bridge.Bridge) *Server {
	return &Server{bridge: b}
}

// Handler returns the upgrade endpoint.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.handle)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// the operator UI is served from another origin
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		monitoring.Logf("wsapi: accept from %s: %v", r.RemoteAddr, err)
		return
	}
	defer conn.CloseNow()

	session := uuid.NewString()
	monitoring.Logf("wsapi: session %s connected from %s", session, r.RemoteAddr)
	defer monitoring.Logf("wsapi: session %s closed", session)

	s.serveFrames(r.Context(), conn, session)
}

func (s *Server) serveFrames(ctx context.Context, conn *websocket.Conn, session string) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			// closed, failed or canceled; the session is over either way
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				monitoring.Logf("wsapi: session %s read: %v", session, err)
			}
			return
		}

		msg, err := command.Parse(data)
		if err != nil {
			// bad frame, good connection
			monitoring.Logf("wsapi: session %s: %v", session, err)
			continue
		}

		if s.bridge.Apply("ws:"+session, msg) == bridge.Pong {
			if err := conn.Write(ctx, websocket.MessageText, pongFrame); err != nil {
				monitoring.Logf("wsapi: session %s write pong: %v", session, err)
				return
			}
		}
	}
}
