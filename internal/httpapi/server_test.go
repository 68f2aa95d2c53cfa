package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/servobridge/internal/board"
	"github.com/banshee-data/servobridge/internal/bridge"
	"github.com/banshee-data/servobridge/internal/rate"
)

const densePose = `{"kind":"humanoid16","degrees":[90,90,90,90,90,90,90,90,90,90,90,90,90,90,90,90],"head":{"p1":90,"p2":90}}`

type fixture struct {
	server  *Server
	backend *board.Recorder
	clock   time.Time
}

func newFixture(maxHz float64) *fixture {
	f := &fixture{
		backend: board.NewRecorder(),
		clock:   time.Unix(1000, 0),
	}
	f.server = NewServer(bridge.New(bridge.Config{
		Backend: f.backend,
		Limiter: rate.NewWithClock(maxHz, func() time.Time { return f.clock }),
		Motion:  80 * time.Millisecond,
	}))
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	f.server.ServeMux().ServeHTTP(w, req)
	return w
}

func assertCORS(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
}

func TestPostServo(t *testing.T) {
	t.Parallel()

	t.Run("well-formed pose answers 204 with CORS", func(t *testing.T) {
		t.Parallel()
		f := newFixture(0)
		w := f.do(http.MethodPost, "/servo", densePose)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assertCORS(t, w)
		assert.Len(t, f.backend.BusCalls(), 16)
		assert.Len(t, f.backend.PWMCalls(), 2)
	})

	t.Run("malformed JSON answers 400 with a JSON reason and CORS", func(t *testing.T) {
		t.Parallel()
		f := newFixture(0)
		w := f.do(http.MethodPost, "/servo", `{"kind":"humanoid16",`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assertCORS(t, w)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Contains(t, body["error"], "invalid command")
		assert.Empty(t, f.backend.Calls(), "rejected command must produce zero hardware calls")
	})

	t.Run("wrong element count answers 400 and applies nothing", func(t *testing.T) {
		t.Parallel()
		f := newFixture(0)
		w := f.do(http.MethodPost, "/servo", `{"kind":"humanoid16","degrees":[1,2,3]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, f.backend.Calls())
	})

	t.Run("sparse form belongs to the streaming transport", func(t *testing.T) {
		t.Parallel()
		f := newFixture(0)
		w := f.do(http.MethodPost, "/servo", `{"type":"servos","servos":{"1":500}}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, f.backend.Calls())
	})

	t.Run("rate-limited drop still answers 204", func(t *testing.T) {
		t.Parallel()
		f := newFixture(10)

		assert.Equal(t, http.StatusNoContent, f.do(http.MethodPost, "/servo", densePose).Code)
		f.clock = f.clock.Add(10 * time.Millisecond)
		assert.Equal(t, http.StatusNoContent, f.do(http.MethodPost, "/servo", densePose).Code)
		assert.Len(t, f.backend.BusCalls(), 16, "second command inside the window stays off the bus")
	})
}

func TestOptionsServo(t *testing.T) {
	t.Parallel()
	f := newFixture(0)
	w := f.do(http.MethodOptions, "/servo", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assertCORS(t, w)
}

func TestNotFound(t *testing.T) {
	t.Parallel()
	f := newFixture(0)

	t.Run("unknown path", func(t *testing.T) {
		t.Parallel()
		w := f.do(http.MethodPost, "/reboot", "{}")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assertCORS(t, w)
	})

	t.Run("unsupported method on the command path", func(t *testing.T) {
		t.Parallel()
		w := f.do(http.MethodGet, "/servo", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assertCORS(t, w)
	})
}
