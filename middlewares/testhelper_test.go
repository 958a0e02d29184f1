package middlewares_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bulkmail/internal"
	"github.com/dmitrymomot/bulkmail/pkg/logger"
)

// syncBuffer is a bytes.Buffer safe for concurrent log writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// entries decodes the JSON log lines written so far.
func (b *syncBuffer) entries(t *testing.T) []map[string]any {
	t.Helper()

	b.mu.Lock()
	defer b.mu.Unlock()

	var out []map[string]any
	for line := range strings.Lines(b.buf.String()) {
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

// harness mounts one GET / route behind mw and records what the error handler saw.
type harness struct {
	app  *internal.App
	logs *syncBuffer

	mu  sync.Mutex
	err error
}

func newHarness(t *testing.T, h internal.HandlerFunc, global []internal.Middleware, route ...internal.Middleware) *harness {
	t.Helper()

	hs := &harness{logs: &syncBuffer{}}
	log := logger.NewWithConfig(logger.Config{Output: hs.logs, Level: "debug"})

	hs.app = internal.New(
		internal.WithCustomLogger(log),
		internal.WithMiddleware(global...),
		internal.WithHandlers(routeFunc(func(r internal.Router) {
			r.GET("/", h, route...)
		})),
		internal.WithErrorHandler(func(c internal.Context, err error) error {
			hs.mu.Lock()
			hs.err = err
			hs.mu.Unlock()

			code := http.StatusInternalServerError
			if sc, ok := err.(interface{ StatusCode() int }); ok {
				code = sc.StatusCode()
			}
			return c.NoContent(code)
		}),
	)
	return hs
}

func (h *harness) do(r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.app.ServeHTTP(w, r)
	return w
}

func (h *harness) handlerErr() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

type routeFunc func(r internal.Router)

func (f routeFunc) Routes(r internal.Router) { f(r) }

func get() *http.Request {
	return httptest.NewRequest(http.MethodGet, "/", nil)
}
