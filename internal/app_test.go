package internal_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bulkmail/internal"
)

func TestApp_HealthChecks(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithHealthChecks(
		internal.WithReadinessCheck("redis", func(context.Context) error { return nil }),
		internal.WithOptionalCheck("subscription_list", func(context.Context) error {
			return errors.New("upstream down")
		}),
	))

	live := serve(app, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, live.Code)
	require.Equal(t, "OK", live.Body.String())

	ready := serve(app, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, ready.Code)
}

func TestApp_HealthChecks_RequiredFailure(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithHealthChecks(
		internal.WithReadinessPath("/ready"),
		internal.WithReadinessCheck("redis", func(context.Context) error { return errors.New("refused") }),
	))

	w := serve(app, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestApp_ErrorHandling(t *testing.T) {
	t.Parallel()

	h := routes(func(r internal.Router) {
		r.GET("/conflict", func(c internal.Context) error {
			return internal.ErrConflict("A batch send is already running")
		})
		r.GET("/boom", func(c internal.Context) error {
			return errors.New("boom")
		})
		r.GET("/late", func(c internal.Context) error {
			_ = c.String(http.StatusOK, "partial")
			return errors.New("after write")
		})
	})

	t.Run("default handler", func(t *testing.T) {
		t.Parallel()

		app := internal.New(internal.WithHandlers(h))

		w := serve(app, httptest.NewRequest(http.MethodGet, "/conflict", nil))
		require.Equal(t, http.StatusConflict, w.Code)
		require.Equal(t, "A batch send is already running\n", w.Body.String())

		w = serve(app, httptest.NewRequest(http.MethodGet, "/boom", nil))
		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.NotContains(t, w.Body.String(), "boom")

		w = serve(app, httptest.NewRequest(http.MethodGet, "/late", nil))
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "partial", w.Body.String())
	})

	t.Run("custom handler", func(t *testing.T) {
		t.Parallel()

		app := internal.New(
			internal.WithHandlers(h),
			internal.WithErrorHandler(func(c internal.Context, err error) error {
				if herr := internal.AsHTTPError(err); herr != nil {
					return c.JSON(herr.Code, map[string]string{"error": herr.Message})
				}
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
			}),
		)

		w := serve(app, httptest.NewRequest(http.MethodGet, "/conflict", nil))
		require.Equal(t, http.StatusConflict, w.Code)
		require.JSONEq(t, `{"error":"A batch send is already running"}`, w.Body.String())

		w = serve(app, httptest.NewRequest(http.MethodGet, "/boom", nil))
		require.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
	})
}

func TestApp_NotFound(t *testing.T) {
	t.Parallel()

	app := internal.New(
		internal.WithNotFoundHandler(func(c internal.Context) error {
			return c.String(http.StatusNotFound, "nothing here")
		}),
		internal.WithMethodNotAllowedHandler(func(c internal.Context) error {
			return c.String(http.StatusMethodNotAllowed, "wrong method")
		}),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.POST("/send", func(c internal.Context) error { return c.NoContent(http.StatusAccepted) })
		})),
	)

	w := serve(app, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "nothing here", w.Body.String())

	w = serve(app, httptest.NewRequest(http.MethodGet, "/send", nil))
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	require.Equal(t, "wrong method", w.Body.String())
}

func TestApp_Middleware(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(name string) internal.Middleware {
		return func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context) error {
				order = append(order, name)
				return next(c)
			}
		}
	}

	app := internal.New(
		internal.WithMiddleware(mark("global")),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.Route("/api", func(r internal.Router) {
				r.Use(mark("group"))
				r.GET("/ping", func(c internal.Context) error {
					order = append(order, "handler")
					return c.String(http.StatusOK, "pong")
				}, mark("route-1"), mark("route-2"))
			})
		})),
	)

	w := serve(app, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	require.Equal(t, "pong", w.Body.String())
	require.Equal(t, []string{"global", "group", "route-1", "route-2", "handler"}, order)
}

func TestApp_MiddlewareError(t *testing.T) {
	t.Parallel()

	deny := func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			return internal.ErrBadRequest("denied")
		}
	}

	app := internal.New(
		internal.WithMiddleware(deny),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/", func(c internal.Context) error { return c.String(http.StatusOK, "ok") })
		})),
	)

	w := serve(app, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "denied\n", w.Body.String())
}

func TestApp_StaticFiles(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"assets/static/app.css": {Data: []byte("body{margin:0}")},
	}
	app := internal.New(internal.WithStaticFiles("/static/", fsys, "assets/static"))

	w := serve(app, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "body{margin:0}", w.Body.String())
	require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	require.True(t, strings.HasPrefix(w.Header().Get("Cache-Control"), "public"))

	w = serve(app, httptest.NewRequest(http.MethodGet, "/static/", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}
