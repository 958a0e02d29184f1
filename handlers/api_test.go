package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bulkmail"
	"github.com/dmitrymomot/bulkmail/handlers"
	"github.com/dmitrymomot/bulkmail/pkg/campaign"
	"github.com/dmitrymomot/bulkmail/pkg/mailer"
	"github.com/dmitrymomot/bulkmail/pkg/subscription"
)

func postJSON(e *env, target, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.app.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	require.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "application/json"))
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestAPI_SendEmail(t *testing.T) {
	t.Parallel()

	const payload = `{"from":"news@example.com","to":"ann@example.com","subject":"Hi","body":"<p>Hello</p>"}`

	t.Run("relays the message", func(t *testing.T) {
		t.Parallel()

		e := newEnv(t)
		e.sender.On("SendRaw", mock.MatchedBy(func(m *mailer.Email) bool {
			return m.From == "news@example.com" &&
				len(m.To) == 1 && m.To[0] == "ann@example.com" &&
				m.Subject == "Hi" && m.HTML == "<p>Hello</p>"
		})).Return(&mailer.Receipt{ID: "msg-1", Provider: "resend"}, nil).Once()

		w := postJSON(e, "/api/send-email", payload)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, map[string]any{"id": "msg-1"}, decode(t, w))
		e.sender.AssertExpectations(t)
	})

	t.Run("provider error is returned as is", func(t *testing.T) {
		t.Parallel()

		e := newEnv(t)
		e.sender.On("SendRaw", mock.Anything).
			Return(nil, errors.Join(mailer.ErrSendFailed, errors.New("resend: domain is not verified"))).Once()

		w := postJSON(e, "/api/send-email", payload)
		require.Equal(t, http.StatusBadGateway, w.Code)
		require.Equal(t, map[string]any{"error": "resend: domain is not verified"}, decode(t, w))
	})

	t.Run("incomplete message", func(t *testing.T) {
		t.Parallel()

		e := newEnv(t)
		e.sender.On("SendRaw", mock.Anything).Return(nil, mailer.ErrNoSubject).Once()

		w := postJSON(e, "/api/send-email", `{"to":"ann@example.com","body":"x"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, map[string]any{"error": mailer.ErrNoSubject.Error()}, decode(t, w))
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		e := newEnv(t)

		w := postJSON(e, "/api/send-email", `{"to":`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, map[string]any{"error": "invalid JSON"}, decode(t, w))
		e.sender.AssertNotCalled(t, "SendRaw", mock.Anything)
	})
}

func TestAPI_SendEmail_TextFormat(t *testing.T) {
	t.Parallel()

	sender := &rawSender{}
	sender.On("SendRaw", mock.MatchedBy(func(m *mailer.Email) bool {
		return m.HTML == "" && m.Text == "Tom & Jerry say <b>hi</b>"
	})).Return(&mailer.Receipt{ID: "msg-2"}, nil).Once()

	app := bulkmail.New(bulkmail.WithHandlers(
		handlers.NewAPI(sender, &subscriptions{}, handlers.WithBodyFormat(campaign.FormatText)),
	))

	r := httptest.NewRequest(http.MethodPost, "/api/send-email",
		strings.NewReader(`{"from":"news@example.com","to":"ann@example.com","subject":"Hi","body":"Tom & Jerry say <b>hi</b>"}`))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	app.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, map[string]any{"id": "msg-2"}, decode(t, w))
	sender.AssertExpectations(t)
}

func TestAPI_SubscribeEmails(t *testing.T) {
	t.Parallel()

	t.Run("lists unsubscribed addresses", func(t *testing.T) {
		t.Parallel()

		e := newEnv(t)
		e.subs.On("FetchUnsubscribed").Return(subscription.NewSet("ann@example.com"), nil).Once()

		w := httptest.NewRecorder()
		e.app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/subscribe-emails", nil))
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, map[string]any{"emails": []any{"ann@example.com"}}, decode(t, w))
	})

	t.Run("empty list", func(t *testing.T) {
		t.Parallel()

		e := newEnv(t)
		e.subs.On("FetchUnsubscribed").Return(subscription.NewSet(), nil).Once()

		w := httptest.NewRecorder()
		e.app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/subscribe-emails", nil))
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, map[string]any{"emails": []any{}}, decode(t, w))
	})

	t.Run("upstream failure", func(t *testing.T) {
		t.Parallel()

		e := newEnv(t)
		e.subs.On("FetchUnsubscribed").Return(nil, errors.New("connection refused")).Once()

		w := httptest.NewRecorder()
		e.app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/subscribe-emails", nil))
		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.Equal(t, map[string]any{"error": "Internal server error"}, decode(t, w))
	})
}

func TestAPI_ErrorsAreJSON(t *testing.T) {
	t.Parallel()

	e := newEnv(t)

	w := httptest.NewRecorder()
	e.app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/send-email", nil))
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	require.Equal(t, map[string]any{"error": "Method Not Allowed"}, decode(t, w))
}
