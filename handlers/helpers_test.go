package handlers_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bulkmail"
	"github.com/dmitrymomot/bulkmail/handlers"
	"github.com/dmitrymomot/bulkmail/pkg/cache"
	"github.com/dmitrymomot/bulkmail/pkg/campaign"
	"github.com/dmitrymomot/bulkmail/pkg/cookie"
	"github.com/dmitrymomot/bulkmail/pkg/htmx"
	"github.com/dmitrymomot/bulkmail/pkg/mailer"
	"github.com/dmitrymomot/bulkmail/pkg/session"
	"github.com/dmitrymomot/bulkmail/pkg/storage"
	"github.com/dmitrymomot/bulkmail/pkg/subscription"
)

const testSecret = "0123456789abcdef0123456789abcdef"

const recipientsCSV = "Name,Email\nAnn,ann@example.com\nBob,bob@example.com\n"

type deliverer struct {
	mock.Mock
}

func (d *deliverer) Send(_ context.Context, msg campaign.Message) (*mailer.Receipt, error) {
	args := d.Called(msg.ToEmail)
	if r, _ := args.Get(0).(*mailer.Receipt); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type subscriptions struct {
	mock.Mock
}

func (s *subscriptions) FetchUnsubscribed(context.Context) (subscription.Set, error) {
	args := s.Called()
	set, _ := args.Get(0).(subscription.Set)
	return set, args.Error(1)
}

type rawSender struct {
	mock.Mock
}

func (s *rawSender) SendRaw(_ context.Context, email *mailer.Email) (*mailer.Receipt, error) {
	args := s.Called(email)
	if r, _ := args.Get(0).(*mailer.Receipt); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type archive struct {
	mock.Mock
}

func (a *archive) Put(_ context.Context, r io.Reader, size int64, _ ...storage.Option) (*storage.FileInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	args := a.Called(string(data), size)
	if info, _ := args.Get(0).(*storage.FileInfo); info != nil {
		return info, args.Error(1)
	}
	return nil, args.Error(1)
}

func (a *archive) Get(_ context.Context, key string) (io.ReadCloser, error) {
	args := a.Called(key)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader(args.String(0))), nil
}

func (a *archive) Delete(_ context.Context, key string) error {
	return a.Called(key).Error(0)
}

// env is an app wired the way main wires it, with the provider and the
// subscription endpoint mocked.
type env struct {
	app       http.Handler
	runner    *campaign.Runner
	deliverer *deliverer
	subs      *subscriptions
	sender    *rawSender
}

func newEnv(t *testing.T, opts ...bulkmail.Option) *env {
	t.Helper()

	mem := cache.NewMemory[session.Session]()
	t.Cleanup(func() { _ = mem.Close() })
	store := session.NewCacheStore(mem)

	e := &env{
		deliverer: &deliverer{},
		subs:      &subscriptions{},
		sender:    &rawSender{},
	}
	processor := campaign.NewProcessor(e.subs, e.deliverer)
	e.runner = campaign.NewRunner(processor, nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.runner.Wait(ctx)
	})

	opts = append([]bulkmail.Option{
		bulkmail.WithCookies(cookie.New(cookie.WithSecret(testSecret))),
		bulkmail.WithSession(store),
		bulkmail.WithErrorHandler(handlers.ErrorHandler),
		bulkmail.WithNotFoundHandler(handlers.NotFound),
		bulkmail.WithMethodNotAllowedHandler(handlers.MethodNotAllowed),
		bulkmail.WithHandlers(
			handlers.NewComposer(e.runner),
			handlers.NewRecipients(e.runner, handlers.RecipientsConfig{MaxBytes: 1024}),
			handlers.NewSend(processor, e.runner, store),
			handlers.NewAPI(e.sender, e.subs),
		),
	}, opts...)
	e.app = bulkmail.New(opts...)
	return e
}

// wait blocks until background runs are done.
func (e *env) wait(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.runner.Wait(ctx))
}

// browser keeps cookies between requests.
type browser struct {
	app     http.Handler
	cookies map[string]*http.Cookie
}

func (e *env) browser() *browser {
	return &browser{app: e.app, cookies: make(map[string]*http.Cookie)}
}

func (b *browser) do(r *http.Request) *httptest.ResponseRecorder {
	for _, c := range b.cookies {
		r.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}

	w := httptest.NewRecorder()
	b.app.ServeHTTP(w, r)

	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return w
}

func (b *browser) get(target string, htmxRequest bool) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	if htmxRequest {
		r.Header.Set(htmx.HeaderHXRequest, "true")
	}
	return b.do(r)
}

func (b *browser) post(target string, form url.Values, htmxRequest bool) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmxRequest {
		r.Header.Set(htmx.HeaderHXRequest, "true")
	}
	return b.do(r)
}

func (b *browser) upload(t *testing.T, filename, content string, htmxRequest bool) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("recipients", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/recipients/upload", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	if htmxRequest {
		r.Header.Set(htmx.HeaderHXRequest, "true")
	}
	return b.do(r)
}

func composeForm() url.Values {
	return url.Values{
		"from":    {"news@example.com"},
		"subject": {"Spring update"},
		"body":    {"<p>Hello</p>"},
	}
}
