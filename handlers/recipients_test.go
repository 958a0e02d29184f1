package handlers_test

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bulkmail"
	"github.com/dmitrymomot/bulkmail/pkg/campaign"
	"github.com/dmitrymomot/bulkmail/pkg/storage"
)

func TestRecipients_Upload(t *testing.T) {
	t.Parallel()

	t.Run("loads a csv file", func(t *testing.T) {
		t.Parallel()

		b := newEnv(t).browser()

		w := b.upload(t, "list.csv", recipientsCSV, true)
		require.Equal(t, http.StatusOK, w.Code)

		body := w.Body.String()
		require.True(t, strings.HasPrefix(body, `<section id="recipients"`))
		require.Contains(t, body, "ann@example.com")
		require.Contains(t, body, "bob@example.com")
		require.Contains(t, body, "Total 2")
		require.Contains(t, body, `hx-swap-oob="true"`)
		require.Contains(t, body, "Loaded 2 recipients from list.csv")

		page := b.get("/?tab=recipients", false).Body.String()
		require.Contains(t, page, "list.csv")
		require.Contains(t, page, "bob@example.com")
	})

	tests := []struct {
		name     string
		filename string
		content  string
		message  string
	}{
		{
			name:     "legacy workbook",
			filename: "list.xls",
			content:  "\xD0\xCF\x11\xE0\xA1\xB1\x1A\xE1rest of the file",
			message:  "only .xlsx and .csv files are supported",
		},
		{
			name:     "plain text",
			filename: "list.txt",
			content:  recipientsCSV,
			message:  "only .xlsx and .csv files are supported",
		},
		{
			name:     "missing columns",
			filename: "list.csv",
			content:  "First,Address\nAnn,ann@example.com\n",
			message:  "The file must have Name and Email columns",
		},
		{
			name:     "too large",
			filename: "list.csv",
			content:  "Name,Email\n" + strings.Repeat("Ann,ann@example.com\n", 100),
			message:  "exceeds limit of 1024 bytes",
		},
		{
			name:     "empty file",
			filename: "list.csv",
			content:  "",
			message:  "file is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := newEnv(t).browser()

			w := b.upload(t, tt.filename, tt.content, false)
			require.Equal(t, http.StatusUnprocessableEntity, w.Code)
			require.Contains(t, w.Body.String(), tt.message)

			w = b.upload(t, tt.filename, tt.content, true)
			require.Equal(t, http.StatusOK, w.Code)
			require.Equal(t, "#status", w.Header().Get("HX-Retarget"))
			require.Contains(t, w.Body.String(), tt.message)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		b := newEnv(t).browser()

		w := b.post("/recipients/upload", url.Values{}, false)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		require.Contains(t, w.Body.String(), campaign.MsgNoRecipients)
	})
}

func TestRecipients_Archive(t *testing.T) {
	t.Parallel()

	t.Run("upload is archived and reset reloads it", func(t *testing.T) {
		t.Parallel()

		store := &archive{}
		store.On("Put", recipientsCSV, int64(len(recipientsCSV))).
			Return(&storage.FileInfo{Key: "recipients/list.csv"}, nil).Once()
		store.On("Get", "recipients/list.csv").
			Return("Name,Email\nCat,cat@example.com\n", nil).Once()

		b := newEnv(t, bulkmail.WithStorage(store)).browser()

		w := b.upload(t, "list.csv", recipientsCSV, true)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "ann@example.com")

		w = b.post("/recipients/reset", url.Values{}, true)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "cat@example.com")
		require.NotContains(t, w.Body.String(), "ann@example.com")
		require.Contains(t, w.Body.String(), "Recipient statuses reset")

		store.AssertExpectations(t)
	})

	t.Run("archive failures fall back to the session", func(t *testing.T) {
		t.Parallel()

		store := &archive{}
		store.On("Put", mock.Anything, mock.Anything).
			Return(&storage.FileInfo{Key: "recipients/list.csv"}, nil).Once()
		store.On("Get", "recipients/list.csv").
			Return("", storage.ErrNotFound).Once()

		b := newEnv(t, bulkmail.WithStorage(store)).browser()

		require.Equal(t, http.StatusOK, b.upload(t, "list.csv", recipientsCSV, true).Code)

		w := b.post("/recipients/reset", url.Values{}, true)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "ann@example.com")

		store.AssertExpectations(t)
	})

	t.Run("failed archive upload keeps the list", func(t *testing.T) {
		t.Parallel()

		store := &archive{}
		store.On("Put", mock.Anything, mock.Anything).
			Return(nil, errors.New("bucket unavailable")).Once()

		b := newEnv(t, bulkmail.WithStorage(store)).browser()

		w := b.upload(t, "list.csv", recipientsCSV, true)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "Loaded 2 recipients")

		w = b.post("/recipients/reset", url.Values{}, true)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "bob@example.com")

		store.AssertExpectations(t)
	})
}

func TestRecipients_Reset(t *testing.T) {
	t.Parallel()

	t.Run("nothing loaded", func(t *testing.T) {
		t.Parallel()

		b := newEnv(t).browser()

		w := b.post("/recipients/reset", url.Values{}, false)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		require.Contains(t, w.Body.String(), campaign.MsgNoRecipients)
	})

	t.Run("statuses become pending", func(t *testing.T) {
		t.Parallel()

		e := newEnv(t)
		e.subs.On("FetchUnsubscribed").Return(nil, nil)
		e.deliverer.On("Send", mock.Anything).Return(nil, nil)
		b := e.browser()

		require.Equal(t, http.StatusOK, b.upload(t, "list.csv", recipientsCSV, true).Code)
		require.Equal(t, http.StatusOK, b.post("/send", composeForm(), true).Code)
		e.wait(t)
		require.Contains(t, b.get("/recipients", true).Body.String(), "Sent 2")

		w := b.post("/recipients/reset", url.Values{}, true)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "Pending 2")
		require.Contains(t, w.Body.String(), "Sent 0")
	})
}

func TestRecipients_Table(t *testing.T) {
	t.Parallel()

	b := newEnv(t).browser()

	w := b.get("/recipients", false)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/?tab=recipients", w.Header().Get("Location"))

	w = b.get("/recipients", true)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "No recipients loaded.")
	require.NotContains(t, w.Body.String(), "hx-trigger")
}
