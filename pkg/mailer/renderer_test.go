package mailer

import (
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func messageFS() fstest.MapFS {
	return fstest.MapFS{
		"layouts/base.html": &fstest.MapFile{
			Data: []byte(`<html><body>{{.Content}}<footer>{{.Metadata.Footer}}</footer></body></html>`),
		},
		"message.md": &fstest.MapFile{
			Data: []byte("---\nSubject: Hello {{.Name}}\nFooter: sent by bulkmail\n---\nHello **{{.Name}}**,\n\n{{.Body}}\n"),
		},
	}
}

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	r := NewRenderer(messageFS())

	result, err := r.Render("base.html", "message.md", map[string]string{
		"Name": "Ann",
		"Body": "See you <em>soon</em>.",
	})
	require.NoError(t, err)

	require.Contains(t, result.Text, "Hello **Ann**,")
	require.NotContains(t, result.Text, "<strong>")
	require.Contains(t, result.HTML, "<strong>Ann</strong>")
	require.Contains(t, result.HTML, "<footer>sent by bulkmail</footer>")
	require.NotContains(t, result.HTML, "<em>soon</em>", "raw HTML is omitted unless allowed")
	require.Equal(t, "Hello {{.Name}}", result.Metadata["Subject"])
}

func TestRenderer_Render_AllowHTML(t *testing.T) {
	t.Parallel()

	r := NewRendererWithConfig(messageFS(), RendererConfig{AllowHTML: true})

	result, err := r.Render("base.html", "message.md", map[string]string{
		"Name": "Ann",
		"Body": "See you <em>soon</em>.",
	})
	require.NoError(t, err)
	require.Contains(t, result.HTML, "<em>soon</em>")
}

func TestRenderer_Render_Errors(t *testing.T) {
	t.Parallel()

	r := NewRenderer(messageFS())

	_, err := r.Render("base.html", "missing.md", nil)
	require.ErrorIs(t, err, ErrTemplateNotFound)

	_, err = r.Render("missing.html", "message.md", map[string]string{"Name": "Ann"})
	require.ErrorIs(t, err, ErrLayoutNotFound)
}

func TestRenderer_Render_CachesParsedFiles(t *testing.T) {
	t.Parallel()

	var reads atomic.Int32
	cfs := &countingFS{MapFS: messageFS(), reads: &reads}
	r := NewRenderer(cfs)

	for _, name := range []string{"Ann", "Bob", "Cid"} {
		result, err := r.Render("base.html", "message.md", map[string]string{"Name": name})
		require.NoError(t, err)
		require.Contains(t, result.Text, name)
	}

	require.Equal(t, int32(2), reads.Load(), "template and layout are read once")
}

func TestRenderer_Render_Concurrent(t *testing.T) {
	t.Parallel()

	r := NewRenderer(messageFS())

	var (
		wg     sync.WaitGroup
		failed atomic.Int32
	)
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := r.Render("base.html", "message.md", map[string]int{"Name": i})
			if err != nil || result.HTML == "" {
				failed.Add(1)
			}
		}(i)
	}
	wg.Wait()

	require.Zero(t, failed.Load())
}

type countingFS struct {
	fstest.MapFS
	reads *atomic.Int32
}

func (c *countingFS) ReadFile(name string) ([]byte, error) {
	c.reads.Add(1)
	return c.MapFS.ReadFile(name)
}
