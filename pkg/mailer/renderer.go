package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sync"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer turns markdown templates with YAML frontmatter into HTML wrapped in a layout.
// Parsed templates and layouts are cached; rendered output never is.
type Renderer struct {
	fs        fs.FS
	md        goldmark.Markdown
	templates map[string]*parsedTemplate
	layouts   map[string]*template.Template
	cfg       RendererConfig
	mu        sync.RWMutex
}

type parsedTemplate struct {
	metadata map[string]any
	body     *texttemplate.Template
}

// RendererConfig configures the renderer.
type RendererConfig struct {
	TemplateDir string // Default: "."
	LayoutDir   string // Default: "layouts"

	// AllowHTML passes raw HTML in the markdown through to the output.
	// Only enable it when every interpolated value has been sanitized.
	AllowHTML bool
}

// NewRenderer creates a new renderer with default config.
func NewRenderer(filesystem fs.FS) *Renderer {
	return NewRendererWithConfig(filesystem, RendererConfig{})
}

// NewRendererWithConfig creates a new renderer with custom config.
func NewRendererWithConfig(filesystem fs.FS, cfg RendererConfig) *Renderer {
	if cfg.TemplateDir == "" {
		cfg.TemplateDir = "."
	}
	if cfg.LayoutDir == "" {
		cfg.LayoutDir = "layouts"
	}

	htmlOpts := []renderer.Option{html.WithHardWraps()}
	if cfg.AllowHTML {
		htmlOpts = append(htmlOpts, html.WithUnsafe())
	}

	return &Renderer{
		fs:        filesystem,
		cfg:       cfg,
		templates: make(map[string]*parsedTemplate),
		layouts:   make(map[string]*template.Template),
		md: goldmark.New(
			goldmark.WithExtensions(NewButtonExtension()),
			goldmark.WithRendererOptions(htmlOpts...),
		),
	}
}

// RenderResult contains the rendered HTML, plain text, and extracted metadata.
type RenderResult struct {
	Metadata map[string]any
	HTML     string
	Text     string // executed markdown, before HTML conversion
}

// Render executes the named template with data, converts it to HTML and wraps it in layout.
// The layout receives .Content and .Metadata.
func (r *Renderer) Render(layout, templateName string, data any) (*RenderResult, error) {
	tmpl, err := r.template(templateName)
	if err != nil {
		return nil, err
	}

	var markdown bytes.Buffer
	if err := tmpl.body.Execute(&markdown, data); err != nil {
		return nil, fmt.Errorf("%w: execute %s: %v", ErrRenderFailed, templateName, err)
	}

	var content bytes.Buffer
	if err := r.md.Convert(markdown.Bytes(), &content); err != nil {
		return nil, fmt.Errorf("%w: convert markdown: %v", ErrRenderFailed, err)
	}

	layoutTmpl, err := r.layout(layout)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	err = layoutTmpl.Execute(&out, map[string]any{
		"Content":  template.HTML(content.String()), //nolint:gosec // produced by goldmark
		"Metadata": tmpl.metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: execute layout %s: %v", ErrRenderFailed, layout, err)
	}

	return &RenderResult{
		HTML:     out.String(),
		Text:     markdown.String(),
		Metadata: tmpl.metadata,
	}, nil
}

func (r *Renderer) template(name string) (*parsedTemplate, error) {
	return cached(&r.mu, r.templates, name, func() (*parsedTemplate, error) {
		content, err := fs.ReadFile(r.fs, path.Join(r.cfg.TemplateDir, name))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, name, err)
		}

		parsed, err := ParseTemplate(content)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
		}

		body, err := texttemplate.New(name).Parse(parsed.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", ErrRenderFailed, name, err)
		}

		return &parsedTemplate{metadata: parsed.Metadata, body: body}, nil
	})
}

func (r *Renderer) layout(name string) (*template.Template, error) {
	return cached(&r.mu, r.layouts, name, func() (*template.Template, error) {
		content, err := fs.ReadFile(r.fs, path.Join(r.cfg.LayoutDir, name))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLayoutNotFound, name, err)
		}

		tmpl, err := template.New(name).Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("%w: parse layout %s: %v", ErrRenderFailed, name, err)
		}
		return tmpl, nil
	})
}

// cached returns m[key], calling load under the write lock on a miss.
func cached[V any](mu *sync.RWMutex, m map[string]V, key string, load func() (V, error)) (V, error) {
	mu.RLock()
	v, ok := m[key]
	mu.RUnlock()
	if ok {
		return v, nil
	}

	mu.Lock()
	defer mu.Unlock()

	if v, ok := m[key]; ok {
		return v, nil
	}

	v, err := load()
	if err != nil {
		var zero V
		return zero, err
	}
	m[key] = v
	return v, nil
}
