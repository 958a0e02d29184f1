package htmx

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// Renderable is anything that renders to a writer. templ.Component satisfies it.
type Renderable interface {
	Render(ctx context.Context, w io.Writer) error
}

// Config collects response headers and out-of-band components for one render.
type Config struct {
	triggerDetails      map[string]any
	OOBComponents       []Renderable
	Retarget            string
	Reswap              SwapStrategy
	PushURL             string
	Triggers            []string
	TriggersAfterSettle []string
	Refresh             bool
}

// RenderOption configures a render.
type RenderOption func(*Config)

// NewConfig creates a Config from options.
func NewConfig(opts ...RenderOption) *Config {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// ApplyHeaders writes the configured HX-* headers. Call it before WriteHeader.
func (c *Config) ApplyHeaders(w http.ResponseWriter) {
	if c == nil {
		return
	}

	h := w.Header()
	if c.Retarget != "" {
		h.Set(HeaderHXRetarget, c.Retarget)
	}
	if c.Reswap != "" {
		h.Set(HeaderHXReswap, string(c.Reswap))
	}
	if c.PushURL != "" {
		h.Set(HeaderHXPushURL, c.PushURL)
	}
	if v := c.triggerHeader(); v != "" {
		h.Set(HeaderHXTrigger, v)
	}
	if len(c.TriggersAfterSettle) > 0 {
		h.Set(HeaderHXTriggerAfterSettle, strings.Join(c.TriggersAfterSettle, ", "))
	}
	if c.Refresh {
		h.Set(HeaderHXRefresh, "true")
	}
}

// triggerHeader uses the plain comma-separated form unless an event carries detail,
// in which case all events are encoded as a JSON object.
func (c *Config) triggerHeader() string {
	if len(c.Triggers) == 0 {
		return ""
	}
	if len(c.triggerDetails) == 0 {
		return strings.Join(c.Triggers, ", ")
	}

	events := make(map[string]any, len(c.Triggers))
	for _, name := range c.Triggers {
		events[name] = c.triggerDetails[name]
	}
	data, err := json.Marshal(events)
	if err != nil {
		return strings.Join(c.Triggers, ", ")
	}
	return string(data)
}

// WithOOB appends out-of-band components rendered after the main one.
// Each component must carry an id and hx-swap-oob.
func WithOOB(components ...Renderable) RenderOption {
	return func(c *Config) {
		c.OOBComponents = append(c.OOBComponents, components...)
	}
}

// WithRetarget swaps the response into selector instead of the requested target.
func WithRetarget(selector string) RenderOption {
	return func(c *Config) {
		c.Retarget = selector
	}
}

// WithReswap overrides the swap strategy.
func WithReswap(strategy SwapStrategy) RenderOption {
	return func(c *Config) {
		c.Reswap = strategy
	}
}

// WithPushURL pushes url onto the browser history. Pass "false" to suppress.
func WithPushURL(url string) RenderOption {
	return func(c *Config) {
		c.PushURL = url
	}
}

// WithTrigger fires client-side events once the response is received.
func WithTrigger(events ...string) RenderOption {
	return func(c *Config) {
		c.Triggers = append(c.Triggers, events...)
	}
}

// WithTriggerDetail fires event with a JSON detail payload.
func WithTriggerDetail(event string, detail any) RenderOption {
	return func(c *Config) {
		if c.triggerDetails == nil {
			c.triggerDetails = make(map[string]any)
		}
		c.triggerDetails[event] = detail
		c.Triggers = append(c.Triggers, event)
	}
}

// WithTriggerAfterSettle fires events after the settle phase.
func WithTriggerAfterSettle(events ...string) RenderOption {
	return func(c *Config) {
		c.TriggersAfterSettle = append(c.TriggersAfterSettle, events...)
	}
}

// WithRefresh forces a full page refresh.
func WithRefresh() RenderOption {
	return func(c *Config) {
		c.Refresh = true
	}
}
