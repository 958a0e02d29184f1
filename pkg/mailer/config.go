package mailer

// Defaults applied by New for empty Config fields.
const (
	DefaultFallbackSubject = "Notification"
	DefaultLayout          = "base.html"
)

// Config holds the defaults Mailer.Send falls back to.
type Config struct {
	// FallbackSubject is used when neither the params nor the template frontmatter set one.
	FallbackSubject string
	// DefaultLayout wraps templates sent without an explicit layout.
	DefaultLayout string
}

func (c Config) withDefaults() Config {
	if c.FallbackSubject == "" {
		c.FallbackSubject = DefaultFallbackSubject
	}
	if c.DefaultLayout == "" {
		c.DefaultLayout = DefaultLayout
	}
	return c
}
