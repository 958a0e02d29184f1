package campaign

// BodyFormat selects the part of the message the provider receives.
type BodyFormat string

const (
	FormatHTML BodyFormat = "html"
	FormatText BodyFormat = "text"
)

// Config holds the links and format used when rendering messages.
// Both links are built by appending "=" and the recipient address to the base URL.
// The subscribe line is omitted when SubscribeURL is empty.
type Config struct {
	UnsubscribeURL string     `env:"UNSUBSCRIBE_URL"`
	SubscribeURL   string     `env:"SUBSCRIBE_URL"`
	BodyFormat     BodyFormat `env:"MAIL_BODY_FORMAT" envDefault:"html"`
}
