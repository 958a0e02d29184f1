package mailer

import "fmt"

// Tags are provider tags attached to a message.
// Presence-only tags use struct{}{} as the value; providers that need a
// value for every tag convert them to "true".
type Tags map[string]any

// SimpleTags creates presence-only tags from a list of names.
func SimpleTags(names ...string) Tags {
	t := make(Tags, len(names))
	for _, n := range names {
		t[n] = struct{}{}
	}
	return t
}

// Recipient formats a name and address as "Name <email>".
// The bare address is returned when name is empty.
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// Email is a message ready for a Sender.
type Email struct {
	Headers map[string]string
	Tags    Tags
	Subject string
	HTML    string
	Text    string
	From    string
	ReplyTo string
	To      []string
}

// HasContent reports whether the message carries an HTML or plain-text part.
func (e *Email) HasContent() bool {
	return e.HTML != "" || e.Text != ""
}
