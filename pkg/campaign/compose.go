package campaign

import (
	"fmt"

	"github.com/dmitrymomot/bulkmail/pkg/roster"
)

// Status and validation messages shown to the user.
const (
	MsgFromRequired     = "From Email is required"
	MsgSubjectRequired  = "Email Subject is required"
	MsgBodyRequired     = "Email Body is required"
	MsgNoRecipients     = "Please upload a file with recipients"
	MsgSingleIncomplete = "Please enter both name and email for the single recipient"
	MsgAllProcessed     = "All emails processed"
	MsgProcessingError  = "Error processing emails"
	msgSingleSent       = "Email sent to %s"
	msgSingleFailed     = "Failed to send email to %s"
)

// SingleSentMessage is the status shown after a successful single send.
func SingleSentMessage(email string) string {
	return fmt.Sprintf(msgSingleSent, email)
}

// SingleFailedMessage is the status shown after a failed single send.
func SingleFailedMessage(email string) string {
	return fmt.Sprintf(msgSingleFailed, email)
}

// Compose is the message shared by every recipient of a send.
type Compose struct {
	From    string `json:"from"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Validate checks the fields in order and returns the first empty one.
// Whitespace counts as content.
func (c Compose) Validate() error {
	switch {
	case c.From == "":
		return &ValidationError{Field: "from", Message: MsgFromRequired}
	case c.Subject == "":
		return &ValidationError{Field: "subject", Message: MsgSubjectRequired}
	case c.Body == "":
		return &ValidationError{Field: "body", Message: MsgBodyRequired}
	}
	return nil
}

// Batch is a compose together with the recipients it goes to.
type Batch struct {
	Recipients *roster.Store `json:"recipients"`
	Compose    Compose       `json:"compose"`
}

// Validate checks the compose and that at least one recipient is loaded.
func (b *Batch) Validate() error {
	if err := b.Compose.Validate(); err != nil {
		return err
	}
	if b.Recipients == nil || b.Recipients.Len() == 0 {
		return &ValidationError{Field: "recipients", Message: MsgNoRecipients}
	}
	return nil
}

func validateSingle(name, email string) error {
	if name == "" || email == "" {
		return &ValidationError{Field: "single", Message: MsgSingleIncomplete}
	}
	return nil
}
