package campaign

import (
	"errors"
	"fmt"
)

var (
	ErrProcessing    = errors.New(MsgProcessingError)
	ErrDelivery      = errors.New("campaign: delivery failed")
	ErrRunInProgress = errors.New("campaign: a run is already in progress")
)

// ValidationError reports a missing input. Message is shown to the user as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// DeliveryError is returned when the provider rejects a message.
type DeliveryError struct {
	Err   error
	Email string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("campaign: deliver to %s: %v", e.Email, e.Err)
}

func (e *DeliveryError) Unwrap() []error {
	return []error{ErrDelivery, e.Err}
}

func deliveryError(email string, err error) error {
	var de *DeliveryError
	if errors.As(err, &de) {
		return err
	}
	return &DeliveryError{Email: email, Err: err}
}
