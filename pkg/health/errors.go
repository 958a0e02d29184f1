package health

import "errors"

// ErrCheckTimeout wraps check failures caused by the probe deadline.
var ErrCheckTimeout = errors.New("health: check timeout")
