package worker

import (
	"errors"
	"time"
)

// ErrInboxFull is returned when the audit inbox cannot accept another event
// without blocking. Callers log and continue; audit loss is preferable to
// stalling a transition.
var ErrInboxFull = errors.New("audit inbox full")

// timeNow is swapped in tests.
var timeNow = time.Now
