package live

import "errors"

// ErrSessionClosed is returned by writes after a session has been
// torn down.
var ErrSessionClosed = errors.New("live: session closed")
