package memory

import "errors"

// The five error kinds from §7. ValidationCoerced has no sentinel: it is
// never surfaced as an error, it is silently coerced by the normalisation
// rules in write_memory. NotFound is likewise not an error: read_memory
// returns a nil item.

// ErrStoreUnavailable corresponds to StoreUnavailable: the driver cannot
// connect at startup, or a request-time session cannot be opened.
var ErrStoreUnavailable = errors.New("store unavailable")

// ErrStoreTransient corresponds to StoreTransient: a full-text query
// raised. Callers (search_memory) catch this and fall back to the
// substring path.
var ErrStoreTransient = errors.New("store transient failure")

// ErrProtocol corresponds to ProtocolError, used by the Tool Dispatcher
// for an unknown method or malformed request body.
var ErrProtocol = errors.New("protocol error")
