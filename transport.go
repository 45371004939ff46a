package bridge

import "github.com/pysbridge/bridge/internal/core"

// Transport is the typed view of the shared global namespace the two
// runtimes communicate through. See internal/core.Transport.
type Transport = core.Transport
