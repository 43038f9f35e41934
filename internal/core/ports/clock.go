package ports

import "time"

// Clock is the server-side time source. Acceptance times and cancellation windows use it.
type Clock interface {
	Now() time.Time
}
