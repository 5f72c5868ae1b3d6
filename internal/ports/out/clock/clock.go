package clock

import "time"

// Clock provides time to the application.
// Now is expected to return UTC; display-zone conversion happens only on read outputs.
type Clock interface {
	Now() time.Time
}
