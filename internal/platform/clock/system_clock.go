package clock

import (
	"fmt"
	"time"
	_ "time/tzdata" // containers often ship without a zoneinfo database
)

// SystemClock returns the current wall-clock time.
type SystemClock struct{}

func NewSystemClock() SystemClock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// DefaultDisplayZone is the regional zone read outputs are rendered in.
const DefaultDisplayZone = "Asia/Kolkata"

// LoadDisplayZone loads the zone used for read outputs. Stored values stay UTC.
func LoadDisplayZone(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultDisplayZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load display timezone %q: %w", name, err)
	}
	return loc, nil
}
