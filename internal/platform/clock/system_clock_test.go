package clock

import "testing"

func TestSystemClock_UTC(t *testing.T) {
	t.Parallel()

	if loc := NewSystemClock().Now().Location(); loc.String() != "UTC" {
		t.Fatalf("location=%v", loc)
	}
}

func TestLoadDisplayZone(t *testing.T) {
	t.Parallel()

	loc, err := LoadDisplayZone("")
	if err != nil {
		t.Fatalf("LoadDisplayZone err=%v", err)
	}
	if loc.String() != DefaultDisplayZone {
		t.Fatalf("loc=%v", loc)
	}
	if _, err := LoadDisplayZone("Mars/Olympus"); err == nil {
		t.Fatalf("expected error for unknown zone")
	}
}
