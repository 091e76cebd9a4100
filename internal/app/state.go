package service

// State is the lifecycle state of a session.
type State int

// Session states.
const (
	Uninitialized State = iota
	AwaitingLocation
	MapReady
	FormOpen
	// Degraded means geolocation failed: the list works, the map does not.
	Degraded
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case AwaitingLocation:
		return "awaiting_location"
	case MapReady:
		return "map_ready"
	case FormOpen:
		return "form_open"
	case Degraded:
		return "degraded"
	}
	return "unknown"
}

// MarshalText renders the state name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s State) mapReady() bool {
	return s == MapReady || s == FormOpen
}
