package mapview

// Default tile layer.
const (
	DefaultTileURL     = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultAttribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`
)

// Option applies a configuration option to the Canvas.
type Option func(*Canvas)

// WithTiles sets the tile URL template and its attribution.
func WithTiles(url, attribution string) Option {
	return func(c *Canvas) {
		if url != "" {
			c.tileURL = url
		}
		if attribution != "" {
			c.attribution = attribution
		}
	}
}

// ViewOption modifies a single SetView call.
type ViewOption func(*viewChange)

type viewChange struct {
	animate  bool
	duration float64
}

// Animated asks for a pan animation lasting seconds.
func Animated(seconds float64) ViewOption {
	return func(v *viewChange) {
		if seconds > 0 {
			v.animate = true
			v.duration = seconds
		}
	}
}
