// Package mapview holds the server-side state of the workout map: the
// current view, the markers and the click handler.
package mapview

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/pinlog/internal/domain/model"
	"github.com/okian/pinlog/internal/domain/types"
)

// ClickHandler receives coordinates of a click on the map.
type ClickHandler func(ctx context.Context, coords model.Coordinates) error

// View is a point-in-time copy of the map state.
type View struct {
	Ready       bool              `json:"ready"`
	Center      model.Coordinates `json:"center"`
	Zoom        int               `json:"zoom"`
	Animate     bool              `json:"animate"`
	PanSeconds  float64           `json:"pan_seconds,omitempty"`
	TileURL     string            `json:"tile_url"`
	Attribution string            `json:"attribution"`
	Markers     []types.Marker    `json:"markers"`
}

// Canvas is an in-memory map safe for concurrent use.
type Canvas struct {
	mu          sync.RWMutex
	center      model.Coordinates
	zoom        int
	animate     bool
	panSeconds  float64
	centered    bool
	markers     []types.Marker
	handler     ClickHandler
	tileURL     string
	attribution string
}

// NewCanvas returns an empty canvas with the default tile layer.
func NewCanvas(opts ...Option) *Canvas {
	c := &Canvas{
		tileURL:     DefaultTileURL,
		attribution: DefaultAttribution,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetView centres the map on coords at zoom.
func (c *Canvas) SetView(_ context.Context, coords model.Coordinates, zoom int, opts ...ViewOption) error {
	if err := checkRange(coords); err != nil {
		return err
	}
	var change viewChange
	for _, opt := range opts {
		opt(&change)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.center = coords
	c.zoom = zoom
	c.animate = change.animate
	c.panSeconds = change.duration
	c.centered = true
	return nil
}

// AddMarker pins a marker; markers keep insertion order.
func (c *Canvas) AddMarker(_ context.Context, m types.Marker) error {
	if err := checkRange(m.Coords); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.markers = append(c.markers, m)
	return nil
}

// OnClick registers the handler that receives map clicks, replacing any
// previous one.
func (c *Canvas) OnClick(h ClickHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = h
}

// Click delivers a click at coords to the registered handler.
func (c *Canvas) Click(ctx context.Context, coords model.Coordinates) error {
	if err := checkRange(coords); err != nil {
		return err
	}

	c.mu.RLock()
	h := c.handler
	c.mu.RUnlock()

	if h == nil {
		return ErrNotReady
	}
	return h(ctx, coords)
}

// Reset removes the markers, the view and the click handler.
func (c *Canvas) Reset(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.center = model.Coordinates{}
	c.zoom = 0
	c.animate = false
	c.panSeconds = 0
	c.centered = false
	c.markers = nil
	c.handler = nil
}

// Snapshot returns a copy of the current state.
func (c *Canvas) Snapshot() View {
	c.mu.RLock()
	defer c.mu.RUnlock()

	markers := make([]types.Marker, len(c.markers))
	copy(markers, c.markers)
	return View{
		Ready:       c.centered && c.handler != nil,
		Center:      c.center,
		Zoom:        c.zoom,
		Animate:     c.animate,
		PanSeconds:  c.panSeconds,
		TileURL:     c.tileURL,
		Attribution: c.attribution,
		Markers:     markers,
	}
}

func checkRange(coords model.Coordinates) error {
	if !(coords.Lat >= -90 && coords.Lat <= 90) || !(coords.Lng >= -180 && coords.Lng <= 180) {
		return fmt.Errorf("%w: %v,%v", ErrInvalidCoordinates, coords.Lat, coords.Lng)
	}
	return nil
}
