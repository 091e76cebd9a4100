// Package view holds the workout form, the list and the alert surface.
package view

import (
	"context"
	"sync"

	"github.com/okian/pinlog/internal/domain/model"
	"github.com/okian/pinlog/internal/domain/types"
)

// Form is the visible state of the entry form.
type Form struct {
	Visible bool       `json:"visible"`
	Kind    model.Kind `json:"kind"`
	// Only one of the kind-specific fields is shown at a time.
	ShowCadence   bool `json:"show_cadence"`
	ShowElevation bool `json:"show_elevation"`
}

// Snapshot is a point-in-time copy of the panel.
type Snapshot struct {
	Form      Form        `json:"form"`
	Rows      []types.Row `json:"rows"`
	LastAlert string      `json:"last_alert,omitempty"`
	Alerts    int         `json:"alerts"`
}

// Panel is an in-memory view safe for concurrent use.
type Panel struct {
	mu     sync.RWMutex
	form   Form
	rows   []types.Row
	alert  string
	alerts int
}

// NewPanel returns a panel with a hidden running form.
func NewPanel() *Panel {
	p := &Panel{}
	p.form = defaultForm()
	return p
}

func defaultForm() Form {
	return Form{Kind: model.Running, ShowCadence: true}
}

// ShowForm reveals the form.
func (p *Panel) ShowForm(_ context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.form.Visible = true
}

// HideForm hides the form. The selected kind stays.
func (p *Panel) HideForm(_ context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.form.Visible = false
}

// ToggleKind switches between the cadence and elevation fields.
func (p *Panel) ToggleKind(_ context.Context, kind model.Kind) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.form.Kind = kind
	p.form.ShowCadence = kind == model.Running
	p.form.ShowElevation = kind == model.Cycling
}

// AppendRow inserts row directly beneath the form, so rows read newest first.
func (p *Panel) AppendRow(_ context.Context, row types.Row) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rows = append([]types.Row{row}, p.rows...)
}

// Alert shows msg to the user.
func (p *Panel) Alert(_ context.Context, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alert = msg
	p.alerts++
}

// ClearAlert dismisses the last alert.
func (p *Panel) ClearAlert(_ context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alert = ""
}

// Reset empties the list and restores the initial form.
func (p *Panel) Reset(_ context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.form = defaultForm()
	p.rows = nil
	p.alert = ""
}

// Snapshot returns a copy of the panel.
func (p *Panel) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	rows := make([]types.Row, len(p.rows))
	copy(rows, p.rows)
	return Snapshot{
		Form:      p.form,
		Rows:      rows,
		LastAlert: p.alert,
		Alerts:    p.alerts,
	}
}
