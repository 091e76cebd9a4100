package view

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pinlog/internal/domain/model"
	"github.com/okian/pinlog/internal/domain/types"
)

func TestPanel(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new panel", t, func() {
		p := NewPanel()

		Convey("The form is hidden and set to running", func() {
			s := p.Snapshot()
			So(s.Form.Visible, ShouldBeFalse)
			So(s.Form.Kind, ShouldEqual, model.Running)
			So(s.Form.ShowCadence, ShouldBeTrue)
			So(s.Form.ShowElevation, ShouldBeFalse)
			So(s.Rows, ShouldBeEmpty)
		})

		Convey("ShowForm and HideForm toggle visibility", func() {
			p.ShowForm(ctx)
			So(p.Snapshot().Form.Visible, ShouldBeTrue)
			p.HideForm(ctx)
			So(p.Snapshot().Form.Visible, ShouldBeFalse)
		})

		Convey("ToggleKind swaps the kind-specific field", func() {
			p.ToggleKind(ctx, model.Cycling)
			s := p.Snapshot()
			So(s.Form.Kind, ShouldEqual, model.Cycling)
			So(s.Form.ShowCadence, ShouldBeFalse)
			So(s.Form.ShowElevation, ShouldBeTrue)

			p.HideForm(ctx)
			So(p.Snapshot().Form.Kind, ShouldEqual, model.Cycling)
		})

		Convey("Rows read newest first", func() {
			p.AppendRow(ctx, types.Row{ID: "first"})
			p.AppendRow(ctx, types.Row{ID: "second"})

			rows := p.Snapshot().Rows
			So(rows, ShouldHaveLength, 2)
			So(rows[0].ID, ShouldEqual, "second")
			So(rows[1].ID, ShouldEqual, "first")
		})

		Convey("Alerts are kept until cleared and counted", func() {
			p.Alert(ctx, "Could not get your location!")
			s := p.Snapshot()
			So(s.LastAlert, ShouldEqual, "Could not get your location!")
			So(s.Alerts, ShouldEqual, 1)

			p.ClearAlert(ctx)
			s = p.Snapshot()
			So(s.LastAlert, ShouldBeEmpty)
			So(s.Alerts, ShouldEqual, 1)
		})

		Convey("Reset restores the initial state", func() {
			p.ShowForm(ctx)
			p.ToggleKind(ctx, model.Cycling)
			p.AppendRow(ctx, types.Row{ID: "a"})
			p.Alert(ctx, "x")

			p.Reset(ctx)
			s := p.Snapshot()
			So(s.Form.Visible, ShouldBeFalse)
			So(s.Form.Kind, ShouldEqual, model.Running)
			So(s.Rows, ShouldBeEmpty)
			So(s.LastAlert, ShouldBeEmpty)
		})
	})
}
