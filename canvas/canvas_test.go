package canvas

import (
	"errors"
	"math"
	"testing"

	"github.com/lvillar/doclayout"
	"github.com/lvillar/doclayout/geometry"
	"github.com/lvillar/doclayout/layout"
	"github.com/lvillar/doclayout/placeholder"
)

type halfEm struct{}

func (halfEm) TextWidth(s string, size float64, bold bool) float64 {
	return float64(len(s)) * size * 0.5
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

// at converts millimeters to a pixel point at 100% zoom.
func at(x, y float64) Point {
	return Point{X: x * PixelsPerMM, Y: y * PixelsPerMM}
}

func newTestController(t *testing.T) (*Controller, *[]*layout.Template) {
	t.Helper()
	var commits []*layout.Template
	c := New(
		WithMeasurer(halfEm{}),
		WithCommit(func(tpl *layout.Template) { commits = append(commits, tpl) }),
	)
	tpl := layout.Blank("t")
	tpl.Elements = append(tpl.Elements,
		&layout.TextBlock{
			Frame:    layout.Box{ID: "hola", X: 20, Y: 40, Width: 100, Height: 10, Visible: true},
			Text:     "Hola {cliente}",
			FontSize: 4,
		},
		&layout.Table{
			Frame: layout.Box{ID: layout.IDTable, X: 20, Y: 100, Width: 170, Height: 100, Visible: true, Locked: true},
		},
	)
	if c.Load(tpl) {
		t.Fatal("non-overlapping template was auto-arranged")
	}
	return c, &commits
}

func box(t *testing.T, c *Controller, id string) layout.Box {
	t.Helper()
	el, ok := c.Template().Find(id)
	if !ok {
		t.Fatalf("element %s not found", id)
	}
	return *el.Box()
}

func TestDragClampsToMargin(t *testing.T) {
	c, commits := newTestController(t)

	if s := c.PointerDown(at(30, 45)); s != Dragging {
		t.Fatalf("state = %v, want dragging", s)
	}
	if c.Selected() != "hola" {
		t.Errorf("selected = %q", c.Selected())
	}
	c.PointerMove(at(15, 45))
	if !c.Frame() {
		t.Fatal("Frame applied nothing")
	}
	c.PointerUp(at(15, 45))

	b := box(t, c, "hola")
	if !near(b.X, 15) || !near(b.Y, 40) {
		t.Errorf("position = (%v, %v), want (15, 40)", b.X, b.Y)
	}
	if c.State() != Idle || c.Capture() != nil {
		t.Errorf("state after release = %v", c.State())
	}
	if len(*commits) != 1 {
		t.Fatalf("got %d commits, want 1", len(*commits))
	}
	committed, _ := (*commits)[0].Find("hola")
	if !near(committed.Box().X, 15) {
		t.Errorf("committed x = %v", committed.Box().X)
	}
}

func TestFrameAppliesLatestMoveOnly(t *testing.T) {
	c, _ := newTestController(t)
	c.PointerDown(at(30, 45))

	if c.Frame() {
		t.Error("Frame without moves reported a change")
	}
	c.PointerMove(at(40, 45))
	c.PointerMove(at(50, 45))
	c.PointerMove(at(60, 45))
	if !c.Frame() {
		t.Fatal("Frame applied nothing")
	}
	if b := box(t, c, "hola"); !near(b.X, 50) {
		t.Errorf("x = %v, want 50", b.X)
	}
	if c.Frame() {
		t.Error("second Frame reapplied a consumed move")
	}
}

func TestDeadZone(t *testing.T) {
	c, _ := newTestController(t)
	c.PointerDown(at(30, 45))

	c.PointerMove(at(30.3, 45))
	if c.Frame() {
		t.Error("move inside dead zone was applied")
	}
	if b := box(t, c, "hola"); !near(b.X, 20) {
		t.Errorf("x = %v, want 20", b.X)
	}

	// Release commits the final geometry even inside the dead zone.
	c.PointerUp(at(30.3, 45))
	if b := box(t, c, "hola"); !near(b.X, 20.3) {
		t.Errorf("x after release = %v, want 20.3", b.X)
	}
}

func TestResizeFromHandle(t *testing.T) {
	c, _ := newTestController(t)
	c.PointerDown(at(30, 45))
	c.PointerUp(at(30, 45))

	if s := c.PointerDown(at(120, 50)); s != Resizing {
		t.Fatalf("state = %v, want resizing", s)
	}
	if c.Capture().Handle != geometry.HandleSE {
		t.Errorf("handle = %v", c.Capture().Handle)
	}
	c.PointerMove(at(130, 60))
	c.Frame()
	c.PointerUp(at(130, 60))

	b := box(t, c, "hola")
	if !near(b.X, 20) || !near(b.Y, 40) || !near(b.Width, 110) || !near(b.Height, 20) {
		t.Errorf("box = %+v", b)
	}
}

func TestResizeRespectsMinimumSize(t *testing.T) {
	c, _ := newTestController(t)
	c.Select("hola")
	c.PointerDown(at(120, 50))
	c.PointerMove(at(0, 0))
	c.PointerUp(at(0, 0))

	b := box(t, c, "hola")
	minW, minH := geometry.MinSize(&layout.TextBlock{Text: "Hola {cliente}", FontSize: 4}, halfEm{})
	if b.Width < minW-1e-9 || b.Height < minH-1e-9 {
		t.Errorf("box %vx%v below minimum %vx%v", b.Width, b.Height, minW, minH)
	}
}

func TestPressOnLockedAndEmpty(t *testing.T) {
	c, _ := newTestController(t)

	if s := c.PointerDown(at(50, 150)); s != Idle {
		t.Errorf("press on table started %v", s)
	}
	if c.Selected() != layout.IDTable {
		t.Errorf("selected = %q, want table", c.Selected())
	}
	c.PointerUp(at(50, 150))

	c.PointerDown(at(5, 280))
	if c.Selected() != "" {
		t.Errorf("press on empty canvas kept selection %q", c.Selected())
	}
}

func TestZoom(t *testing.T) {
	c := New()
	c.ZoomIn()
	if c.Zoom() != 100 {
		t.Errorf("zoom = %d, want 100", c.Zoom())
	}
	for i := 0; i < 10; i++ {
		c.ZoomOut()
	}
	if c.Zoom() != MinZoom {
		t.Errorf("zoom = %d, want %d", c.Zoom(), MinZoom)
	}
	c.SetZoom(50)
	if !near(c.Scale(), PixelsPerMM/2) {
		t.Errorf("scale = %v", c.Scale())
	}
	c.ResetZoom()
	if c.Zoom() != 100 {
		t.Errorf("zoom after reset = %d", c.Zoom())
	}
}

func TestHitTestingFollowsZoom(t *testing.T) {
	c, _ := newTestController(t)
	c.SetZoom(50)
	s := c.Scale()
	if st := c.PointerDown(Point{X: 30 * s, Y: 45 * s}); st != Dragging {
		t.Fatalf("state = %v", st)
	}
	c.PointerMove(Point{X: 40 * s, Y: 45 * s})
	c.PointerUp(Point{X: 40 * s, Y: 45 * s})
	if b := box(t, c, "hola"); !near(b.X, 30) {
		t.Errorf("x = %v, want 30", b.X)
	}
}

func TestLoadAutoArrangesOverlaps(t *testing.T) {
	c := New()
	tpl := layout.Demo()
	info, _ := tpl.Find(layout.IDInfo)
	info.Box().Y = 80 // on top of the table
	if !c.Load(tpl) {
		t.Fatal("overlapping layout not arranged")
	}
	if b := box(t, c, layout.IDInfo); b.Y != 42 {
		t.Errorf("info y = %v, want 42", b.Y)
	}
}

func TestAddAndRemoveElement(t *testing.T) {
	c, commits := newTestController(t)

	id, err := c.AddElement(layout.KindText)
	if err != nil {
		t.Fatalf("AddElement failed: %v", err)
	}
	if c.Selected() != id {
		t.Errorf("new element not selected")
	}
	tpl := c.Template()
	el, _ := tpl.Find(id)
	for _, other := range tpl.Elements {
		if geometry.Collides(el, other) {
			t.Errorf("new element collides with %s", other.Box().ID)
		}
	}

	if _, err := c.AddElement("image"); !errors.Is(err, doclayout.ErrUnsupported) {
		t.Errorf("AddElement(image) err = %v", err)
	}

	if err := c.RemoveElement(id); err != nil {
		t.Fatalf("RemoveElement failed: %v", err)
	}
	if c.Selected() != "" {
		t.Error("selection kept after removal")
	}
	if err := c.RemoveElement(id); !errors.Is(err, doclayout.ErrUnknownElement) {
		t.Errorf("second RemoveElement err = %v", err)
	}
	if len(*commits) != 2 {
		t.Errorf("got %d commits, want 2", len(*commits))
	}
}

func TestEditKeepsBannerPinned(t *testing.T) {
	c := New()
	c.Load(layout.Demo())
	err := c.Edit(layout.IDBanner, func(el layout.Element) {
		el.Box().X = 30
		el.Box().Width = 50
		el.(*layout.Banner).Background = "#000000"
	})
	if err != nil {
		t.Fatal(err)
	}
	b := box(t, c, layout.IDBanner)
	if b.X != 0 || b.Width != layout.PageWidth {
		t.Errorf("banner = %+v", b)
	}
	if err := c.Edit("missing", func(layout.Element) {}); !errors.Is(err, doclayout.ErrUnknownElement) {
		t.Errorf("Edit(missing) err = %v", err)
	}
}

func TestDisplayText(t *testing.T) {
	c, _ := newTestController(t)
	el, _ := c.Template().Find("hola")

	if got := c.DisplayText(el); got != "Hola ____________" {
		t.Errorf("preview = %q", got)
	}
	c.SetPreviewValues(placeholder.Values{placeholder.Cliente: "Juan"})
	if got := c.DisplayText(el); got != "Hola Juan" {
		t.Errorf("live = %q", got)
	}
}

func TestSceneAndOverlay(t *testing.T) {
	c := New()
	c.Load(layout.Demo())
	c.Select(layout.IDInfo)

	scene := c.Scene()
	if scene[0].Kind != layout.KindBanner {
		t.Errorf("first sprite = %s", scene[0].ID)
	}
	last := scene[len(scene)-1]
	if last.ID != layout.IDInfo || !last.Selected || len(last.Handles) != 8 {
		t.Errorf("last sprite = %+v", last)
	}
	for _, sp := range scene[:len(scene)-1] {
		if len(sp.Handles) != 0 {
			t.Errorf("unselected sprite %s has handles", sp.ID)
		}
	}

	o := c.Overlay()
	if len(o.TicksX) != 43 || len(o.TicksY) != 60 {
		t.Errorf("ticks = %d x %d", len(o.TicksX), len(o.TicksY))
	}
	if !o.TicksX[2].Major || o.TicksX[1].Major {
		t.Error("major ticks should fall every 10 mm")
	}
	if !near(o.Margin.X, 15*PixelsPerMM) {
		t.Errorf("margin guide x = %v", o.Margin.X)
	}
	if c.ToggleRulers() || len(c.Overlay().TicksX) != 0 {
		t.Error("rulers still shown after toggle")
	}
}
