// Package canvas implements the interactive editing surface as a headless
// state machine. A host feeds it pointer events in canvas pixels and one
// Frame call per animation frame, and reads back the scene to draw.
//
// The controller is single-threaded: all methods must be called from the
// goroutine that owns the editing session.
package canvas

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/lvillar/doclayout"
	"github.com/lvillar/doclayout/geometry"
	"github.com/lvillar/doclayout/layout"
	"github.com/lvillar/doclayout/placeholder"
	"github.com/lvillar/doclayout/textmetrics"
)

// State is the pointer interaction state.
type State int

const (
	Idle State = iota
	Dragging
	Resizing
)

func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	}
	return "idle"
}

// Zoom bounds, in percent.
const (
	MinZoom     = 25
	MaxZoom     = 100
	ZoomStep    = 10
	DefaultZoom = 100
)

// PixelsPerMM is the canvas scale at 100% zoom (96 DPI).
const PixelsPerMM = 3.7795275590551

// HandleSize is the side of a resize handle square in pixels.
const HandleSize = 8.0

// CommitFunc receives a copy of the template after every committed change.
type CommitFunc func(t *layout.Template)

// Option configures a Controller.
type Option func(*Controller)

// WithMeasurer sets the text measurer used for minimum sizes.
func WithMeasurer(m geometry.Measurer) Option {
	return func(c *Controller) { c.engine = geometry.New(m) }
}

// WithSubstituter sets the placeholder engine used for display text.
func WithSubstituter(e *placeholder.Engine) Option {
	return func(c *Controller) {
		if e != nil {
			c.subst = e
		}
	}
}

// WithCommit registers a callback run after every committed change.
func WithCommit(fn CommitFunc) Option {
	return func(c *Controller) { c.onCommit = fn }
}

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithZoom sets the initial zoom in percent.
func WithZoom(z int) Option {
	return func(c *Controller) { c.SetZoom(z) }
}

// WithRulers sets whether rulers are shown initially.
func WithRulers(on bool) Option {
	return func(c *Controller) { c.rulers = on }
}

// Controller edits one template at a time.
type Controller struct {
	tpl      *layout.Template
	engine   *geometry.Engine
	subst    *placeholder.Engine
	log      *slog.Logger
	onCommit CommitFunc

	zoom     int
	rulers   bool
	selected string
	state    State
	capture  *PointerCapture
	values   placeholder.Values
	nextID   int
}

// New returns a controller editing an empty template.
func New(opts ...Option) *Controller {
	c := &Controller{
		tpl:    layout.Blank(""),
		engine: geometry.New(textmetrics.NewPDF()),
		subst:  placeholder.New(nil),
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		zoom:   DefaultZoom,
		rulers: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load starts editing a copy of t. If any visible elements overlap, the
// layout is auto-arranged first and Load reports true.
func (c *Controller) Load(t *layout.Template) bool {
	c.tpl = t.Clone()
	c.tpl.Normalize()
	c.selected = ""
	c.state = Idle
	c.capture = nil
	if geometry.HasOverlaps(c.tpl.Elements) {
		geometry.AutoArrange(c.tpl)
		c.log.Info("auto-arranged overlapping layout", "template", c.tpl.Name)
		return true
	}
	return false
}

// Template returns a copy of the template being edited.
func (c *Controller) Template() *layout.Template { return c.tpl.Clone() }

// State returns the pointer interaction state.
func (c *Controller) State() State { return c.state }

// Capture returns the active pointer capture, or nil when idle.
func (c *Controller) Capture() *PointerCapture { return c.capture }

// Selected returns the selected element id, or "".
func (c *Controller) Selected() string { return c.selected }

// Select selects the element with the given id.
func (c *Controller) Select(id string) error {
	if _, ok := c.tpl.Find(id); !ok {
		return doclayout.NewError("Select", id, doclayout.ErrUnknownElement)
	}
	c.selected = id
	return nil
}

// ClearSelection deselects any element.
func (c *Controller) ClearSelection() { c.selected = "" }

// Scale returns the pixels per millimeter at the current zoom.
func (c *Controller) Scale() float64 {
	return PixelsPerMM * float64(c.zoom) / 100
}

// Zoom returns the zoom in percent.
func (c *Controller) Zoom() int { return c.zoom }

// SetZoom sets the zoom, clamped to [MinZoom, MaxZoom].
func (c *Controller) SetZoom(z int) {
	c.zoom = max(MinZoom, min(MaxZoom, z))
}

// ZoomIn raises the zoom by one step.
func (c *Controller) ZoomIn() { c.SetZoom(c.zoom + ZoomStep) }

// ZoomOut lowers the zoom by one step.
func (c *Controller) ZoomOut() { c.SetZoom(c.zoom - ZoomStep) }

// ResetZoom returns to 100%.
func (c *Controller) ResetZoom() { c.SetZoom(DefaultZoom) }

// ToggleRulers shows or hides the rulers and returns the new setting.
func (c *Controller) ToggleRulers() bool {
	c.rulers = !c.rulers
	return c.rulers
}

// SetPreviewValues switches display text to live values. Passing nil shows
// preview glyphs instead.
func (c *Controller) SetPreviewValues(v placeholder.Values) { c.values = v }

// DisplayText returns the text shown for el on the canvas.
func (c *Controller) DisplayText(el layout.Element) string {
	tb, ok := el.(*layout.TextBlock)
	if !ok {
		return ""
	}
	if c.values == nil {
		return c.subst.Preview(tb.Text)
	}
	return c.subst.Substitute(tb.Text, c.values)
}

func (c *Controller) toMM(p Point) Point {
	s := c.Scale()
	return Point{X: p.X / s, Y: p.Y / s}
}

// PointerDown handles a press at p and returns the new state.
//
// A press on a handle of the selected element starts a resize. A press on
// a movable element selects it and starts a drag; a press on a locked
// element only selects it. A press on empty canvas clears the selection.
func (c *Controller) PointerDown(p Point) State {
	if c.state != Idle {
		return c.state
	}
	mm := c.toMM(p)

	if h, ok := c.handleAt(mm); ok {
		el, _ := c.tpl.Find(c.selected)
		c.capture = newCapture(c.selected, *el.Box())
		c.capture.Handle = h
		c.capture.Origin = mm
		c.state = Resizing
		return c.state
	}

	el := c.elementAt(mm)
	if el == nil {
		c.selected = ""
		return c.state
	}
	b := el.Box()
	c.selected = b.ID
	if !layout.Movable(el) {
		return c.state
	}
	c.capture = newCapture(b.ID, *b)
	c.capture.Offset = Point{X: mm.X - b.X, Y: mm.Y - b.Y}
	c.capture.Origin = mm
	c.state = Dragging
	return c.state
}

// PointerMove buffers a pointer move. It has no effect until the next
// Frame.
func (c *Controller) PointerMove(p Point) {
	if c.capture != nil {
		c.capture.Move(p)
	}
}

// Frame applies the latest buffered move, if any, and reports whether the
// template changed. Changes within the dead zone are skipped.
func (c *Controller) Frame() bool {
	return c.step(false)
}

// PointerUp ends a drag or resize at p, commits the final geometry and
// returns to Idle.
func (c *Controller) PointerUp(p Point) {
	if c.capture == nil {
		return
	}
	c.capture.Move(p)
	c.step(true)
	c.capture = nil
	c.state = Idle
	c.commit()
}

func (c *Controller) step(final bool) bool {
	if c.capture == nil {
		return false
	}
	p, ok := c.capture.take()
	if !ok {
		return false
	}
	mm := c.toMM(p)

	var b layout.Box
	switch c.state {
	case Dragging:
		b, ok = c.engine.Move(c.tpl, c.capture.ElementID, mm.X-c.capture.Offset.X, mm.Y-c.capture.Offset.Y)
	case Resizing:
		b, ok = c.engine.Resize(c.tpl, c.capture.ElementID, c.capture.Handle, c.capture.Start,
			mm.X-c.capture.Origin.X, mm.Y-c.capture.Origin.Y)
	default:
		return false
	}
	if !ok {
		return false
	}
	if !c.capture.changed(b) && !(final && b != c.capture.last) {
		return false
	}
	c.capture.last = b
	return geometry.Apply(c.tpl, b)
}

// elementAt returns the topmost visible element under mm.
func (c *Controller) elementAt(mm Point) layout.Element {
	order := layout.PaintOrder(c.tpl.Elements, c.selected)
	for i := len(order) - 1; i >= 0; i-- {
		b := order[i].Box()
		if mm.X >= b.X && mm.X <= b.Right() && mm.Y >= b.Y && mm.Y <= b.Bottom() {
			return order[i]
		}
	}
	return nil
}

// handleAt returns the resize handle of the selected element under mm.
func (c *Controller) handleAt(mm Point) (geometry.Handle, bool) {
	if c.selected == "" {
		return "", false
	}
	el, ok := c.tpl.Find(c.selected)
	if !ok || !layout.Resizable(el) || !el.Box().Visible {
		return "", false
	}
	half := HandleSize / 2 / c.Scale()
	for _, h := range geometry.Handles {
		hp := handlePoint(*el.Box(), h)
		if math.Abs(mm.X-hp.X) <= half && math.Abs(mm.Y-hp.Y) <= half {
			return h, true
		}
	}
	return "", false
}

// handlePoint returns the center of handle h on b, in millimeters.
func handlePoint(b layout.Box, h geometry.Handle) Point {
	p := Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
	for _, r := range string(h) {
		switch r {
		case 'n':
			p.Y = b.Y
		case 's':
			p.Y = b.Bottom()
		case 'w':
			p.X = b.X
		case 'e':
			p.X = b.Right()
		}
	}
	return p
}

// AddElement creates an element of the given kind at a free position,
// selects it and returns its id.
func (c *Controller) AddElement(kind layout.Kind) (string, error) {
	id := c.newID()
	el, ok := layout.NewElement(kind, id, c.tpl.PrimaryColor)
	if !ok {
		return "", doclayout.NewError("AddElement", string(kind), doclayout.ErrUnsupported)
	}
	geometry.Place(c.tpl, el)
	c.tpl.Elements = append(c.tpl.Elements, el)
	c.selected = id
	c.commit()
	return id, nil
}

func (c *Controller) newID() string {
	for {
		c.nextID++
		id := fmt.Sprintf("element_%d", c.nextID)
		if c.tpl.Index(id) < 0 {
			return id
		}
	}
}

// RemoveElement deletes the element with the given id.
func (c *Controller) RemoveElement(id string) error {
	if c.capture != nil && c.capture.ElementID == id {
		c.capture = nil
		c.state = Idle
	}
	if !c.tpl.Remove(id) {
		return doclayout.NewError("RemoveElement", id, doclayout.ErrUnknownElement)
	}
	if c.selected == id {
		c.selected = ""
	}
	c.commit()
	return nil
}

// Edit applies fn to the element with the given id and commits the result.
// Geometry rules are re-applied afterwards, so fn cannot unpin a banner or
// unlock a table.
func (c *Controller) Edit(id string, fn func(layout.Element)) error {
	el, ok := c.tpl.Find(id)
	if !ok {
		return doclayout.NewError("Edit", id, doclayout.ErrUnknownElement)
	}
	fn(el)
	el.Box().ID = id
	c.tpl.Normalize()
	c.commit()
	return nil
}

// AutoArrange moves well-known elements to their canonical positions.
func (c *Controller) AutoArrange() {
	geometry.AutoArrange(c.tpl)
	c.commit()
}

func (c *Controller) commit() {
	if c.onCommit != nil {
		c.onCommit(c.tpl.Clone())
	}
}
