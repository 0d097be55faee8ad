package surface

import "sort"

// WidgetKind identifies what a dirty widget ref points at
type WidgetKind int

const (
	WidgetDial WidgetKind = iota
	WidgetButton
	WidgetCustom
)

// WidgetRef is a redraw obligation for one on-screen widget. Custom widgets
// are addressed by name, dials and buttons by physical slot.
type WidgetRef struct {
	Module string
	Kind   WidgetKind
	Slot   int
	Name   string
}

// Rect is an explicit dirty rectangle for regions no widget owns
type Rect struct {
	X, Y, W, H int
}

// Frame is what one render pass consumes. Full means redraw every visible
// widget of the active module/bank and ignore the incremental sets.
type Frame struct {
	Full    bool
	Widgets []WidgetRef
	Rects   []Rect
}

// DirtyTracker accumulates redraw obligations between render passes. Two
// modes: incremental (default) collects exactly the regions mutations
// registered, deduplicated; forced-full discards them and redraws everything
// once, then reverts. Forced-full covers structural changes (module swap,
// bank swap, preset load, overlay open/close) where a missed registration
// must not leave stale pixels.
type DirtyTracker struct {
	widgets map[WidgetRef]struct{}
	rects   map[Rect]struct{}
	full    bool
}

func NewDirtyTracker() *DirtyTracker {
	return &DirtyTracker{
		widgets: make(map[WidgetRef]struct{}),
		rects:   make(map[Rect]struct{}),
	}
}

// MarkWidget registers a widget redraw. Marking twice before the next drain
// still redraws once.
func (d *DirtyTracker) MarkWidget(ref WidgetRef) {
	d.widgets[ref] = struct{}{}
}

// MarkRect registers an explicit rectangle redraw
func (d *DirtyTracker) MarkRect(r Rect) {
	d.rects[r] = struct{}{}
}

// ForceFull switches the next drain to a full pass
func (d *DirtyTracker) ForceFull() {
	d.full = true
}

// HasWork reports whether the next drain would produce a non-empty frame
func (d *DirtyTracker) HasWork() bool {
	return d.full || len(d.widgets) > 0 || len(d.rects) > 0
}

// Drain consumes the accumulated set exactly once and resets to incremental
// mode. Order is deterministic so renderers and tests see stable frames.
func (d *DirtyTracker) Drain() Frame {
	if d.full {
		d.widgets = make(map[WidgetRef]struct{})
		d.rects = make(map[Rect]struct{})
		d.full = false
		return Frame{Full: true}
	}

	f := Frame{}
	for ref := range d.widgets {
		f.Widgets = append(f.Widgets, ref)
	}
	sort.Slice(f.Widgets, func(i, j int) bool {
		a, b := f.Widgets[i], f.Widgets[j]
		if a.Module != b.Module {
			return a.Module < b.Module
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Slot != b.Slot {
			return a.Slot < b.Slot
		}
		return a.Name < b.Name
	})
	for r := range d.rects {
		f.Rects = append(f.Rects, r)
	}
	sort.Slice(f.Rects, func(i, j int) bool {
		a, b := f.Rects[i], f.Rects[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	d.widgets = make(map[WidgetRef]struct{})
	d.rects = make(map[Rect]struct{})
	return f
}
