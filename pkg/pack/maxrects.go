package pack

import "github.com/Faultbox/midgard-editor/pkg/math"

// maxRects keeps the maximal free rectangles of a bin. Placing an item
// splits every free rectangle it overlaps into up to four strips.
type maxRects struct {
	free []Rect
}

func newMaxRects(width, height float64) *maxRects {
	return &maxRects{free: []Rect{{Width: width, Height: height}}}
}

// insert places a w x h item using best area fit.
func (m *maxRects) insert(w, h float64) (math.Vec2, bool) {
	best := -1
	var bestFit float64
	for i, r := range m.free {
		if w > r.Width+tolerance || h > r.Height+tolerance {
			continue
		}
		fit := r.Area() - w*h
		if best < 0 || fit < bestFit {
			best, bestFit = i, fit
		}
	}
	if best < 0 {
		return math.Vec2{}, false
	}

	placed := Rect{X: m.free[best].X, Y: m.free[best].Y, Width: w, Height: h}
	m.split(placed)
	return math.Vec2{X: placed.X, Y: placed.Y}, true
}

func (m *maxRects) split(placed Rect) {
	next := make([]Rect, 0, len(m.free)+4)
	for _, r := range m.free {
		if !r.Overlaps(placed) {
			next = append(next, r)
			continue
		}
		if placed.X > r.X+tolerance {
			next = append(next, Rect{X: r.X, Y: r.Y, Width: placed.X - r.X, Height: r.Height})
		}
		if placed.Right() < r.Right()-tolerance {
			next = append(next, Rect{X: placed.Right(), Y: r.Y, Width: r.Right() - placed.Right(), Height: r.Height})
		}
		if placed.Y > r.Y+tolerance {
			next = append(next, Rect{X: r.X, Y: r.Y, Width: r.Width, Height: placed.Y - r.Y})
		}
		if placed.Bottom() < r.Bottom()-tolerance {
			next = append(next, Rect{X: r.X, Y: placed.Bottom(), Width: r.Width, Height: r.Bottom() - placed.Bottom()})
		}
	}
	m.free = prune(next)
}

// prune drops free rectangles contained in another one. Of two equal
// rectangles the first is kept.
func prune(rects []Rect) []Rect {
	kept := rects[:0:0]
	for i, a := range rects {
		contained := false
		for j, b := range rects {
			if i == j || !b.Contains(a) {
				continue
			}
			if a.Contains(b) && i < j {
				continue
			}
			contained = true
			break
		}
		if !contained {
			kept = append(kept, a)
		}
	}
	return kept
}
