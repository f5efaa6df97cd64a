// Package pack places rectangles into an atlas without overlap.
package pack

import (
	"errors"
	"fmt"
	gomath "math"
	"math/bits"
	"sort"

	"github.com/Faultbox/midgard-editor/pkg/math"
)

var (
	ErrInvalidItem      = errors.New("pack: item must have positive size")
	ErrInvalidContainer = errors.New("pack: container must have positive size")
	ErrInvalidMargin    = errors.New("pack: margin must not be negative")
	ErrPackFailed       = errors.New("pack: items do not fit")
)

const (
	// growth applied to the bin after a failed attempt
	growth      = 1.25
	maxAttempts = 64
	tolerance   = 1e-6
)

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Right returns X + Width.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns Y + Height.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Area returns Width * Height.
func (r Rect) Area() float64 { return r.Width * r.Height }

// Overlaps reports whether the interiors of r and o intersect. Touching
// edges do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right()-tolerance && r.Right() > o.X+tolerance &&
		r.Y < o.Bottom()-tolerance && r.Bottom() > o.Y+tolerance
}

// Contains reports whether o lies entirely inside r.
func (r Rect) Contains(o Rect) bool {
	return r.X <= o.X+tolerance && r.Y <= o.Y+tolerance &&
		r.Right() >= o.Right()-tolerance && r.Bottom() >= o.Bottom()-tolerance
}

// Pack places items into container and returns one rect per item in input
// order, plus the pixel size actually used.
//
// Items are first packed without margin to find a baseline bin, then packed
// again grown by 2*margin. The grown layout is scaled down uniformly to fit
// the container; it is never scaled up. Each returned rect sits margin
// (scaled) inside its grown slot, so neighbors are at least 2*margin*scale
// apart.
func Pack(container Rect, items []Rect, margin float64) ([]Rect, math.Vec2, error) {
	if container.Width <= 0 || container.Height <= 0 {
		return nil, math.Vec2{}, fmt.Errorf("%w: %gx%g", ErrInvalidContainer, container.Width, container.Height)
	}
	if margin < 0 {
		return nil, math.Vec2{}, fmt.Errorf("%w: %g", ErrInvalidMargin, margin)
	}
	if len(items) == 0 {
		return nil, math.Vec2{}, nil
	}
	for i, it := range items {
		if !(it.Width > 0) || !(it.Height > 0) || gomath.IsInf(it.Width, 0) || gomath.IsInf(it.Height, 0) {
			return nil, math.Vec2{}, fmt.Errorf("%w: item %d is %gx%g", ErrInvalidItem, i, it.Width, it.Height)
		}
	}

	sizes := make([]math.Vec2, len(items))
	for i, it := range items {
		sizes[i] = math.Vec2{X: it.Width, Y: it.Height}
	}
	_, baseline, err := packBin(sizes, math.Vec2{})
	if err != nil {
		return nil, math.Vec2{}, err
	}

	grown := make([]math.Vec2, len(items))
	for i, s := range sizes {
		grown[i] = math.Vec2{X: s.X + 2*margin, Y: s.Y + 2*margin}
	}
	placed, bounds, err := packBin(grown, baseline)
	if err != nil {
		return nil, math.Vec2{}, err
	}

	scale := min(1, container.Width/bounds.X, container.Height/bounds.Y)
	out := make([]Rect, len(items))
	for i, p := range placed {
		out[i] = Rect{
			X:      (p.X + margin) * scale,
			Y:      (p.Y + margin) * scale,
			Width:  items[i].Width * scale,
			Height: items[i].Height * scale,
		}
	}
	used := bounds.Scale(scale)
	maxSize := math.Vec2{
		X: min(gomath.Ceil(used.X-tolerance), gomath.Ceil(container.Width)),
		Y: min(gomath.Ceil(used.Y-tolerance), gomath.Ceil(container.Height)),
	}
	return out, maxSize, nil
}

// NextPowerOfTwo returns the smallest power of two >= n, and 1 for n <= 1.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// packBin packs sizes into the smallest bin it finds, starting from start
// (or the square root of the total area when start is zero) and growing the
// bin after each failed attempt. It returns the item positions and the
// extent actually covered.
func packBin(sizes []math.Vec2, start math.Vec2) ([]math.Vec2, math.Vec2, error) {
	order := make([]int, len(sizes))
	var area, maxW, maxH float64
	for i, s := range sizes {
		order[i] = i
		area += s.X * s.Y
		maxW = max(maxW, s.X)
		maxH = max(maxH, s.Y)
	}
	sort.SliceStable(order, func(a, b int) bool {
		sa, sb := sizes[order[a]], sizes[order[b]]
		if sa.Y != sb.Y {
			return sa.Y > sb.Y
		}
		return sa.X > sb.X
	})

	side := gomath.Sqrt(area)
	w, h := max(start.X, side, maxW), max(start.Y, side, maxH)

	positions := make([]math.Vec2, len(sizes))
	for attempt := 0; attempt < maxAttempts; attempt++ {
		bin := newMaxRects(w, h)
		fits := true
		for _, idx := range order {
			pos, ok := bin.insert(sizes[idx].X, sizes[idx].Y)
			if !ok {
				fits = false
				break
			}
			positions[idx] = pos
		}
		if fits {
			var bounds math.Vec2
			for i, p := range positions {
				bounds.X = max(bounds.X, p.X+sizes[i].X)
				bounds.Y = max(bounds.Y, p.Y+sizes[i].Y)
			}
			return positions, bounds, nil
		}
		w *= growth
		h *= growth
	}
	return nil, math.Vec2{}, fmt.Errorf("%w: %d items after %d attempts", ErrPackFailed, len(sizes), maxAttempts)
}
