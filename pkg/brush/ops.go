package brush

import (
	"errors"
	"fmt"

	"github.com/Faultbox/midgard-editor/pkg/geom"
)

// ErrInvalidThickness is returned by Hollow for non-positive wall thickness.
var ErrInvalidThickness = errors.New("hollow thickness must be positive")

// ClipKeep selects which halves Clip returns.
type ClipKeep int

// Clip policies.
const (
	KeepBoth ClipKeep = iota
	KeepFront
	KeepBack
)

// ParseClipKeep converts "front", "back" or "both".
func ParseClipKeep(s string) (ClipKeep, error) {
	switch s {
	case "both", "":
		return KeepBoth, nil
	case "front":
		return KeepFront, nil
	case "back":
		return KeepBack, nil
	}
	return KeepBoth, fmt.Errorf("unknown clip side %q", s)
}

// Clip cuts s by plane and returns the halves selected by keep. When the
// plane misses the solid ok is false and the caller should leave s as is.
func Clip(s *Solid, plane geom.Plane, keep ClipKeep, ids *IDGenerator, opts SplitOptions) ([]*Solid, bool, error) {
	front, back, ok, err := Split(s, plane, ids, opts)
	if err != nil || !ok {
		return nil, false, err
	}
	switch keep {
	case KeepFront:
		return []*Solid{front}, true, nil
	case KeepBack:
		return []*Solid{back}, true, nil
	}
	return []*Solid{front, back}, true, nil
}

// Carve subtracts carver from target and returns the remaining convex pieces.
// ok is false when the two do not overlap. A target entirely inside the
// carver yields no pieces with ok true.
func Carve(target, carver *Solid, ids *IDGenerator, opts SplitOptions) ([]*Solid, bool, error) {
	if !target.Bounds().Intersects(carver.Bounds()) {
		return nil, false, nil
	}

	var pieces []*Solid
	remaining := target
	for _, f := range carver.Faces {
		front, back, ok, err := Split(remaining, f.Plane, ids, opts)
		if err != nil {
			return nil, false, fmt.Errorf("carving solid %d with %d: %w", target.ID, carver.ID, err)
		}
		if !ok {
			if back == nil {
				// Remaining part lies outside this carver plane: no overlap.
				return nil, false, nil
			}
			continue
		}
		pieces = append(pieces, front)
		remaining = back
	}
	return pieces, true, nil
}

// Hollow turns s into walls of the given thickness by carving it with a copy
// of itself whose planes are moved inward. ok is false when the solid is too
// thin to hollow.
func Hollow(s *Solid, thickness float64, ids *IDGenerator, opts SplitOptions) ([]*Solid, bool, error) {
	if thickness <= 0 {
		return nil, false, ErrInvalidThickness
	}

	defs := make([]PlaneDef, len(s.Faces))
	for i, f := range s.Faces {
		defs[i] = PlaneDef{Plane: f.Plane.Offset(-thickness), Texture: f.Texture}
	}
	inner, err := NewSolidFromPlanes(ids, defs, geom.PlaneEpsilon)
	if err != nil {
		if errors.Is(err, ErrInvalidSolid) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if inner.Volume() <= 0 || len(inner.Faces) != len(s.Faces) {
		return nil, false, nil
	}

	pieces, ok, err := Carve(s, inner, ids, opts)
	if err != nil || !ok {
		return nil, false, err
	}
	for _, p := range pieces {
		p.Selected = opts.KeepSelection && s.Selected
	}
	return pieces, true, nil
}
