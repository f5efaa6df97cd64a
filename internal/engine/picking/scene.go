package picking

import (
	gomath "math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-editor/pkg/brush"
	"github.com/Faultbox/midgard-editor/pkg/geom"
	"github.com/Faultbox/midgard-editor/pkg/math"
)

const (
	// boundsPadding grows every box in the index so flat query boxes of
	// axis-aligned rays still intersect what they touch.
	boundsPadding = 0.5

	minChildren = 2
	maxChildren = 16
)

// TraceResult is the nearest hit along a ray.
type TraceResult struct {
	Hit      bool
	Position math.Vec3
	Distance float64
	Solid    *brush.Solid
	Face     *brush.Face // nil when the ray started inside Solid
}

// Scene indexes solids in an R-tree for ray casts and culling. It is
// read-only after construction and safe for concurrent use.
type Scene struct {
	tree   *rtreego.Rtree
	solids []*brush.Solid
	bounds math.Box
	logger *zap.Logger
}

type indexed struct {
	solid *brush.Solid
	rect  rtreego.Rect
}

func (e *indexed) Bounds() rtreego.Rect { return e.rect }

// NewScene indexes the solids. Solids with empty bounds are skipped.
func NewScene(solids []*brush.Solid, logger *zap.Logger) *Scene {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scene{bounds: math.EmptyBox(), logger: logger}
	objs := make([]rtreego.Spatial, 0, len(solids))
	for _, solid := range solids {
		b := solid.Bounds()
		if b.IsEmpty() {
			logger.Debug("skipping solid without bounds", zap.Int64("solid", solid.ID))
			continue
		}
		objs = append(objs, &indexed{solid: solid, rect: toRect(b)})
		s.solids = append(s.solids, solid)
		s.bounds = s.bounds.Union(b)
	}
	s.tree = rtreego.NewTree(3, minChildren, maxChildren, objs...)
	logger.Debug("scene indexed",
		zap.Int("solids", len(s.solids)),
		zap.Int("depth", s.tree.Depth()))
	return s
}

// Len returns the number of indexed solids.
func (s *Scene) Len() int {
	return len(s.solids)
}

// Bounds returns the union of all indexed solid bounds.
func (s *Scene) Bounds() math.Box {
	return s.bounds
}

// Trace casts a ray of at most maxDistance and returns the nearest hit.
// An infinite maxDistance is limited to the scene extent.
func (s *Scene) Trace(origin, direction math.Vec3, maxDistance float64) TraceResult {
	if s.Len() == 0 {
		return TraceResult{}
	}
	ray := NewRay(origin, direction)
	if ray.Direction.LengthSquared() == 0 {
		return TraceResult{}
	}
	if gomath.IsInf(maxDistance, 1) || gomath.IsNaN(maxDistance) {
		maxDistance = origin.Distance(s.bounds.Center()) + s.bounds.Radius()
	}

	segment := math.BoxFromPoints(origin, ray.At(maxDistance))
	best := TraceResult{Distance: gomath.Inf(1)}
	for _, obj := range s.tree.SearchIntersect(toRect(segment)) {
		solid := obj.(*indexed).solid
		if _, ok := ray.IntersectAABB(solid.Bounds()); !ok {
			continue
		}
		t, face, ok := ray.IntersectSolid(solid)
		if !ok || t > maxDistance || t >= best.Distance {
			continue
		}
		best = TraceResult{Hit: true, Position: ray.At(t), Distance: t, Solid: solid, Face: face}
	}
	if !best.Hit {
		return TraceResult{}
	}
	return best
}

// Pick returns the nearest solid along the ray.
func (s *Scene) Pick(ray Ray) TraceResult {
	return s.Trace(ray.Origin, ray.Direction, gomath.Inf(1))
}

// Query returns the solids whose bounds intersect box, ordered by ID.
func (s *Scene) Query(box math.Box) []*brush.Solid {
	if s.Len() == 0 || box.IsEmpty() {
		return nil
	}
	var out []*brush.Solid
	for _, obj := range s.tree.SearchIntersect(toRect(box)) {
		solid := obj.(*indexed).solid
		if solid.Bounds().Intersects(box) {
			out = append(out, solid)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Cull returns the solids whose bounds intersect the frustum, in index order.
func (s *Scene) Cull(f geom.Frustum) []*brush.Solid {
	var out []*brush.Solid
	for _, solid := range s.solids {
		if f.IntersectsBox(solid.Bounds()) {
			out = append(out, solid)
		}
	}
	return out
}

func toRect(b math.Box) rtreego.Rect {
	b = b.Grow(boundsPadding)
	// Only fails on a dimension mismatch, which cannot happen here.
	r, _ := rtreego.NewRectFromPoints(
		rtreego.Point{b.Min.X, b.Min.Y, b.Min.Z},
		rtreego.Point{b.Max.X, b.Max.Y, b.Max.Z},
	)
	return r
}
