package brush

import (
	"fmt"

	"github.com/Faultbox/midgard-editor/pkg/geom"
)

// SplitOptions controls how solids are cut.
type SplitOptions struct {
	// Epsilon is the vertex classification tolerance.
	Epsilon float64
	// WeldEpsilon merges near-coincident vertices of the split pieces.
	// Zero keeps pieces as split.
	WeldEpsilon float64
	// CapTexture, when set, is applied to the faces created on the cut
	// plane. Otherwise caps inherit the texture of the original face whose
	// normal is closest to theirs.
	CapTexture *TextureRef
	// KeepSelection copies the selection flag onto the new solids.
	KeepSelection bool
}

// DefaultSplitOptions returns options using geom.DefaultEpsilon.
func DefaultSplitOptions() SplitOptions {
	return SplitOptions{Epsilon: geom.DefaultEpsilon, WeldEpsilon: WeldEpsilon}
}

// Split cuts s by plane into the part in front of the plane and the part
// behind it. ok is false when no cut happened: if s lies entirely on one side
// it is returned as that side, and if a cut would leave an invalid solid both
// results are nil. s itself is never modified.
//
// The error is reserved for geometric invariant violations.
func Split(s *Solid, plane geom.Plane, ids *IDGenerator, opts SplitOptions) (front, back *Solid, ok bool, err error) {
	eps := opts.Epsilon
	var frontPieces, backPieces []piece

	for _, f := range s.Faces {
		poly, err := f.Polygon()
		if err != nil {
			continue
		}
		res, _, err := poly.Split(plane, eps)
		if err != nil {
			return nil, nil, false, fmt.Errorf("splitting solid %d face %d: %w", s.ID, f.ID, err)
		}

		// A face lying on the plane bounds the side its normal points away from.
		if p := weldPiece(firstNonNil(res.Front, res.CoplanarBack), opts.WeldEpsilon); p != nil {
			frontPieces = append(frontPieces, piece{face: f, poly: p})
		}
		if p := weldPiece(firstNonNil(res.Back, res.CoplanarFront), opts.WeldEpsilon); p != nil {
			backPieces = append(backPieces, piece{face: f, poly: p})
		}
	}

	if len(frontPieces) == 0 {
		return nil, s, false, nil
	}
	if len(backPieces) == 0 {
		return s, nil, false, nil
	}

	backCap, err := capPolygon(s, plane, eps)
	if err != nil {
		return nil, nil, false, err
	}
	if backCap == nil {
		return nil, nil, false, nil
	}
	if len(frontPieces)+1 < MinFaces || len(backPieces)+1 < MinFaces {
		return nil, nil, false, nil
	}

	// IDs are taken only once the cut is known to happen.
	frontFaces := append(derivePieces(frontPieces, ids), capFace(s, backCap.Flip(), ids, opts))
	backFaces := append(derivePieces(backPieces, ids), capFace(s, backCap, ids, opts))

	front = derivedSolid(s, frontFaces, ids, opts)
	back = derivedSolid(s, backFaces, ids, opts)
	return front, back, true, nil
}

// piece is one side of a split face, still bound to the face it came from.
type piece struct {
	face *Face
	poly *geom.Polygon
}

func derivePieces(pieces []piece, ids *IDGenerator) []*Face {
	faces := make([]*Face, 0, len(pieces)+1)
	for _, p := range pieces {
		faces = append(faces, p.face.derive(ids.NextFaceID(), p.poly))
	}
	return faces
}

func firstNonNil(polys ...*geom.Polygon) *geom.Polygon {
	for _, p := range polys {
		if p != nil {
			return p
		}
	}
	return nil
}

// weldPiece merges near-coincident vertices of a split piece. It returns nil
// for a missing piece or one that is degenerate once welded.
func weldPiece(poly *geom.Polygon, weld float64) *geom.Polygon {
	if poly == nil {
		return nil
	}
	if weld > 0 {
		welded, err := poly.Simplify(weld)
		if err != nil {
			return nil
		}
		poly = welded
	}
	if poly.Area() < geom.AreaEpsilon {
		return nil
	}
	return poly
}

// capPolygon builds the face on the cut plane by clipping a large polygon on
// the plane against every face plane of the solid. The result faces along the
// plane normal, which is outward for the back half. It returns nil when
// nothing of the plane lies inside the solid.
func capPolygon(s *Solid, plane geom.Plane, eps float64) (*geom.Polygon, error) {
	bounds := s.Bounds()
	size := bounds.Dimensions().Length() + 1
	poly := geom.NewBasePolygon(plane, bounds.Center(), size)

	for _, f := range s.Faces {
		res, _, err := poly.Split(f.Plane, eps)
		if err != nil {
			return nil, fmt.Errorf("building cap for solid %d: %w", s.ID, err)
		}
		switch {
		case res.Back != nil:
			poly = res.Back
		case res.CoplanarBack != nil, res.CoplanarFront != nil:
			// The cut runs along an existing face; keep clipping by the rest.
		default:
			return nil, nil
		}
	}
	if poly.Area() < geom.AreaEpsilon {
		return nil, nil
	}
	return poly, nil
}

func capFace(s *Solid, poly *geom.Polygon, ids *IDGenerator, opts SplitOptions) *Face {
	plane := poly.Plane()
	var nearest *Face
	best := -2.0
	for _, f := range s.Faces {
		if d := f.Plane.Normal.Dot(plane.Normal); d > best {
			best = d
			nearest = f
		}
	}

	var face *Face
	if nearest != nil {
		face = nearest.derive(ids.NextFaceID(), poly)
		face.Texture = nearest.Texture.AlignToPlane(plane)
	} else {
		face = NewFace(ids.NextFaceID(), poly, TextureRef{})
	}
	if opts.CapTexture != nil {
		face.Texture = *opts.CapTexture
	}
	return face
}

func derivedSolid(original *Solid, faces []*Face, ids *IDGenerator, opts SplitOptions) *Solid {
	s := NewSolid(ids.NextObjectID(), faces)
	s.ParentID = original.ParentID
	s.Color = original.Color
	if opts.KeepSelection {
		s.Selected = original.Selected
	}
	return s
}
