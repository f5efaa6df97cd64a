// Package brush holds the editor's convex solids and the CSG operations that
// build, split, carve and hollow them.
package brush

import "sync/atomic"

// IDGenerator hands out monotonically increasing object and face IDs.
// It is safe for concurrent use.
type IDGenerator struct {
	objects atomic.Int64
	faces   atomic.Int64
}

// NewIDGenerator returns a generator whose first IDs are 1.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// NextObjectID returns a fresh solid/entity ID.
func (g *IDGenerator) NextObjectID() int64 {
	return g.objects.Add(1)
}

// NextFaceID returns a fresh face ID.
func (g *IDGenerator) NextFaceID() int64 {
	return g.faces.Add(1)
}

// Reset resynchronizes the counters after a bulk import so the next IDs are
// maxObject+1 and maxFace+1.
func (g *IDGenerator) Reset(maxObject, maxFace int64) {
	g.objects.Store(maxObject)
	g.faces.Store(maxFace)
}

// Observe raises the counters so that later IDs exceed object and face. It
// never lowers them.
func (g *IDGenerator) Observe(object, face int64) {
	raise(&g.objects, object)
	raise(&g.faces, face)
}

func raise(c *atomic.Int64, v int64) {
	for {
		cur := c.Load()
		if cur >= v || c.CompareAndSwap(cur, v) {
			return
		}
	}
}
