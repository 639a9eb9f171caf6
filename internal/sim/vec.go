package sim

import "math"

// Vec2 is a 2D position or velocity in scene units.
type Vec2 struct {
	X float64
	Y float64
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

func (v Vec2) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min Vec2
	Max Vec2
}

// NewAABB builds a box from a center point and half extents.
func NewAABB(center, halfExtents Vec2) AABB {
	return AABB{
		Min: center.Sub(halfExtents),
		Max: center.Add(halfExtents),
	}
}

// Overlaps reports whether the two boxes intersect, edges included.
func (a AABB) Overlaps(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y
}

// Contains reports whether the point lies inside the box, edges included.
func (a AABB) Contains(p Vec2) bool {
	return p.X >= a.Min.X && p.X <= a.Max.X && p.Y >= a.Min.Y && p.Y <= a.Max.Y
}

// Center returns the midpoint of the box.
func (a AABB) Center() Vec2 {
	return a.Min.Add(a.Max).Scale(0.5)
}

// Translate returns the box shifted by the given offset.
func (a AABB) Translate(o Vec2) AABB {
	return AABB{Min: a.Min.Add(o), Max: a.Max.Add(o)}
}
