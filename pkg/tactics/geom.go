package tactics

import "math"

// epsilon below which a direction is treated as degenerate.
const epsilon = 1e-6

// Vec2 is a point or direction on the combat plane.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Len() float64         { return math.Hypot(v.X, v.Y) }
func (v Vec2) Dist(o Vec2) float64  { return v.Sub(o).Len() }
func (v Vec2) IsZero() bool         { return v.Len() < epsilon }
func (v Vec2) Equal(o Vec2) bool    { return v.Dist(o) < epsilon }
func (v Vec2) Dot(o Vec2) float64   { return v.X*o.X + v.Y*o.Y }

// Lerp interpolates between v and o by t.
func (v Vec2) Lerp(o Vec2, t float64) Vec2 { return v.Add(o.Sub(v).Scale(t)) }

// Normalize returns the unit vector of v. The boolean is false when v is
// too short to have a direction.
func (v Vec2) Normalize() (Vec2, bool) {
	l := v.Len()
	if l < epsilon {
		return Vec2{}, false
	}
	return Vec2{v.X / l, v.Y / l}, true
}

// Rotate turns v counter-clockwise by deg degrees.
func (v Vec2) Rotate(deg float64) Vec2 {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return Vec2{v.X*cos - v.Y*sin, v.X*sin + v.Y*cos}
}

// direction returns the unit vector from -> to, substituting fallback when
// the two points coincide. A degenerate fallback becomes +X.
func direction(from, to, fallback Vec2) Vec2 {
	if d, ok := to.Sub(from).Normalize(); ok {
		return d
	}
	if d, ok := fallback.Normalize(); ok {
		return d
	}
	return Vec2{X: 1}
}
