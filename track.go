package facemesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Frame is a rigid local coordinate frame derived from three landmarks.
type Frame struct {
	Position mgl64.Vec3
	// Normal is the unit normal of the plane through the three landmarks.
	Normal mgl64.Vec3
	// Rotation holds the orthonormal basis in its first three columns and
	// no translation.
	Rotation mgl64.Mat4
}

// Track derives a frame from the current positions of landmarks a, b and c.
// The points must not be collinear or coincident; a degenerate triple
// yields NaN components.
func (g *FaceGeometry) Track(a, b, c int) Frame {
	p0, p1, p2 := g.Vertex(a), g.Vertex(b), g.Vertex(c)

	center := p0.Add(p1).Add(p2).Mul(1.0 / 3)

	x := p1.Sub(p2).Normalize()
	y := p1.Sub(p0).Normalize()
	z := x.Cross(y).Normalize()
	y2 := x.Cross(z).Normalize()
	z2 := x.Cross(y2).Normalize()

	return Frame{
		Position: center,
		Normal:   z,
		Rotation: mgl64.Mat4FromCols(x.Vec4(0), y2.Vec4(0), z2.Vec4(0), mgl64.Vec4{0, 0, 0, 1}),
	}
}

// TrackAnchor is Track over a named landmark triple.
func (g *FaceGeometry) TrackAnchor(a Anchor) Frame {
	return g.Track(a.A, a.B, a.C)
}

// Axes returns the basis vectors of the frame's rotation.
func (f Frame) Axes() (x, y, z mgl64.Vec3) {
	return f.Rotation.Col(0).Vec3(), f.Rotation.Col(1).Vec3(), f.Rotation.Col(2).Vec3()
}

// Matrix returns the rotation with the frame position as translation, the
// transform that places an object authored at the origin onto the face.
func (f Frame) Matrix() mgl64.Mat4 {
	m := f.Rotation
	m.SetCol(3, f.Position.Vec4(1))
	return m
}

// Transform maps a point from frame space into geometry space.
func (f Frame) Transform(v mgl64.Vec3) mgl64.Vec3 {
	return f.Matrix().Mul4x1(v.Vec4(1)).Vec3()
}

func (f Frame) Quat() mgl64.Quat {
	return mgl64.Mat4ToQuat(f.Rotation)
}

// Euler returns the rotation as intrinsic XYZ angles in radians.
func (f Frame) Euler() (x, y, z float64) {
	m := f.Rotation
	m13 := mgl64.Clamp(m.At(0, 2), -1, 1)
	y = math.Asin(m13)
	if math.Abs(m13) < 0.9999999 {
		x = math.Atan2(-m.At(1, 2), m.At(2, 2))
		z = math.Atan2(-m.At(0, 1), m.At(0, 0))
	} else {
		x = math.Atan2(m.At(2, 1), m.At(1, 1))
	}
	return x, y, z
}
