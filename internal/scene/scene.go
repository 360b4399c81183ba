// Package scene holds the renderer-side copy of a face mesh and the
// projection and ordering needed to draw it with a painter's algorithm.
package scene

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/smasonuk/facemesh"
)

// Buffers is a facemesh.MeshSink that keeps its own copy of every uploaded
// buffer, the way a GPU vertex buffer would.
type Buffers struct {
	Indices   []int
	Positions []float64
	Normals   []float64
	UVs       []float64

	Uploads int
}

func (b *Buffers) SetIndices(indices []int) {
	b.Indices = append(b.Indices[:0], indices...)
}

func (b *Buffers) Upload(attr facemesh.Attribute, data []float64) {
	switch attr {
	case facemesh.AttrPosition:
		b.Positions = append(b.Positions[:0], data...)
	case facemesh.AttrNormal:
		b.Normals = append(b.Normals[:0], data...)
	case facemesh.AttrUV:
		b.UVs = append(b.UVs[:0], data...)
	}
	b.Uploads++
}

// Len returns the number of vertices held.
func (b *Buffers) Len() int {
	return len(b.Positions) / 3
}

func (b *Buffers) Position(i int) mgl64.Vec3 {
	return mgl64.Vec3{b.Positions[i*3], b.Positions[i*3+1], b.Positions[i*3+2]}
}

func (b *Buffers) Normal(i int) mgl64.Vec3 {
	return mgl64.Vec3{b.Normals[i*3], b.Normals[i*3+1], b.Normals[i*3+2]}
}

func (b *Buffers) UV(i int) mgl64.Vec2 {
	return mgl64.Vec2{b.UVs[i*2], b.UVs[i*2+1]}
}

// View is an orthographic camera looking down -Z at the geometry origin,
// with the model rotated about X then Y.
type View struct {
	RotX, RotY float64
	// Zoom maps geometry units to pixels.
	Zoom   float64
	CX, CY float64
}

func (v View) Matrix() mgl64.Mat4 {
	return mgl64.HomogRotate3DY(v.RotY).Mul4(mgl64.HomogRotate3DX(v.RotX))
}

// Projected is a vertex after the view transform: screen coordinates plus
// view-space depth, larger being nearer the viewer.
type Projected struct {
	X, Y  float32
	Depth float64
}

// Project transforms every position in b.
func (v View) Project(b *Buffers) []Projected {
	m := v.Matrix()
	out := make([]Projected, b.Len())
	for i := range out {
		p := m.Mul4x1(b.Position(i).Vec4(1)).Vec3()
		out[i] = Projected{
			X:     float32(v.CX + p[0]*v.Zoom),
			Y:     float32(v.CY - p[1]*v.Zoom),
			Depth: p[2],
		}
	}
	return out
}

// Rotate applies the view rotation to a direction.
func (v View) Rotate(d mgl64.Vec3) mgl64.Vec3 {
	return v.Matrix().Mul4x1(d.Vec4(0)).Vec3()
}

// DepthOrder returns triangle numbers sorted from farthest to nearest by
// mean vertex depth, so later triangles paint over earlier ones.
func DepthOrder(indices []int, verts []Projected) []int {
	n := len(indices) / 3
	order := make([]int, n)
	depth := make([]float64, n)
	for t := 0; t < n; t++ {
		order[t] = t
		depth[t] = (verts[indices[t*3]].Depth + verts[indices[t*3+1]].Depth + verts[indices[t*3+2]].Depth) / 3
	}
	sort.SliceStable(order, func(i, j int) bool {
		return depth[order[i]] < depth[order[j]]
	})
	return order
}

// Light is the direction light travels towards the mesh from, normalised.
var Light = mgl64.Vec3{0.577, 0.577, 0.577}

// Shade returns flat ambient plus diffuse intensity for a normal.
func Shade(normal mgl64.Vec3) float32 {
	dot := math.Max(0, normal.Dot(Light))
	return float32(0.2 + 0.8*dot)
}
