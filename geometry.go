package facemesh

import "github.com/go-gl/mathgl/mgl64"

// Landmarks is one face's worth of estimator output, index-aligned with a
// Topology.
type Landmarks []mgl64.Vec3

// Options configures a FaceGeometry.
type Options struct {
	// SourceAlignedUVs makes texture coordinates follow the live source
	// frame instead of the topology's reference UVs.
	SourceAlignedUVs bool
	// Scale multiplies positions after the axis flip. Zero means 1.
	Scale float64
}

// FaceGeometry turns per-frame landmarks into renderable mesh buffers.
// It is not safe for concurrent use; one instance tracks one face.
type FaceGeometry struct {
	topo *Topology
	opts Options

	positions []float64
	normals   []float64
	uvs       []float64

	flipped bool
	width   float64
	height  float64
	ready   bool

	dirty     Attribute
	published bool
}

// NewFaceGeometry returns an uninitialized geometry over topo with reference UVs.
func NewFaceGeometry(topo *Topology, opts Options) *FaceGeometry {
	if opts.Scale == 0 {
		opts.Scale = 1
	}
	n := topo.Len()
	g := &FaceGeometry{
		topo:      topo,
		opts:      opts,
		positions: make([]float64, n*3),
		normals:   make([]float64, n*3),
		uvs:       make([]float64, n*2),
	}
	g.setReferenceUVs()
	g.dirty = AttrPosition | AttrNormal | AttrUV
	return g
}

// SetFrameSize records the dimensions positions and source-aligned UVs are
// expressed in. It reports whether the size changed.
func (g *FaceGeometry) SetFrameSize(width, height float64) bool {
	if g.width == width && g.height == height {
		return false
	}
	g.width, g.height = width, height
	return true
}

// Update repositions every vertex from landmarks, then recomputes normals
// and texture coordinates. mirrored reports whether the source was
// horizontally flipped before estimation. landmarks must hold exactly Len()
// points.
func (g *FaceGeometry) Update(landmarks Landmarks, mirrored bool) {
	halfW, halfH := 0.5*g.width, 0.5*g.height
	s := g.opts.Scale

	for i, p := range landmarks {
		x := p[0] - halfW
		if mirrored {
			x = p[0] + halfW
		}
		g.positions[i*3] = x * s
		g.positions[i*3+1] = (g.height - p[1] - halfH) * s
		g.positions[i*3+2] = -p[2] * s
	}
	g.dirty |= AttrPosition

	computeVertexNormals(g.positions, g.topo.triangles, g.normals)
	g.dirty |= AttrNormal

	if g.opts.SourceAlignedUVs {
		g.flipped = mirrored
		g.setSourceUVs()
	} else if mirrored != g.flipped {
		g.flipped = mirrored
		g.setReferenceUVs()
	}
	g.ready = true
}

// Len returns the number of vertices.
func (g *FaceGeometry) Len() int {
	return g.topo.Len()
}

// Topology returns the table the geometry was built over.
func (g *FaceGeometry) Topology() *Topology {
	return g.topo
}

// Positions returns the live position buffer, three values per vertex.
func (g *FaceGeometry) Positions() []float64 {
	return g.positions
}

// Normals returns the live normal buffer, three values per vertex.
func (g *FaceGeometry) Normals() []float64 {
	return g.normals
}

// UVs returns the live texture coordinate buffer, two values per vertex.
func (g *FaceGeometry) UVs() []float64 {
	return g.uvs
}

// Vertex returns the position of vertex i.
func (g *FaceGeometry) Vertex(i int) mgl64.Vec3 {
	return mgl64.Vec3{g.positions[i*3], g.positions[i*3+1], g.positions[i*3+2]}
}

// Normal returns the unit normal of vertex i, or zero if it has no area.
func (g *FaceGeometry) Normal(i int) mgl64.Vec3 {
	return mgl64.Vec3{g.normals[i*3], g.normals[i*3+1], g.normals[i*3+2]}
}

// UV returns the texture coordinate of vertex i.
func (g *FaceGeometry) UV(i int) mgl64.Vec2 {
	return mgl64.Vec2{g.uvs[i*2], g.uvs[i*2+1]}
}

// Flipped reports whether the current UVs reflect a mirrored source.
func (g *FaceGeometry) Flipped() bool {
	return g.flipped
}

// FrameSize returns the size last passed to SetFrameSize.
func (g *FaceGeometry) FrameSize() (width, height float64) {
	return g.width, g.height
}

// Ready reports whether Update has been called at least once.
func (g *FaceGeometry) Ready() bool {
	return g.ready
}

// Options returns the options the geometry was built with, with defaults
// applied.
func (g *FaceGeometry) Options() Options {
	return g.opts
}
