package facemesh

import "strconv"

// Attribute identifies one of the mesh buffers a renderer uploads.
type Attribute uint8

const (
	AttrPosition Attribute = 1 << iota
	AttrNormal
	AttrUV
)

func (a Attribute) String() string {
	switch a {
	case AttrPosition:
		return "position"
	case AttrNormal:
		return "normal"
	case AttrUV:
		return "uv"
	}
	return "attribute(" + strconv.Itoa(int(a)) + ")"
}

// MeshSink receives mesh buffers, typically a renderer's vertex buffers.
type MeshSink interface {
	SetIndices(indices []int)
	Upload(attr Attribute, data []float64)
}

// Dirty returns the attributes changed since the last Publish.
func (g *FaceGeometry) Dirty() Attribute {
	return g.dirty
}

// Publish hands every changed buffer to sink and clears the dirty set.
// Indices are sent on the first publish only, since connectivity is fixed.
func (g *FaceGeometry) Publish(sink MeshSink) {
	if !g.published {
		sink.SetIndices(g.topo.Indices())
		g.published = true
	}
	if g.dirty&AttrPosition != 0 {
		sink.Upload(AttrPosition, g.positions)
	}
	if g.dirty&AttrNormal != 0 {
		sink.Upload(AttrNormal, g.normals)
	}
	if g.dirty&AttrUV != 0 {
		sink.Upload(AttrUV, g.uvs)
	}
	g.dirty = 0
}
