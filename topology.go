package facemesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrMalformedTopology is returned when topology data cannot describe a
// triangle mesh over a fixed set of landmarks.
var ErrMalformedTopology = errors.New("malformed topology")

// DefaultUVScale is the resolution the reference UV table is authored at.
const DefaultUVScale = 4096

// Topology is the fixed structure shared by every face mesh: triangle
// connectivity over N landmarks and a reference UV for each landmark.
// It is immutable once built and safe to share between geometries.
type Topology struct {
	triangles [][3]int
	indices   []int
	uvs       []mgl64.Vec2
}

// NewTopology builds a topology from a flat triangle index list and a flat
// list of UV pairs expressed in source units. UVs are divided by uvScale.
func NewTopology(indices []int, uvs []float64, uvScale float64) (*Topology, error) {
	if uvScale <= 0 {
		return nil, fmt.Errorf("%w: uv scale %v must be positive", ErrMalformedTopology, uvScale)
	}
	if len(uvs) == 0 || len(uvs)%2 != 0 {
		return nil, fmt.Errorf("%w: uv table has %d values, want a non-empty list of pairs", ErrMalformedTopology, len(uvs))
	}
	if len(indices) == 0 || len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: index list has %d values, want a non-empty list of triples", ErrMalformedTopology, len(indices))
	}

	n := len(uvs) / 2
	t := &Topology{
		triangles: make([][3]int, len(indices)/3),
		indices:   make([]int, len(indices)),
		uvs:       make([]mgl64.Vec2, n),
	}
	copy(t.indices, indices)

	for i, idx := range indices {
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("%w: index %d at position %d outside [0,%d)", ErrMalformedTopology, idx, i, n)
		}
		t.triangles[i/3][i%3] = idx
	}
	for i := range t.uvs {
		t.uvs[i] = mgl64.Vec2{uvs[i*2] / uvScale, uvs[i*2+1] / uvScale}
	}
	return t, nil
}

// Len returns the number of landmarks the topology is defined over.
func (t *Topology) Len() int {
	return len(t.uvs)
}

// Triangles returns the index triples. The slice is shared and must not be
// modified.
func (t *Topology) Triangles() [][3]int {
	return t.triangles
}

// Indices returns the triangles as a flat index list, the layout renderers
// upload. The slice is shared and must not be modified.
func (t *Topology) Indices() []int {
	return t.indices
}

// ReferenceUV returns the normalised reference texture coordinate of landmark i.
func (t *Topology) ReferenceUV(i int) mgl64.Vec2 {
	return t.uvs[i]
}
