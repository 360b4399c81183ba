package facemesh

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
)

const epsilon = 1e-6

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestNewTopologyRejectsMalformedData(t *testing.T) {
	testCases := []struct {
		name    string
		indices []int
		uvs     []float64
		scale   float64
	}{
		{"Zero scale", []int{0, 1, 2}, []float64{0, 0, 1, 0, 0, 1}, 0},
		{"Odd uv list", []int{0, 1, 2}, []float64{0, 0, 1, 0, 0}, 1},
		{"Empty uv list", []int{0, 1, 2}, nil, 1},
		{"Partial triangle", []int{0, 1}, []float64{0, 0, 1, 0, 0, 1}, 1},
		{"Index out of range", []int{0, 1, 3}, []float64{0, 0, 1, 0, 0, 1}, 1},
		{"Negative index", []int{0, -1, 2}, []float64{0, 0, 1, 0, 0, 1}, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTopology(tc.indices, tc.uvs, tc.scale)
			if !errors.Is(err, ErrMalformedTopology) {
				t.Errorf("NewTopology() error = %v, want ErrMalformedTopology", err)
			}
		})
	}
}

func TestNewTopologyScalesUVs(t *testing.T) {
	topo, err := NewTopology([]int{0, 1, 2}, []float64{0, 0, 2048, 1024, 4096, 4096}, 4096)
	if err != nil {
		t.Fatalf("NewTopology() error = %v", err)
	}
	if topo.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", topo.Len())
	}
	uv := topo.ReferenceUV(1)
	if uv[0] != 0.5 || uv[1] != 0.25 {
		t.Errorf("ReferenceUV(1) = %v, want [0.5 0.25]", uv)
	}
	if got := topo.Triangles(); len(got) != 1 || got[0] != [3]int{0, 1, 2} {
		t.Errorf("Triangles() = %v", got)
	}
}

func TestCanonicalTopology(t *testing.T) {
	topo := Canonical()
	if topo.Len() != 468 {
		t.Fatalf("Len() = %d, want 468", topo.Len())
	}
	if len(topo.Triangles()) != 850 {
		t.Errorf("len(Triangles()) = %d, want 850", len(topo.Triangles()))
	}
	if len(topo.Indices()) != 3*len(topo.Triangles()) {
		t.Errorf("len(Indices()) = %d, want %d", len(topo.Indices()), 3*len(topo.Triangles()))
	}
	for i := 0; i < topo.Len(); i++ {
		uv := topo.ReferenceUV(i)
		if uv[0] < 0 || uv[0] > 1 || uv[1] < 0 || uv[1] > 1 {
			t.Fatalf("ReferenceUV(%d) = %v outside the unit square", i, uv)
		}
	}
	if Canonical() != topo {
		t.Error("Canonical() should return the same table on every call")
	}
}

func TestTopologyPLYRoundTrip(t *testing.T) {
	src := Canonical()
	var buf bytes.Buffer
	if err := WriteTopologyPLY(&buf, src, DefaultUVScale); err != nil {
		t.Fatalf("WriteTopologyPLY() error = %v", err)
	}

	got, err := ReadTopologyPLY(&buf)
	if err != nil {
		t.Fatalf("ReadTopologyPLY() error = %v", err)
	}
	if got.Len() != src.Len() {
		t.Fatalf("Len() = %d, want %d", got.Len(), src.Len())
	}
	for i, tri := range src.Triangles() {
		if got.Triangles()[i] != tri {
			t.Fatalf("triangle %d = %v, want %v", i, got.Triangles()[i], tri)
		}
	}
	for i := 0; i < src.Len(); i++ {
		a, b := src.ReferenceUV(i), got.ReferenceUV(i)
		if !almostEqual(a[0], b[0]) || !almostEqual(a[1], b[1]) {
			t.Fatalf("ReferenceUV(%d) = %v, want %v", i, b, a)
		}
	}
}

func TestReadTopologyPLYErrors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{
			name:  "No header end",
			input: "ply\nformat ascii 1.0\nelement vertex 3\n",
		},
		{
			name: "No texture coordinates",
			input: "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\n" +
				"element face 1\nproperty list uchar int vertex_indices\nend_header\n0 0\n1 0\n0 1\n3 0 1 2\n",
		},
		{
			name: "Quad face",
			input: "ply\nformat ascii 1.0\nelement vertex 4\nproperty float u\nproperty float v\n" +
				"element face 1\nproperty list uchar int vertex_indices\nend_header\n0 0\n1 0\n1 1\n0 1\n4 0 1 2 3\n",
		},
		{
			name: "Truncated vertices",
			input: "ply\nformat ascii 1.0\nelement vertex 3\nproperty float u\nproperty float v\n" +
				"element face 1\nproperty list uchar int vertex_indices\nend_header\n0 0\n",
		},
		{
			name: "Negative vertex count",
			input: "ply\nformat ascii 1.0\nelement vertex -1\nproperty float u\nproperty float v\n" +
				"element face 1\nproperty list uchar int vertex_indices\nend_header\n3 0 1 2\n",
		},
		{
			name: "Negative face count",
			input: "ply\nformat ascii 1.0\nelement vertex 3\nproperty float u\nproperty float v\n" +
				"element face -2\nproperty list uchar int vertex_indices\nend_header\n0 0\n1 0\n0 1\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadTopologyPLY(strings.NewReader(tc.input))
			if !errors.Is(err, ErrMalformedTopology) {
				t.Errorf("ReadTopologyPLY() error = %v, want ErrMalformedTopology", err)
			}
		})
	}
}

func TestReadTopologyPLYAcceptsSTAndScale(t *testing.T) {
	input := "ply\nformat ascii 1.0\ncomment uv_scale 2\nelement vertex 3\n" +
		"property float x\nproperty float y\nproperty float z\nproperty float s\nproperty float t\n" +
		"element face 1\nproperty list uchar int vertex_indices\nend_header\n" +
		"0 0 0 0 0\n1 0 0 2 0\n0 1 0 0 1\n3 0 1 2\n"

	topo, err := ReadTopologyPLY(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadTopologyPLY() error = %v", err)
	}
	if uv := topo.ReferenceUV(1); uv[0] != 1 || uv[1] != 0 {
		t.Errorf("ReferenceUV(1) = %v, want [1 0]", uv)
	}
	if uv := topo.ReferenceUV(2); uv[0] != 0 || uv[1] != 0.5 {
		t.Errorf("ReferenceUV(2) = %v, want [0 0.5]", uv)
	}
}
