package facemesh

import (
	"math"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const gridCols = 26

// gridLandmarks lays the canonical landmarks out in image space, 10 pixels
// apart, with depth from fn.
func gridLandmarks(fn func(col, row int) float64) Landmarks {
	n := Canonical().Len()
	lm := make(Landmarks, n)
	for i := range lm {
		col, row := i%gridCols, i/gridCols
		lm[i] = mgl64.Vec3{float64(40 + col*10), float64(30 + row*10), fn(col, row)}
	}
	return lm
}

func flat(int, int) float64 { return 0 }

func dome(col, row int) float64 {
	x, y := float64(col-12), float64(row-8)
	return (x*x + y*y) / 10
}

func triangleTopology(t *testing.T) *Topology {
	t.Helper()
	topo, err := NewTopology([]int{0, 1, 2}, []float64{0, 0, 4096, 0, 0, 4096}, 4096)
	if err != nil {
		t.Fatalf("NewTopology() error = %v", err)
	}
	return topo
}

func TestUpdateCoordinateFlip(t *testing.T) {
	testCases := []struct {
		name     string
		point    mgl64.Vec3
		mirrored bool
		expected mgl64.Vec3
	}{
		// y = h - p.y - h/2 = 100 - 0 - 50.
		{"Origin unmirrored", mgl64.Vec3{0, 0, 0}, false, mgl64.Vec3{-100, 50, 0}},
		{"Origin mirrored", mgl64.Vec3{0, 0, 0}, true, mgl64.Vec3{100, 50, 0}},
		{"Frame centre", mgl64.Vec3{100, 50, 0}, false, mgl64.Vec3{0, 0, 0}},
		{"Depth is negated", mgl64.Vec3{100, 50, 7}, false, mgl64.Vec3{0, 0, -7}},
		{"Bottom right", mgl64.Vec3{200, 100, -3}, false, mgl64.Vec3{100, -50, 3}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := NewFaceGeometry(triangleTopology(t), Options{})
			g.SetFrameSize(200, 100)
			g.Update(Landmarks{tc.point, {1, 0, 0}, {0, 1, 0}}, tc.mirrored)

			if got := g.Vertex(0); got != tc.expected {
				t.Errorf("Vertex(0) = %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestUpdateAppliesScale(t *testing.T) {
	g := NewFaceGeometry(triangleTopology(t), Options{Scale: 10})
	g.SetFrameSize(200, 100)
	g.Update(Landmarks{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}}, false)

	if got, want := g.Vertex(0), (mgl64.Vec3{-1000, 500, -10}); got != want {
		t.Errorf("Vertex(0) = %v, want %v", got, want)
	}
}

func TestUpdateKeepsBufferLengths(t *testing.T) {
	topo := Canonical()
	for _, opts := range []Options{{}, {SourceAlignedUVs: true}} {
		g := NewFaceGeometry(topo, opts)
		g.SetFrameSize(320, 240)
		for frame := 0; frame < 3; frame++ {
			g.Update(gridLandmarks(dome), frame%2 == 1)
			if len(g.Positions()) != topo.Len()*3 {
				t.Errorf("len(Positions()) = %d, want %d", len(g.Positions()), topo.Len()*3)
			}
			if len(g.Normals()) != topo.Len()*3 {
				t.Errorf("len(Normals()) = %d, want %d", len(g.Normals()), topo.Len()*3)
			}
			if len(g.UVs()) != topo.Len()*2 {
				t.Errorf("len(UVs()) = %d, want %d", len(g.UVs()), topo.Len()*2)
			}
		}
	}
}

func TestUpdateIsIdempotent(t *testing.T) {
	for _, opts := range []Options{{}, {SourceAlignedUVs: true}} {
		for _, mirrored := range []bool{false, true} {
			g := NewFaceGeometry(Canonical(), opts)
			g.SetFrameSize(320, 240)
			lm := gridLandmarks(dome)

			g.Update(lm, mirrored)
			positions := slices.Clone(g.Positions())
			normals := slices.Clone(g.Normals())
			uvs := slices.Clone(g.UVs())

			g.Update(lm, mirrored)
			if !slices.Equal(positions, g.Positions()) {
				t.Errorf("opts %+v mirrored %v: positions changed between identical updates", opts, mirrored)
			}
			if !slices.Equal(normals, g.Normals()) {
				t.Errorf("opts %+v mirrored %v: normals changed between identical updates", opts, mirrored)
			}
			if !slices.Equal(uvs, g.UVs()) {
				t.Errorf("opts %+v mirrored %v: uvs changed between identical updates", opts, mirrored)
			}
		}
	}
}

func TestReferenceUVsAtConstruction(t *testing.T) {
	topo := Canonical()
	g := NewFaceGeometry(topo, Options{})
	for i := 0; i < topo.Len(); i++ {
		ref, uv := topo.ReferenceUV(i), g.UV(i)
		if uv[0] != ref[0] || uv[1] != 1-ref[1] {
			t.Fatalf("UV(%d) = %v, want [%v %v]", i, uv, ref[0], 1-ref[1])
		}
	}
	if g.Flipped() {
		t.Error("Flipped() = true for a new geometry")
	}
}

func TestReferenceUVsSkipUnchangedMirror(t *testing.T) {
	g := NewFaceGeometry(Canonical(), Options{})
	g.SetFrameSize(320, 240)
	g.Update(gridLandmarks(flat), true)
	before := slices.Clone(g.UVs())

	// Scribble on the buffer: a skipped recomputation leaves it alone.
	g.UVs()[0] = 42
	g.Update(gridLandmarks(dome), true)
	if g.UVs()[0] != 42 {
		t.Fatalf("UVs recomputed although the mirror flag did not change")
	}
	g.UVs()[0] = before[0]
	if !slices.Equal(before, g.UVs()) {
		t.Error("UVs changed although the mirror flag did not change")
	}
}

func TestReferenceUVsMirrorOnFlagChange(t *testing.T) {
	g := NewFaceGeometry(Canonical(), Options{})
	g.SetFrameSize(320, 240)
	lm := gridLandmarks(flat)

	g.Update(lm, false)
	before := slices.Clone(g.UVs())

	g.Update(lm, true)
	if !g.Flipped() {
		t.Fatal("Flipped() = false after a mirrored update")
	}
	for i := 0; i < g.Len(); i++ {
		if got, want := g.UVs()[i*2], 1-before[i*2]; got != want {
			t.Fatalf("U of vertex %d = %v, want %v", i, got, want)
		}
		if got, want := g.UVs()[i*2+1], before[i*2+1]; got != want {
			t.Fatalf("V of vertex %d = %v, want %v", i, got, want)
		}
	}

	mirrored := slices.Clone(g.UVs())
	g.Update(lm, false)
	for i := 0; i < g.Len(); i++ {
		if !almostEqual(g.UVs()[i*2], 1-mirrored[i*2]) {
			t.Fatalf("U of vertex %d = %v, want %v", i, g.UVs()[i*2], 1-mirrored[i*2])
		}
	}
}

func TestSourceAlignedUVs(t *testing.T) {
	testCases := []struct {
		name     string
		point    mgl64.Vec3
		mirrored bool
		expected mgl64.Vec2
	}{
		{"Centre unmirrored", mgl64.Vec3{100, 50, 0}, false, mgl64.Vec2{0.5, 0.5}},
		{"Upper right unmirrored", mgl64.Vec3{150, 25, 0}, false, mgl64.Vec2{0.25, 0.75}},
		{"Upper left mirrored", mgl64.Vec3{-150, 25, 0}, true, mgl64.Vec2{0.25, 0.75}},
		{"Bottom left unmirrored", mgl64.Vec3{0, 100, 0}, false, mgl64.Vec2{1, 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for _, scale := range []float64{1, 10} {
				g := NewFaceGeometry(triangleTopology(t), Options{SourceAlignedUVs: true, Scale: scale})
				g.SetFrameSize(200, 100)
				g.Update(Landmarks{tc.point, {1, 0, 0}, {0, 1, 0}}, tc.mirrored)

				got := g.UV(0)
				if !almostEqual(got[0], tc.expected[0]) || !almostEqual(got[1], tc.expected[1]) {
					t.Errorf("scale %v: UV(0) = %v, want %v", scale, got, tc.expected)
				}
				if g.Flipped() != tc.mirrored {
					t.Errorf("scale %v: Flipped() = %v, want %v", scale, g.Flipped(), tc.mirrored)
				}
			}
		})
	}
}

func TestPlanarPatchNormals(t *testing.T) {
	for _, mirrored := range []bool{false, true} {
		g := NewFaceGeometry(Canonical(), Options{})
		g.SetFrameSize(320, 240)
		g.Update(gridLandmarks(flat), mirrored)

		for i := 0; i < g.Len(); i++ {
			n := g.Normal(i)
			if !almostEqual(n[0], 0) || !almostEqual(n[1], 0) || !almostEqual(math.Abs(n[2]), 1) {
				t.Fatalf("mirrored %v: Normal(%d) = %v, want [0 0 ±1]", mirrored, i, n)
			}
		}
	}
}

func TestNormalsAreUnitOnCurvedSurface(t *testing.T) {
	g := NewFaceGeometry(Canonical(), Options{})
	g.SetFrameSize(320, 240)
	g.Update(gridLandmarks(dome), false)

	for i := 0; i < g.Len(); i++ {
		if l := g.Normal(i).Len(); !almostEqual(l, 1) {
			t.Fatalf("|Normal(%d)| = %v, want 1", i, l)
		}
	}
}

func TestDegenerateTrianglesGiveZeroNormals(t *testing.T) {
	g := NewFaceGeometry(triangleTopology(t), Options{})
	g.SetFrameSize(200, 100)
	g.Update(Landmarks{{5, 5, 5}, {5, 5, 5}, {5, 5, 5}}, false)

	for i := 0; i < g.Len(); i++ {
		n := g.Normal(i)
		if n != (mgl64.Vec3{}) {
			t.Errorf("Normal(%d) = %v, want zero vector", i, n)
		}
	}
}

func TestSetFrameSizeReportsChanges(t *testing.T) {
	g := NewFaceGeometry(Canonical(), Options{})
	if !g.SetFrameSize(640, 480) {
		t.Error("SetFrameSize() = false for a new size")
	}
	if g.SetFrameSize(640, 480) {
		t.Error("SetFrameSize() = true for an unchanged size")
	}
	if !g.SetFrameSize(480, 640) {
		t.Error("SetFrameSize() = false after a rotation")
	}
	if w, h := g.FrameSize(); w != 480 || h != 640 {
		t.Errorf("FrameSize() = %v, %v, want 480, 640", w, h)
	}
}

func TestReadyAfterFirstUpdate(t *testing.T) {
	g := NewFaceGeometry(Canonical(), Options{})
	if g.Ready() {
		t.Fatal("Ready() = true before any update")
	}
	g.SetFrameSize(320, 240)
	g.Update(gridLandmarks(flat), false)
	if !g.Ready() {
		t.Error("Ready() = false after an update")
	}
}

func TestSwapUVs(t *testing.T) {
	a := NewFaceGeometry(Canonical(), Options{SourceAlignedUVs: true})
	b := NewFaceGeometry(Canonical(), Options{SourceAlignedUVs: true})
	for _, g := range []*FaceGeometry{a, b} {
		g.SetFrameSize(640, 480)
	}
	a.Update(gridLandmarks(flat), false)
	b.Update(gridLandmarks(dome), true)
	a.Publish(discardSink{})
	b.Publish(discardSink{})

	uvA, uvB := slices.Clone(a.UVs()), slices.Clone(b.UVs())
	a.SwapUVs(b)

	if !slices.Equal(a.UVs(), uvB) || !slices.Equal(b.UVs(), uvA) {
		t.Error("SwapUVs() did not exchange the buffers")
	}
	if a.Dirty() != AttrUV || b.Dirty() != AttrUV {
		t.Errorf("Dirty() = %v, %v, want uv for both", a.Dirty(), b.Dirty())
	}
}

func TestSetUVsFromReference(t *testing.T) {
	g := NewFaceGeometry(triangleTopology(t), Options{})
	g.SetUVsFromReference(Landmarks{{0, 0, 0}, {256, 128, 0}, {512, 512, 9}}, 512, 512)

	expected := []float64{0, 1, 0.5, 0.75, 1, 0}
	for i, want := range expected {
		if got := g.UVs()[i]; !almostEqual(got, want) {
			t.Errorf("UVs()[%d] = %v, want %v", i, got, want)
		}
	}
}
