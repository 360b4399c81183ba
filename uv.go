package facemesh

// setReferenceUVs copies the topology's reference parameterisation,
// mirroring U when the source is flipped. V is inverted because image rows
// grow downward while texture V grows upward.
func (g *FaceGeometry) setReferenceUVs() {
	for i := 0; i < g.topo.Len(); i++ {
		ref := g.topo.ReferenceUV(i)
		u := ref[0]
		if g.flipped {
			u = 1 - u
		}
		g.uvs[i*2] = u
		g.uvs[i*2+1] = 1 - ref[1]
	}
	g.dirty |= AttrUV
}

// setSourceUVs projects each vertex onto the source frame. The estimator
// already un-mirrors a flipped source, so U is mirrored only for an
// unflipped one.
func (g *FaceGeometry) setSourceUVs() {
	w, h := g.width*g.opts.Scale, g.height*g.opts.Scale
	for i := 0; i < g.topo.Len(); i++ {
		x, y := g.positions[i*3], g.positions[i*3+1]
		u := x/w + 0.5
		if !g.flipped {
			u = 1 - u
		}
		g.uvs[i*2] = u
		g.uvs[i*2+1] = y/h + 0.5
	}
	g.dirty |= AttrUV
}

// SwapUVs exchanges texture coordinates with other, so each face is drawn
// with the other's texture. Both geometries must share a topology.
func (g *FaceGeometry) SwapUVs(other *FaceGeometry) {
	for i := range g.uvs {
		g.uvs[i], other.uvs[i] = other.uvs[i], g.uvs[i]
	}
	g.dirty |= AttrUV
	other.dirty |= AttrUV
}

// SetUVsFromReference maps the texture onto a reference face: ref holds the
// landmarks estimated on a still image of the given size, and each vertex
// samples the image where its landmark was found. The mapping is replaced
// again by the next mirror change in reference mode, or by every Update in
// source-aligned mode.
func (g *FaceGeometry) SetUVsFromReference(ref Landmarks, width, height float64) {
	for i, p := range ref {
		g.uvs[i*2] = p[0] / width
		g.uvs[i*2+1] = 1 - p[1]/height
	}
	g.dirty |= AttrUV
}
