package facemesh

import "github.com/go-gl/mathgl/mgl64"

// computeVertexNormals writes one unit normal per vertex into normals: the
// normalised sum of the unit normals of every incident triangle. Triangles
// and vertices with no area get the zero vector.
func computeVertexNormals(positions []float64, triangles [][3]int, normals []float64) {
	for i := range normals {
		normals[i] = 0
	}

	at := func(i int) mgl64.Vec3 {
		return mgl64.Vec3{positions[i*3], positions[i*3+1], positions[i*3+2]}
	}

	for _, t := range triangles {
		a, b, c := at(t[0]), at(t[1]), at(t[2])
		n := safeNormalize(c.Sub(b).Cross(a.Sub(b)))
		for _, idx := range t {
			normals[idx*3] += n[0]
			normals[idx*3+1] += n[1]
			normals[idx*3+2] += n[2]
		}
	}

	for i := 0; i < len(normals); i += 3 {
		n := safeNormalize(mgl64.Vec3{normals[i], normals[i+1], normals[i+2]})
		normals[i], normals[i+1], normals[i+2] = n[0], n[1], n[2]
	}
}

// safeNormalize is Normalize with a zero-length vector mapped to zero.
func safeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}
