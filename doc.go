// Package facemesh turns per-frame facial landmarks into a renderable
// triangle mesh with normals and texture coordinates, and derives rigid
// coordinate frames from landmark triples for attaching props to a face.
//
// A Topology fixes the connectivity and reference UVs; a FaceGeometry owns
// the mutable buffers of one tracked face and is updated once per frame.
//
// The built-in topology returned by Canonical is a 468-vertex grid, not
// the MediaPipe face triangulation. Load the real table from a PLY file for
// estimator output.
package facemesh
