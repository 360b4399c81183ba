package facemesh

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"
)

//go:embed assets/canonical_face.ply
var canonicalPLY []byte

var (
	canonicalOnce sync.Once
	canonical     *Topology
)

// Canonical returns the compiled-in topology: 468 vertices, the landmark
// count of the canonical face model, laid out as a 26x18 grid in row-major
// order. It is a stand-in, not a face triangulation. Captures from a real
// 468-landmark estimator need the MediaPipe canonical table loaded with
// LoadTopologyPLYFile, and the named anchors (Nose, Chin, ...) only pick
// out those features on that table.
//
// The asset is parsed on first use; a malformed asset is a build defect and
// panics.
func Canonical() *Topology {
	canonicalOnce.Do(func() {
		t, err := ReadTopologyPLY(bytes.NewReader(canonicalPLY))
		if err != nil {
			panic(fmt.Errorf("facemesh: canonical topology: %w", err))
		}
		canonical = t
	})
	return canonical
}
