package facemesh

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Anchor names a landmark triple that moves rigidly with part of the face.
type Anchor struct {
	Name    string
	A, B, C int
}

// Built-in anchors, as landmark indices of the MediaPipe canonical face.
// On any other 468-vertex table, including the grid returned by Canonical,
// they do not sit on the named features.
var (
	Nose     = Anchor{Name: "nose", A: 5, B: 45, C: 275}
	Chin     = Anchor{Name: "chin", A: 208, B: 428, C: 175}
	LeftEye  = Anchor{Name: "left-eye", A: 225, B: 193, C: 230}
	RightEye = Anchor{Name: "right-eye", A: 417, B: 445, C: 450}
	Halo     = Anchor{Name: "halo", A: 10, B: 251, C: 21}
)

var anchors = map[string]Anchor{
	Nose.Name:     Nose,
	Chin.Name:     Chin,
	LeftEye.Name:  LeftEye,
	RightEye.Name: RightEye,
	Halo.Name:     Halo,
}

// Anchors returns the built-in anchors ordered by name.
func Anchors() []Anchor {
	out := make([]Anchor, 0, len(anchors))
	for _, a := range anchors {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ParseAnchor accepts a built-in anchor name or an explicit "a,b,c" triple.
// Indices are checked against n.
func ParseAnchor(s string, n int) (Anchor, error) {
	if a, ok := anchors[strings.ToLower(s)]; ok {
		if a.A >= n || a.B >= n || a.C >= n {
			return Anchor{}, fmt.Errorf("anchor %q does not fit a %d-landmark topology", s, n)
		}
		return a, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Anchor{}, fmt.Errorf("unknown anchor %q", s)
	}
	var idx [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Anchor{}, fmt.Errorf("anchor %q: %w", s, err)
		}
		if v < 0 || v >= n {
			return Anchor{}, fmt.Errorf("anchor %q: index %d outside [0,%d)", s, v, n)
		}
		idx[i] = v
	}
	return Anchor{Name: s, A: idx[0], B: idx[1], C: idx[2]}, nil
}

func (a Anchor) String() string {
	return fmt.Sprintf("%s(%d,%d,%d)", a.Name, a.A, a.B, a.C)
}
