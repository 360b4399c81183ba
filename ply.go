package facemesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

func LoadTopologyPLYFile(fileName string) (*Topology, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("could not open PLY file %s: %w", fileName, err)
	}
	defer file.Close()

	topo, err := ReadTopologyPLY(file)
	if err != nil {
		return nil, fmt.Errorf("error parsing PLY file %s: %w", fileName, err)
	}

	return topo, nil
}

// ReadTopologyPLY parses an ASCII PLY file into a Topology. The vertex
// element must carry texture coordinates as u/v (or s/t) properties in
// source units; a "comment uv_scale N" header line sets the divisor, which
// defaults to DefaultUVScale. Faces must be triangles.
func ReadTopologyPLY(reader io.Reader) (*Topology, error) {
	scanner := bufio.NewScanner(reader)

	var vertexCount, faceCount int
	var currentElement string
	var vertexProps []string
	uvScale := float64(DefaultUVScale)
	sawHeader := false

	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "comment":
			if len(parts) == 3 && parts[1] == "uv_scale" {
				s, err := strconv.ParseFloat(parts[2], 64)
				if err != nil {
					return nil, fmt.Errorf("%w: bad uv_scale %q", ErrMalformedTopology, parts[2])
				}
				uvScale = s
			}
		case "element":
			if len(parts) == 3 {
				currentElement = parts[1]
				n, err := strconv.Atoi(parts[2])
				if err != nil || n < 0 {
					return nil, fmt.Errorf("%w: bad element count %q", ErrMalformedTopology, parts[2])
				}
				if parts[1] == "vertex" {
					vertexCount = n
				} else if parts[1] == "face" {
					faceCount = n
				}
			}
		case "property":
			if currentElement == "vertex" && len(parts) == 3 {
				vertexProps = append(vertexProps, parts[2])
			}
		case "end_header":
			sawHeader = true
		}
		if sawHeader {
			break
		}
	}
	if !sawHeader {
		return nil, fmt.Errorf("%w: missing end_header", ErrMalformedTopology)
	}

	uCol, vCol := propIndex(vertexProps, "u", "s"), propIndex(vertexProps, "v", "t")
	if uCol < 0 || vCol < 0 {
		return nil, fmt.Errorf("%w: vertex element has no texture coordinates", ErrMalformedTopology)
	}

	uvs := make([]float64, 0, vertexCount*2)
	for i := 0; i < vertexCount; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("%w: unexpected end of file while reading vertices", ErrMalformedTopology)
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) < len(vertexProps) {
			return nil, fmt.Errorf("%w: invalid vertex data on line %d", ErrMalformedTopology, i)
		}
		u, err := strconv.ParseFloat(parts[uCol], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: vertex %d: %v", ErrMalformedTopology, i, err)
		}
		v, err := strconv.ParseFloat(parts[vCol], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: vertex %d: %v", ErrMalformedTopology, i, err)
		}
		uvs = append(uvs, u, v)
	}

	indices := make([]int, 0, faceCount*3)
	for i := 0; i < faceCount; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("%w: unexpected end of file while reading faces", ErrMalformedTopology)
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) < 4 || parts[0] != "3" {
			return nil, fmt.Errorf("%w: face %d is not a triangle", ErrMalformedTopology, i)
		}
		for j := 1; j <= 3; j++ {
			idx, err := strconv.Atoi(parts[j])
			if err != nil {
				return nil, fmt.Errorf("%w: face %d: %v", ErrMalformedTopology, i, err)
			}
			indices = append(indices, idx)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from PLY source: %w", err)
	}

	return NewTopology(indices, uvs, uvScale)
}

func propIndex(props []string, names ...string) int {
	for i, p := range props {
		for _, n := range names {
			if p == n {
				return i
			}
		}
	}
	return -1
}

// SaveMeshPLY writes the current state of g to fileName.
func SaveMeshPLY(fileName string, g *FaceGeometry) error {
	file, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("could not create PLY file %s: %w", fileName, err)
	}

	if err := WriteMeshPLY(file, g); err != nil {
		file.Close()
		return fmt.Errorf("could not write PLY file %s: %w", fileName, err)
	}
	return file.Close()
}

// WriteMeshPLY writes positions, normals and texture coordinates of g as an
// ASCII PLY mesh.
func WriteMeshPLY(w io.Writer, g *FaceGeometry) error {
	writer := bufio.NewWriter(w)
	tris := g.topo.Triangles()

	_, _ = fmt.Fprintln(writer, "ply")
	_, _ = fmt.Fprintln(writer, "format ascii 1.0")
	_, _ = fmt.Fprintln(writer, "comment Generated by facemesh")
	_, _ = fmt.Fprintf(writer, "element vertex %d\n", g.Len())
	for _, p := range []string{"x", "y", "z", "nx", "ny", "nz", "s", "t"} {
		_, _ = fmt.Fprintf(writer, "property float %s\n", p)
	}
	_, _ = fmt.Fprintf(writer, "element face %d\n", len(tris))
	_, _ = fmt.Fprintln(writer, "property list uchar int vertex_indices")
	_, _ = fmt.Fprintln(writer, "end_header")

	for i := 0; i < g.Len(); i++ {
		p, n, uv := g.Vertex(i), g.Normal(i), g.UV(i)
		_, _ = fmt.Fprintf(writer, "%f %f %f %f %f %f %f %f\n",
			p[0], p[1], p[2], n[0], n[1], n[2], uv[0], uv[1])
	}
	for _, t := range tris {
		_, _ = fmt.Fprintf(writer, "3 %d %d %d\n", t[0], t[1], t[2])
	}

	return writer.Flush()
}

// WriteTopologyPLY writes t in the format ReadTopologyPLY accepts, with
// texture coordinates scaled back up by uvScale.
func WriteTopologyPLY(w io.Writer, t *Topology, uvScale float64) error {
	writer := bufio.NewWriter(w)

	_, _ = fmt.Fprintln(writer, "ply")
	_, _ = fmt.Fprintln(writer, "format ascii 1.0")
	_, _ = fmt.Fprintf(writer, "comment uv_scale %g\n", uvScale)
	_, _ = fmt.Fprintf(writer, "element vertex %d\n", t.Len())
	_, _ = fmt.Fprintln(writer, "property float u")
	_, _ = fmt.Fprintln(writer, "property float v")
	_, _ = fmt.Fprintf(writer, "element face %d\n", len(t.triangles))
	_, _ = fmt.Fprintln(writer, "property list uchar int vertex_indices")
	_, _ = fmt.Fprintln(writer, "end_header")

	for _, uv := range t.uvs {
		_, _ = fmt.Fprintf(writer, "%s %s\n",
			strconv.FormatFloat(uv[0]*uvScale, 'g', -1, 64),
			strconv.FormatFloat(uv[1]*uvScale, 'g', -1, 64))
	}
	for _, tri := range t.triangles {
		_, _ = fmt.Fprintf(writer, "3 %d %d %d\n", tri[0], tri[1], tri[2])
	}

	return writer.Flush()
}
