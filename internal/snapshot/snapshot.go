// Package snapshot renders a face geometry to a still image: the triangle
// wireframe over the source frame, plus the axes of any tracked anchors.
package snapshot

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gg"
	"github.com/smasonuk/facemesh"
)

// Options controls what Render draws.
type Options struct {
	// Width and Height of the image; zero uses the geometry's frame size.
	Width, Height int
	Background    gg.RGBA
	Wire          gg.RGBA
	LineWidth     float64
	// Anchors are drawn as axis gizmos of length AxisLength.
	Anchors    []facemesh.Anchor
	AxisLength float64
	// Scale must match the geometry's Options.Scale.
	Scale float64
}

func DefaultOptions() Options {
	return Options{
		Background: gg.RGB(0.08, 0.08, 0.1),
		Wire:       gg.RGB(1, 0, 1),
		LineWidth:  1,
		AxisLength: 20,
		Scale:      1,
	}
}

// Render draws g into a new image. The geometry must have been updated.
func Render(g *facemesh.FaceGeometry, opts Options) (image.Image, error) {
	dc, err := draw(g, opts)
	if err != nil {
		return nil, err
	}
	defer dc.Close()
	return dc.Image(), nil
}

// SavePNG renders g and writes the result to path.
func SavePNG(path string, g *facemesh.FaceGeometry, opts Options) error {
	dc, err := draw(g, opts)
	if err != nil {
		return err
	}
	defer dc.Close()
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("could not write snapshot %s: %w", path, err)
	}
	return nil
}

func draw(g *facemesh.FaceGeometry, opts Options) (*gg.Context, error) {
	if !g.Ready() {
		return nil, fmt.Errorf("geometry has no frame to render")
	}
	if opts.Scale == 0 {
		opts.Scale = 1
	}
	fw, fh := g.FrameSize()
	w, h := opts.Width, opts.Height
	if w == 0 || h == 0 {
		w, h = int(fw), int(fh)
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid snapshot size %dx%d", w, h)
	}

	p := projector{
		sx: float64(w) / fw, sy: float64(h) / fh,
		cx: float64(w) / 2, cy: float64(h) / 2,
		scale: opts.Scale,
	}
	if fw == 0 || fh == 0 {
		p.sx, p.sy = 1, 1
	}

	dc := gg.NewContext(w, h)
	dc.ClearWithColor(opts.Background)

	dc.SetColor(opts.Wire.Color())
	dc.SetLineWidth(opts.LineWidth)
	for _, t := range g.Topology().Triangles() {
		x0, y0 := p.project(g.Vertex(t[0]))
		x1, y1 := p.project(g.Vertex(t[1]))
		x2, y2 := p.project(g.Vertex(t[2]))
		dc.MoveTo(x0, y0)
		dc.LineTo(x1, y1)
		dc.LineTo(x2, y2)
		dc.ClosePath()
	}
	if err := dc.Stroke(); err != nil {
		dc.Close()
		return nil, fmt.Errorf("stroke wireframe: %w", err)
	}

	axisColors := [3]gg.RGBA{gg.RGB(1, 0.2, 0.2), gg.RGB(0.2, 1, 0.2), gg.RGB(0.3, 0.5, 1)}
	for _, a := range opts.Anchors {
		f := g.TrackAnchor(a)
		ox, oy := p.project(f.Position)
		for i, axis := range [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
			ex, ey := p.project(f.Transform(axis.Mul(opts.AxisLength * opts.Scale)))
			dc.SetColor(axisColors[i].Color())
			dc.SetLineWidth(2)
			dc.MoveTo(ox, oy)
			dc.LineTo(ex, ey)
			if err := dc.Stroke(); err != nil {
				dc.Close()
				return nil, fmt.Errorf("stroke anchor %s: %w", a.Name, err)
			}
		}
		slog.Debug("anchor drawn", "anchor", a.Name, "x", ox, "y", oy)
	}

	return dc, nil
}

// projector maps geometry space back onto the source image plane.
type projector struct {
	sx, sy, cx, cy, scale float64
}

func (p projector) project(v mgl64.Vec3) (float64, float64) {
	return p.cx + v[0]/p.scale*p.sx, p.cy - v[1]/p.scale*p.sy
}
