// Package viewer replays a capture session in a window, drawing the face
// mesh the way a live demo would.
package viewer

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"log"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/smasonuk/facemesh"
	"github.com/smasonuk/facemesh/internal/scene"
)

var (
	whiteImage = ebiten.NewImage(3, 3)
	whiteSub   *ebiten.Image
)

func init() {
	whiteImage.Fill(color.White)
	whiteSub = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}

type Config struct {
	Captures []facemesh.Capture
	Topology *facemesh.Topology
	Options  facemesh.Options
	// Texture is an optional image file mapped with the mesh UVs.
	Texture string
	Anchors []facemesh.Anchor
	// TicksPerFrame is how many 60Hz ticks each capture is shown for.
	TicksPerFrame int
	Title         string
}

// Game is the ebiten.Game driving one geometry from the configured captures.
type Game struct {
	cfg      Config
	geom     *facemesh.FaceGeometry
	session  *facemesh.Session
	buffers  *scene.Buffers
	texture  *ebiten.Image
	view     scene.View
	width    int
	height   int
	tick     int
	frame    int
	paused   bool
	wire     bool
	mirror   bool
	dragging bool
	lastX    int
	lastY    int
}

func NewGame(cfg Config) (*Game, error) {
	if len(cfg.Captures) == 0 {
		return nil, fmt.Errorf("no captures to view")
	}
	if cfg.TicksPerFrame <= 0 {
		cfg.TicksPerFrame = 2
	}

	g := &Game{
		cfg:     cfg,
		geom:    facemesh.NewFaceGeometry(cfg.Topology, cfg.Options),
		buffers: &scene.Buffers{},
		width:   int(cfg.Captures[0].Width),
		height:  int(cfg.Captures[0].Height),
	}
	if g.width <= 0 || g.height <= 0 {
		g.width, g.height = 640, 480
	}
	g.restart()

	if cfg.Texture != "" {
		img, _, err := ebitenutil.NewImageFromFile(cfg.Texture)
		if err != nil {
			return nil, fmt.Errorf("could not load texture %s: %w", cfg.Texture, err)
		}
		g.texture = img
	}

	// Show the first detected frame straight away.
	for i := 0; i < len(cfg.Captures) && !g.geom.Ready(); i++ {
		if err := g.advance(); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *Game) restart() {
	g.session = facemesh.NewSession(facemesh.NewSliceSource(g.cfg.Captures), g.geom)
	g.frame = 0
}

// advance applies the next capture, wrapping around at the end.
func (g *Game) advance() error {
	c, err := g.session.Step(context.Background())
	if err == io.EOF {
		g.restart()
		return nil
	}
	if err != nil {
		return err
	}
	g.frame = c.Index + 1
	if g.mirror && c.Detected() {
		// Re-apply with the opposite flag to preview the other convention.
		g.geom.Update(c.Faces[0], !c.Mirrored)
	}
	g.geom.Publish(g.buffers)
	return nil
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyW) {
		g.wire = !g.wire
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		g.mirror = !g.mirror
		log.Println("mirror preview:", g.mirror)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.view.RotX, g.view.RotY = 0, 0
	}

	// Mouse camera control
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.dragging = true
		g.lastX, g.lastY = ebiten.CursorPosition()
	}
	if g.dragging {
		x, y := ebiten.CursorPosition()
		g.view.RotY += float64(x-g.lastX) / 200.0
		g.view.RotX += float64(y-g.lastY) / 200.0
		g.lastX, g.lastY = x, y
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.dragging = false
	}

	g.tick++
	if g.paused || g.tick%g.cfg.TicksPerFrame != 0 {
		return nil
	}
	return g.advance()
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	if g.buffers.Len() == 0 {
		ebitenutil.DebugPrint(screen, "waiting for a face...")
		return
	}

	g.view.Zoom = 1 / g.geom.Options().Scale
	g.view.CX, g.view.CY = float64(g.width)/2, float64(g.height)/2
	verts := g.view.Project(g.buffers)

	g.drawMesh(screen, verts)
	if g.wire {
		g.drawWire(screen, verts)
	}
	for _, a := range g.cfg.Anchors {
		g.drawAnchor(screen, a)
	}

	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %0.2f  frame %d/%d  [W]ire [M]irror [space] pause",
		ebiten.ActualFPS(), g.frame, len(g.cfg.Captures)))
}

func (g *Game) drawMesh(screen *ebiten.Image, verts []scene.Projected) {
	src := whiteSub
	var tw, th float32
	if g.texture != nil {
		src = g.texture
		b := g.texture.Bounds()
		tw, th = float32(b.Dx()), float32(b.Dy())
	}

	indices := g.buffers.Indices
	order := scene.DepthOrder(indices, verts)
	vertices := make([]ebiten.Vertex, 0, len(order)*3)
	idx := make([]uint16, 0, len(order)*3)

	for _, t := range order {
		for k := 0; k < 3; k++ {
			vi := indices[t*3+k]
			p := verts[vi]
			v := ebiten.Vertex{DstX: p.X, DstY: p.Y, SrcX: 1, SrcY: 1, ColorA: 1}
			if g.texture != nil {
				uv := g.buffers.UV(vi)
				v.SrcX, v.SrcY = float32(uv[0])*tw, float32(1-uv[1])*th
				v.ColorR, v.ColorG, v.ColorB = 1, 1, 1
			} else {
				s := scene.Shade(g.view.Rotate(g.buffers.Normal(vi)))
				v.ColorR, v.ColorG, v.ColorB = 0.9*s, 0.75*s, 0.7*s
			}
			idx = append(idx, uint16(len(vertices)))
			vertices = append(vertices, v)
		}
	}

	op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
	screen.DrawTriangles(vertices, idx, src, op)
}

func (g *Game) drawWire(screen *ebiten.Image, verts []scene.Projected) {
	wire := color.RGBA{R: 255, G: 0, B: 255, A: 255}
	for _, t := range g.geom.Topology().Triangles() {
		for k := 0; k < 3; k++ {
			a, b := verts[t[k]], verts[t[(k+1)%3]]
			vector.StrokeLine(screen, a.X, a.Y, b.X, b.Y, 1, wire, false)
		}
	}
}

func (g *Game) drawAnchor(screen *ebiten.Image, a facemesh.Anchor) {
	f := g.geom.TrackAnchor(a)
	s := g.geom.Options().Scale
	origin := g.view.Project(&scene.Buffers{Positions: f.Position[:]})[0]

	cols := [3]color.RGBA{{255, 50, 50, 255}, {50, 255, 50, 255}, {80, 130, 255, 255}}
	for i, axis := range [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
		end := f.Transform(axis.Mul(20 * s))
		p := g.view.Project(&scene.Buffers{Positions: end[:]})[0]
		vector.StrokeLine(screen, origin.X, origin.Y, p.X, p.Y, 2, cols[i], true)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

// Run opens a window and blocks until it is closed.
func Run(cfg Config) error {
	g, err := NewGame(cfg)
	if err != nil {
		return err
	}
	title := cfg.Title
	if title == "" {
		title = "facemesh viewer"
	}
	ebiten.SetWindowSize(g.width, g.height)
	ebiten.SetWindowTitle(title)
	return ebiten.RunGame(g)
}
