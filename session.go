package facemesh

import (
	"context"
	"io"
)

// Session drives geometries from a landmark source one frame at a time.
// Geometry i follows face i of each capture; when a capture has fewer faces
// the remaining geometries keep their last mesh.
type Session struct {
	Source     LandmarkSource
	Geometries []*FaceGeometry

	frames  int
	misses  int
	resizes int
}

// SessionStats counts what a run has seen so far.
type SessionStats struct {
	Frames  int
	Misses  int
	Resizes int
}

func NewSession(src LandmarkSource, geometries ...*FaceGeometry) *Session {
	return &Session{Source: src, Geometries: geometries}
}

// Step pulls one capture and applies it. It returns io.EOF when the source
// is exhausted.
func (s *Session) Step(ctx context.Context) (*Capture, error) {
	c, err := s.Source.Next(ctx)
	if err != nil {
		return nil, err
	}
	s.frames++

	if c.Width > 0 && c.Height > 0 {
		resized := false
		for _, g := range s.Geometries {
			if g.SetFrameSize(c.Width, c.Height) {
				resized = true
			}
		}
		if resized {
			s.resizes++
		}
	}

	if !c.Detected() {
		s.misses++
		return c, nil
	}
	for i, g := range s.Geometries {
		if i >= len(c.Faces) {
			break
		}
		g.Update(c.Faces[i], c.Mirrored)
	}
	return c, nil
}

// Run steps until the source is exhausted, calling fn after each capture
// has been applied. It returns nil at the end of the source, ctx.Err() on
// cancellation, or the first error from the source or fn.
func (s *Session) Run(ctx context.Context, fn func(*Capture) error) error {
	for {
		c, err := s.Step(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if fn != nil {
			if err := fn(c); err != nil {
				return err
			}
		}
	}
}

func (s *Session) Stats() SessionStats {
	return SessionStats{Frames: s.frames, Misses: s.misses, Resizes: s.resizes}
}
