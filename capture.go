package facemesh

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// Capture is one source frame's estimator output. An empty Faces means no
// face was detected in that frame, which is not an error.
type Capture struct {
	Index    int         `json:"index"`
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	Mirrored bool        `json:"mirrored"`
	Faces    []Landmarks `json:"faces"`
}

// Detected reports whether the capture holds at least one face.
func (c *Capture) Detected() bool {
	return len(c.Faces) > 0
}

// LandmarkSource yields captures in frame order. Next returns io.EOF after
// the last capture.
type LandmarkSource interface {
	Next(ctx context.Context) (*Capture, error)
}

// CaptureReader reads captures stored one JSON object per line.
type CaptureReader struct {
	scanner *bufio.Scanner
	line    int
}

func NewCaptureReader(r io.Reader) *CaptureReader {
	scanner := bufio.NewScanner(r)
	// 468 landmarks per face serialise to roughly 30KB a line.
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &CaptureReader{scanner: scanner}
}

func (r *CaptureReader) Next(ctx context.Context) (*Capture, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				return nil, fmt.Errorf("error reading captures: %w", err)
			}
			return nil, io.EOF
		}
		r.line++
		line := r.scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var c Capture
		if err := json.Unmarshal(line, &c); err != nil {
			return nil, fmt.Errorf("invalid capture on line %d: %w", r.line, err)
		}
		return &c, nil
	}
}

// CaptureWriter writes captures in the format CaptureReader reads.
type CaptureWriter struct {
	w   *bufio.Writer
	enc *json.Encoder
}

func NewCaptureWriter(w io.Writer) *CaptureWriter {
	bw := bufio.NewWriter(w)
	return &CaptureWriter{w: bw, enc: json.NewEncoder(bw)}
}

func (w *CaptureWriter) Write(c *Capture) error {
	return w.enc.Encode(c)
}

func (w *CaptureWriter) Flush() error {
	return w.w.Flush()
}

// SliceSource replays captures held in memory.
type SliceSource struct {
	captures []Capture
	pos      int
}

func NewSliceSource(captures []Capture) *SliceSource {
	return &SliceSource{captures: captures}
}

func (s *SliceSource) Next(ctx context.Context) (*Capture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.captures) {
		return nil, io.EOF
	}
	c := &s.captures[s.pos]
	s.pos++
	return c, nil
}

// Len returns the total number of captures.
func (s *SliceSource) Len() int {
	return len(s.captures)
}

// ReadAllCaptures drains src into memory.
func ReadAllCaptures(ctx context.Context, src LandmarkSource) ([]Capture, error) {
	var out []Capture
	for {
		c, err := src.Next(ctx)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, *c)
	}
}
