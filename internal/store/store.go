package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jackc/pgx/v5"
	"github.com/smasonuk/facemesh"
)

// ErrSessionNotFound is returned when a session id has no stored frames.
var ErrSessionNotFound = errors.New("session not found")

// Store persists landmark capture sessions in PostgreSQL so they can be
// replayed later.
type Store struct {
	conn *pgx.Conn
}

// Session describes a stored capture session.
type Session struct {
	ID        string
	Label     string
	Frames    int
	CreatedAt time.Time
}

// New establishes a connection to the database and ensures the schema is initialized.
func New(ctx context.Context, connString string) (*Store, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}

	if err := initSchema(ctx, conn); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return &Store{conn: conn}, nil
}

func initSchema(ctx context.Context, conn *pgx.Conn) error {
	query := `
		CREATE TABLE IF NOT EXISTS capture_sessions (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS capture_frames (
			session_id TEXT REFERENCES capture_sessions(id) ON DELETE CASCADE,
			frame_index INT NOT NULL,
			width DOUBLE PRECISION NOT NULL,
			height DOUBLE PRECISION NOT NULL,
			mirrored BOOLEAN NOT NULL,
			face_index INT NOT NULL,
			landmarks DOUBLE PRECISION[],
			PRIMARY KEY (session_id, frame_index, face_index)
		);
	`
	_, err := conn.Exec(ctx, query)
	return err
}

// Close terminates the database connection.
func (s *Store) Close(ctx context.Context) {
	s.conn.Close(ctx)
}

// EnsureSession registers a session, clearing any frames stored under the
// same id so a re-import does not duplicate them.
func (s *Store) EnsureSession(ctx context.Context, id, label string) error {
	if _, err := s.conn.Exec(ctx, "DELETE FROM capture_frames WHERE session_id = $1", id); err != nil {
		return err
	}

	_, err := s.conn.Exec(ctx, `
		INSERT INTO capture_sessions (id, label, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET label = EXCLUDED.label, created_at = NOW()
	`, id, label)
	return err
}

// SaveCapture stores one capture. A capture without faces is kept as a
// single row with NULL landmarks so replays see the missed frame.
func (s *Store) SaveCapture(ctx context.Context, sessionID string, c *facemesh.Capture) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const insert = `
		INSERT INTO capture_frames (session_id, frame_index, width, height, mirrored, face_index, landmarks)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if !c.Detected() {
		if _, err := tx.Exec(ctx, insert, sessionID, c.Index, c.Width, c.Height, c.Mirrored, 0, nil); err != nil {
			return err
		}
	}
	for i, face := range c.Faces {
		if _, err := tx.Exec(ctx, insert, sessionID, c.Index, c.Width, c.Height, c.Mirrored, i, flatten(face)); err != nil {
			return fmt.Errorf("frame %d face %d: %w", c.Index, i, err)
		}
	}

	return tx.Commit(ctx)
}

// Frames loads every capture of a session in frame order.
func (s *Store) Frames(ctx context.Context, sessionID string) ([]facemesh.Capture, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT frame_index, width, height, mirrored, landmarks
		FROM capture_frames
		WHERE session_id = $1
		ORDER BY frame_index, face_index
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var captures []facemesh.Capture
	for rows.Next() {
		var (
			index         int
			width, height float64
			mirrored      bool
			landmarks     []float64
		)
		if err := rows.Scan(&index, &width, &height, &mirrored, &landmarks); err != nil {
			return nil, err
		}

		if n := len(captures); n == 0 || captures[n-1].Index != index {
			captures = append(captures, facemesh.Capture{Index: index, Width: width, Height: height, Mirrored: mirrored})
		}
		if landmarks != nil {
			c := &captures[len(captures)-1]
			c.Faces = append(c.Faces, unflatten(landmarks))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(captures) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return captures, nil
}

// Sessions lists stored sessions, newest first.
func (s *Store) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT s.id, s.label, s.created_at, COUNT(DISTINCT f.frame_index)
		FROM capture_sessions s
		LEFT JOIN capture_frames f ON f.session_id = s.id
		GROUP BY s.id, s.label, s.created_at
		ORDER BY s.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Label, &sess.CreatedAt, &sess.Frames); err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// DeleteSession removes a session and its frames.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	tag, err := s.conn.Exec(ctx, "DELETE FROM capture_sessions WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}

// Reset drops all application tables to clear the database state.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.conn.Exec(ctx, `
		DROP TABLE IF EXISTS capture_frames CASCADE;
		DROP TABLE IF EXISTS capture_sessions CASCADE;
	`)
	return err
}

func flatten(lm facemesh.Landmarks) []float64 {
	out := make([]float64, 0, len(lm)*3)
	for _, p := range lm {
		out = append(out, p[0], p[1], p[2])
	}
	return out
}

func unflatten(data []float64) facemesh.Landmarks {
	lm := make(facemesh.Landmarks, len(data)/3)
	for i := range lm {
		lm[i] = mgl64.Vec3{data[i*3], data[i*3+1], data[i*3+2]}
	}
	return lm
}
