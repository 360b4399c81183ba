package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogpu/gg"
	"github.com/smasonuk/facemesh"
	"github.com/smasonuk/facemesh/internal/store"
	"github.com/spf13/cobra"
)

var (
	// DB is opened lazily by commands that read or write stored sessions.
	DB *store.Store

	dbURL        string
	topologyPath string
	verbose      bool

	captureFile string
	sessionID   string
)

// Version is the application version.
const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "facemesh",
	Short:   "Face mesh geometry from landmark captures",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		gg.SetLogger(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if DB != nil {
			// The command context may already be cancelled.
			DB.Close(context.Background())
		}
	},
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "PostgreSQL connection string (default: from POSTGRES_* env, else postgres://localhost:5432/facemesh)")
	rootCmd.PersistentFlags().StringVar(&topologyPath, "topology", "", "PLY topology to use instead of the built-in canonical face")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// resolveDBURL builds the connection string from the environment when no
// --db flag was given.
func resolveDBURL() string {
	if dbURL != "" {
		return dbURL
	}
	if host := os.Getenv("POSTGRES_HOST"); host != "" {
		user := os.Getenv("POSTGRES_USER")
		pass := os.Getenv("POSTGRES_PASSWORD")
		name := os.Getenv("POSTGRES_DB")
		port := os.Getenv("POSTGRES_PORT")
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, pass, host, port, name)
	}
	return "postgres://localhost:5432/facemesh"
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	if DB != nil {
		return DB, nil
	}
	var err error
	DB, err = store.New(cmd.Context(), resolveDBURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return DB, nil
}

func loadTopology() (*facemesh.Topology, error) {
	if topologyPath == "" {
		return facemesh.Canonical(), nil
	}
	topo, err := facemesh.LoadTopologyPLYFile(topologyPath)
	if err != nil {
		return nil, err
	}
	slog.Debug("loaded topology", "path", topologyPath, "vertices", topo.Len(), "triangles", len(topo.Triangles()))
	return topo, nil
}

// parseAnchors resolves anchor arguments against topo. Named anchors are
// MediaPipe landmark indices, so using one with the built-in grid topology
// is allowed but warned about.
func parseAnchors(args []string, topo *facemesh.Topology) ([]facemesh.Anchor, error) {
	builtin := make(map[facemesh.Anchor]bool)
	for _, a := range facemesh.Anchors() {
		builtin[a] = true
	}

	out := make([]facemesh.Anchor, 0, len(args))
	for _, s := range args {
		a, err := facemesh.ParseAnchor(s, topo.Len())
		if err != nil {
			return nil, err
		}
		if builtin[a] && topologyPath == "" {
			slog.Warn("named anchor used with the built-in grid topology; pass --topology with the MediaPipe table to track the real feature", "anchor", a.Name)
		}
		out = append(out, a)
	}
	return out, nil
}

// addSourceFlags registers the flags choosing where captures come from.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&captureFile, "captures", "", "JSON-lines capture file")
	cmd.Flags().StringVar(&sessionID, "session", "", "Stored capture session id")
	cmd.MarkFlagsMutuallyExclusive("captures", "session")
	cmd.MarkFlagsOneRequired("captures", "session")
}

// loadCaptures reads every capture from --captures or --session.
func loadCaptures(cmd *cobra.Command) ([]facemesh.Capture, error) {
	ctx := cmd.Context()
	if sessionID != "" {
		db, err := openStore(cmd)
		if err != nil {
			return nil, err
		}
		return db.Frames(ctx, sessionID)
	}

	f, err := os.Open(captureFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	captures, err := facemesh.ReadAllCaptures(ctx, facemesh.NewCaptureReader(f))
	if err != nil {
		return nil, fmt.Errorf("could not read captures %s: %w", captureFile, err)
	}
	if len(captures) == 0 {
		return nil, errors.New("capture file is empty")
	}
	return captures, nil
}

// checkCaptures verifies every detected face matches the topology.
func checkCaptures(captures []facemesh.Capture, topo *facemesh.Topology) error {
	for _, c := range captures {
		for fi, lm := range c.Faces {
			if len(lm) != topo.Len() {
				return fmt.Errorf("capture %d face %d has %d landmarks, topology has %d", c.Index, fi, len(lm), topo.Len())
			}
		}
	}
	return nil
}
