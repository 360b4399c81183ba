package main

import (
	"fmt"
	"log/slog"

	"github.com/smasonuk/facemesh"
	"github.com/smasonuk/facemesh/internal/snapshot"
	"github.com/spf13/cobra"
)

var (
	snapshotFrame   int
	snapshotOut     string
	snapshotAnchors []string
	snapshotWidth   int
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Render one frame's mesh wireframe to a PNG",
	RunE: func(cmd *cobra.Command, args []string) error {
		topo, err := loadTopology()
		if err != nil {
			return err
		}
		opts := snapshot.DefaultOptions()
		if opts.Anchors, err = parseAnchors(snapshotAnchors, topo); err != nil {
			return err
		}

		captures, err := loadCaptures(cmd)
		if err != nil {
			return err
		}
		if err := checkCaptures(captures, topo); err != nil {
			return err
		}

		// Replay up to the requested frame so a missed frame shows the held mesh.
		g := facemesh.NewFaceGeometry(topo, facemesh.Options{})
		session := facemesh.NewSession(facemesh.NewSliceSource(captures), g)
		found := false
		for !found {
			c, err := session.Step(cmd.Context())
			if err != nil {
				return fmt.Errorf("frame %d not reached: %w", snapshotFrame, err)
			}
			found = c.Index >= snapshotFrame
		}

		if snapshotWidth > 0 {
			fw, fh := g.FrameSize()
			if fw > 0 {
				opts.Width = snapshotWidth
				opts.Height = int(float64(snapshotWidth) * fh / fw)
			}
		}
		if err := snapshot.SavePNG(snapshotOut, g, opts); err != nil {
			return err
		}
		slog.Info("snapshot written", "frame", snapshotFrame, "path", snapshotOut)
		return nil
	},
}

func init() {
	addSourceFlags(snapshotCmd)
	snapshotCmd.Flags().IntVarP(&snapshotFrame, "frame", "f", 0, "Frame index to render")
	snapshotCmd.Flags().StringVarP(&snapshotOut, "out", "o", "snapshot.png", "Output PNG path")
	snapshotCmd.Flags().StringSliceVar(&snapshotAnchors, "anchor", nil, "Anchors to draw as axes (repeatable); names need a MediaPipe --topology")
	snapshotCmd.Flags().IntVar(&snapshotWidth, "width", 0, "Image width; height follows the frame aspect (default: frame size)")
	rootCmd.AddCommand(snapshotCmd)
}
