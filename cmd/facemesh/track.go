package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/smasonuk/facemesh"
	"github.com/spf13/cobra"
)

var trackAnchor string

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Print the pose of an anchor triangle for every frame",
	Long: `Print the pose of an anchor triangle for every frame.

Anchors are nose, chin, left-eye, right-eye, halo, or three vertex indices
as a,b,c. The named anchors are MediaPipe landmark indices and only track
those features with --topology pointing at the MediaPipe canonical table;
the built-in topology is a grid.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		topo, err := loadTopology()
		if err != nil {
			return err
		}
		parsed, err := parseAnchors([]string{trackAnchor}, topo)
		if err != nil {
			return err
		}
		anchor := parsed[0]
		captures, err := loadCaptures(cmd)
		if err != nil {
			return err
		}
		if err := checkCaptures(captures, topo); err != nil {
			return err
		}

		g := facemesh.NewFaceGeometry(topo, facemesh.Options{})
		session := facemesh.NewSession(facemesh.NewSliceSource(captures), g)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "FRAME\tPOSITION\tNORMAL\tROTATION (deg)\n")
		err = session.Run(cmd.Context(), func(c *facemesh.Capture) error {
			if !c.Detected() {
				fmt.Fprintf(w, "%d\t-\t-\t-\n", c.Index)
				return nil
			}
			f := g.TrackAnchor(anchor)
			rx, ry, rz := f.Euler()
			fmt.Fprintf(w, "%d\t%s\t%s\t%.1f %.1f %.1f\n", c.Index,
				formatVec(f.Position), formatVec(f.Normal),
				mgl64.RadToDeg(rx), mgl64.RadToDeg(ry), mgl64.RadToDeg(rz))
			return nil
		})
		w.Flush()
		return err
	},
}

func formatVec(v mgl64.Vec3) string {
	return fmt.Sprintf("%.2f %.2f %.2f", v[0], v[1], v[2])
}

func init() {
	addSourceFlags(trackCmd)
	trackCmd.Flags().StringVarP(&trackAnchor, "anchor", "a", "nose", "Anchor name or a,b,c vertex indices")
	rootCmd.AddCommand(trackCmd)
}
