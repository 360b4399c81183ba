package main

import (
	"github.com/smasonuk/facemesh"
	"github.com/smasonuk/facemesh/internal/viewer"
	"github.com/spf13/cobra"
)

var (
	viewTexture  string
	viewVideoUVs bool
	viewAnchors  []string
	viewTicks    int
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Replay captures in a window",
	RunE: func(cmd *cobra.Command, args []string) error {
		topo, err := loadTopology()
		if err != nil {
			return err
		}
		anchors, err := parseAnchors(viewAnchors, topo)
		if err != nil {
			return err
		}
		captures, err := loadCaptures(cmd)
		if err != nil {
			return err
		}
		if err := checkCaptures(captures, topo); err != nil {
			return err
		}

		return viewer.Run(viewer.Config{
			Captures:      captures,
			Topology:      topo,
			Options:       facemesh.Options{SourceAlignedUVs: viewVideoUVs},
			Texture:       viewTexture,
			Anchors:       anchors,
			TicksPerFrame: viewTicks,
		})
	},
}

func init() {
	addSourceFlags(viewCmd)
	viewCmd.Flags().StringVarP(&viewTexture, "texture", "t", "", "Image mapped onto the mesh")
	viewCmd.Flags().BoolVar(&viewVideoUVs, "video-uvs", false, "Map the texture onto the source frame")
	viewCmd.Flags().StringSliceVar(&viewAnchors, "anchor", nil, "Anchors to draw as axes (repeatable); names need a MediaPipe --topology")
	viewCmd.Flags().IntVar(&viewTicks, "ticks", 2, "Screen ticks each frame is shown for")
	rootCmd.AddCommand(viewCmd)
}
