package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/smasonuk/facemesh"
	"github.com/spf13/cobra"
)

var (
	exportOut       string
	exportVideoUVs  bool
	exportScale     float64
	exportAllFrames bool
	exportSwap      bool
	exportReference string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the face mesh of every captured frame as a PLY file",
	Long: `Write the face mesh of every captured frame as a PLY file.

With --swap-faces the first two faces are exported with each other's
texture coordinates (requires --video-uvs). With --uv-reference the
texture coordinates come from the first face found in a reference
capture file, so a still portrait can be mapped onto the live mesh; the
mapping is re-applied after every frame with a face, and cannot be
combined with --video-uvs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportSwap && !exportVideoUVs {
			return errors.New("--swap-faces needs --video-uvs")
		}
		if exportSwap && exportReference != "" {
			return errors.New("--swap-faces and --uv-reference cannot be combined")
		}
		if exportVideoUVs && exportReference != "" {
			return errors.New("--video-uvs and --uv-reference cannot be combined")
		}

		topo, err := loadTopology()
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
		if err := os.MkdirAll(exportOut, 0o755); err != nil {
			return err
		}

		opts := facemesh.Options{SourceAlignedUVs: exportVideoUVs, Scale: exportScale}
		geoms := []*facemesh.FaceGeometry{facemesh.NewFaceGeometry(topo, opts)}
		if exportSwap {
			geoms = append(geoms, facemesh.NewFaceGeometry(topo, opts))
		}
		var ref *facemesh.Capture
		if exportReference != "" {
			if ref, err = loadReference(cmd, topo); err != nil {
				return err
			}
		}
		session := facemesh.NewSession(facemesh.NewSliceSource(captures), geoms...)

		bar := progressbar.NewOptions(len(captures),
			progressbar.OptionSetDescription("Exporting meshes"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
		)

		written := 0
		err = session.Run(cmd.Context(), func(c *facemesh.Capture) error {
			defer bar.Add(1)
			if exportSwap && len(c.Faces) >= 2 {
				geoms[0].SwapUVs(geoms[1])
			}
			// Update rewrites UVs on a mirror change, so the mapping is
			// applied again after every frame that moved face 0.
			if ref != nil && c.Detected() {
				geoms[0].SetUVsFromReference(ref.Faces[0], ref.Width, ref.Height)
			}
			for i, g := range geoms {
				// Frames without a face repeat the held mesh only when asked.
				if !g.Ready() || (i >= len(c.Faces) && !exportAllFrames) {
					continue
				}
				name := fmt.Sprintf("frame_%05d.ply", c.Index)
				if len(geoms) > 1 {
					name = fmt.Sprintf("frame_%05d_face%d.ply", c.Index, i)
				}
				if err := facemesh.SaveMeshPLY(filepath.Join(exportOut, name), g); err != nil {
					return err
				}
				written++
			}
			return nil
		})
		bar.Finish()
		if err != nil {
			return err
		}

		stats := session.Stats()
		slog.Info("export finished", "frames", stats.Frames, "misses", stats.Misses, "written", written, "out", exportOut)
		return nil
	},
}

// loadReference returns the first capture with a face in the reference
// capture file.
func loadReference(cmd *cobra.Command, topo *facemesh.Topology) (*facemesh.Capture, error) {
	f, err := os.Open(exportReference)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	refs, err := facemesh.ReadAllCaptures(cmd.Context(), facemesh.NewCaptureReader(f))
	if err != nil {
		return nil, fmt.Errorf("could not read reference %s: %w", exportReference, err)
	}
	for i := range refs {
		c := &refs[i]
		if !c.Detected() {
			continue
		}
		if len(c.Faces[0]) != topo.Len() || c.Width <= 0 || c.Height <= 0 {
			return nil, fmt.Errorf("reference capture %d does not match the topology or has no frame size", c.Index)
		}
		slog.Debug("texture mapped from reference", "path", exportReference, "frame", c.Index)
		return c, nil
	}
	return nil, fmt.Errorf("no face found in reference %s", exportReference)
}

func init() {
	addSourceFlags(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "meshes", "Output directory")
	exportCmd.Flags().BoolVar(&exportVideoUVs, "video-uvs", false, "Map texture coordinates onto the source frame")
	exportCmd.Flags().Float64Var(&exportScale, "scale", 1, "Scale applied to positions")
	exportCmd.Flags().BoolVar(&exportAllFrames, "all-frames", false, "Also write the held mesh for frames without a face")
	exportCmd.Flags().BoolVar(&exportSwap, "swap-faces", false, "Track two faces and swap their textures")
	exportCmd.Flags().StringVar(&exportReference, "uv-reference", "", "Capture file whose first face defines the texture mapping")
	rootCmd.AddCommand(exportCmd)
}
