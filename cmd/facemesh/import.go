package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/smasonuk/facemesh"
	"github.com/spf13/cobra"
)

var (
	importFile    string
	importSession string
	importLabel   string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Store a capture file as a named session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := openStore(cmd)
		if err != nil {
			return err
		}

		f, err := os.Open(importFile)
		if err != nil {
			return err
		}
		defer f.Close()

		if err := db.EnsureSession(ctx, importSession, importLabel); err != nil {
			return fmt.Errorf("could not create session %s: %w", importSession, err)
		}

		bar := progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("Importing frames"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
		)
		n, err := importCaptures(cmd, facemesh.NewCaptureReader(f), func(c *facemesh.Capture) error {
			defer bar.Add(1)
			return db.SaveCapture(ctx, importSession, c)
		})
		bar.Finish()
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d frames into session %s\n", n, importSession)
		return nil
	},
}

// importCaptures feeds every capture from src to save in order.
func importCaptures(cmd *cobra.Command, src facemesh.LandmarkSource, save func(*facemesh.Capture) error) (int, error) {
	session := facemesh.NewSession(src)
	n := 0
	err := session.Run(cmd.Context(), func(c *facemesh.Capture) error {
		n++
		return save(c)
	})
	return n, err
}

func init() {
	importCmd.Flags().StringVar(&importFile, "captures", "", "JSON-lines capture file")
	importCmd.Flags().StringVar(&importSession, "session", "", "Session id to store under (replaces existing frames)")
	importCmd.Flags().StringVar(&importLabel, "label", "", "Free-form session label")
	importCmd.MarkFlagRequired("captures")
	importCmd.MarkFlagRequired("session")
	rootCmd.AddCommand(importCmd)
}
