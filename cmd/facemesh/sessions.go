package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var deleteSession string

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List stored capture sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(cmd)
		if err != nil {
			return err
		}
		if deleteSession != "" {
			if err := db.DeleteSession(cmd.Context(), deleteSession); err != nil {
				return err
			}
			fmt.Printf("Deleted session %s\n", deleteSession)
			return nil
		}

		sessions, err := db.Sessions(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions found in database.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tLABEL\tFRAMES\tCREATED")
		fmt.Fprintln(w, "--\t-----\t------\t-------")
		for _, s := range sessions {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", s.ID, s.Label, s.Frames, s.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

func init() {
	sessionsCmd.Flags().StringVar(&deleteSession, "delete", "", "Delete the session with this id")
	rootCmd.AddCommand(sessionsCmd)
}
