package main

import (
	"fmt"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"
)

func newStatusCmd(api *client) *cobra.Command {
	return &cobra.Command{
		Use:   "status NAME",
		Short: "Show a checkpoint and its recent snapshot jobs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cp, err := api.checkpointByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			cmd.Printf("Name:      %s\n", cp.Name)
			cmd.Printf("Repo:      %s@%s\n", cp.RepoID, cp.Revision)
			cmd.Printf("Status:    %s\n", cp.Status)
			cmd.Printf("Path:      %s\n", cp.LocalPath)
			cmd.Printf("Size:      %s (%d files)\n", units.HumanSize(float64(cp.SizeBytes)), cp.FileCount)
			if cp.LastSyncedAt != nil {
				cmd.Printf("Synced:    %s\n", *cp.LastSyncedAt)
			}

			jobs, err := api.snapshotsFor(cmd.Context(), cp.ID.String())
			if err != nil {
				return err
			}
			if len(jobs.Items) == 0 {
				return nil
			}

			cmd.Println("\nSnapshot jobs:")
			for _, job := range jobs.Items {
				line := fmt.Sprintf("  %s  %-9s %d/%d files", job.ID, job.Status, job.DoneFiles, job.TotalFiles)
				if job.Error != "" {
					line += "  " + job.Error
				}
				cmd.Println(line)
			}
			return nil
		},
	}
}
