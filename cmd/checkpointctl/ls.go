package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"
)

func newListCmd(api *client) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List registered checkpoints",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := api.listCheckpoints(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tREPO\tSTATUS\tSIZE\tFILES\tLAST SYNCED")
			for _, cp := range resp.Items {
				synced := "-"
				if cp.LastSyncedAt != nil {
					synced = *cp.LastSyncedAt
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					cp.Name, cp.RepoID, cp.Status,
					units.HumanSize(float64(cp.SizeBytes)), cp.FileCount, synced)
			}
			return w.Flush()
		},
	}
}
