package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveCmd(api *client) *cobra.Command {
	return &cobra.Command{
		Use:   "rm NAME...",
		Short: "Remove checkpoints and their local snapshot data",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				cp, err := api.checkpointByName(cmd.Context(), name)
				if err != nil {
					return err
				}
				if err := api.deleteCheckpoint(cmd.Context(), cp.ID.String()); err != nil {
					return fmt.Errorf("failed to remove %s: %w", name, err)
				}
				cmd.Printf("Removed %s\n", name)
			}
			return nil
		},
	}
}
