package main

import (
	"fmt"

	"checkpoint-registry-service/internal/adapters/primary/http/dto"

	"github.com/spf13/cobra"
)

func newInstallCmd(api *client) *cobra.Command {
	var method string

	c := &cobra.Command{
		Use:   "install NAME",
		Short: "Place a checkpoint into the host plugin directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cp, err := api.checkpointByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			install, err := api.createInstall(cmd.Context(), dto.CreateInstallRequest{
				CheckpointID: cp.ID,
				Method:       method,
			})
			if err != nil {
				return fmt.Errorf("failed to install %s: %w", args[0], err)
			}

			cmd.Printf("Installed %s at %s (%s)\n", cp.Name, install.HostPath, install.Method)
			return nil
		},
	}

	c.Flags().StringVar(&method, "method", "", "Install method: link or copy (defaults to link)")

	return c
}
