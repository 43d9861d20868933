package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var addr string

	c := &cobra.Command{
		Use:           "checkpointctl",
		Short:         "Manage BAGEL checkpoints through the checkpoint registry service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	c.PersistentFlags().StringVar(&addr, "addr", envOr("CHECKPOINTCTL_ADDR", "http://localhost:8080"), "Base URL of the checkpoint registry service")

	api := &client{base: &addr}
	c.AddCommand(
		newPullCmd(api),
		newListCmd(api),
		newStatusCmd(api),
		newRemoveCmd(api),
		newInstallCmd(api),
	)

	return c
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
