package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"checkpoint-registry-service/internal/adapters/primary/http/dto"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"
)

func newPullCmd(api *client) *cobra.Command {
	var (
		name     string
		revision string
		patterns []string
	)

	c := &cobra.Command{
		Use:   "pull REPO_ID",
		Short: "Download a checkpoint snapshot from the hub",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repoID := args[0]
			if name == "" {
				parts := strings.SplitN(repoID, "/", 2)
				name = parts[len(parts)-1]
			}

			cp, err := ensureCheckpoint(cmd.Context(), api, name, repoID, revision)
			if err != nil {
				return err
			}

			job, err := api.startSnapshot(cmd.Context(), cp.ID.String(), dto.StartSnapshotRequest{AllowPatterns: patterns})
			if err != nil {
				return fmt.Errorf("failed to start snapshot: %w", err)
			}

			cmd.Printf("Pulling %s into %s\n", repoID, cp.LocalPath)
			return waitForSnapshot(cmd, api, job.ID.String())
		},
	}

	c.Flags().StringVar(&name, "name", "", "Checkpoint name (defaults to the repo's short name)")
	c.Flags().StringVar(&revision, "revision", "", "Hub revision to snapshot (defaults to main)")
	c.Flags().StringSliceVar(&patterns, "patterns", nil, "Allow patterns overriding the defaults (e.g. '*.json,*.safetensors')")

	return c
}

func ensureCheckpoint(ctx context.Context, api *client, name, repoID, revision string) (*dto.CheckpointResponse, error) {
	cp, err := api.createCheckpoint(ctx, dto.CreateCheckpointRequest{
		Name:     name,
		RepoID:   repoID,
		Revision: revision,
	})
	if err == nil {
		return cp, nil
	}

	var apiErr *apiError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
		return api.checkpointByName(ctx, name)
	}
	return nil, fmt.Errorf("failed to register checkpoint: %w", err)
}

func waitForSnapshot(cmd *cobra.Command, api *client, jobID string) error {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		case <-ticker.C:
		}

		job, err := api.snapshot(cmd.Context(), jobID)
		if err != nil {
			return err
		}

		switch job.Status {
		case "COMPLETE":
			cmd.Printf("\rDownloaded %d files (%s)          \n", job.DoneFiles, units.HumanSize(float64(job.DoneBytes)))
			return nil
		case "FAILED":
			cmd.Println()
			return fmt.Errorf("snapshot failed: %s", job.Error)
		case "CANCELED":
			cmd.Println()
			return errors.New("snapshot canceled")
		default:
			cmd.Printf("\r%s / %s (%d/%d files)   ",
				units.HumanSize(float64(job.DoneBytes)),
				units.HumanSize(float64(job.TotalBytes)),
				job.DoneFiles, job.TotalFiles)
		}
	}
}
