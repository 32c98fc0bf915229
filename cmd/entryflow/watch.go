package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

const watchProcessedDir = "processed"

func watchCmd() *cobra.Command {
	var (
		owner      string
		interval   time.Duration
		extensions []string
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Watch a folder and submit new documents",
		Long: `Watch polls a folder and submits matching files through the API.
Submitted files move into a processed/ subfolder so a restart never
re-submits what was already handled; content duplicates are still
caught server-side by fingerprint.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if err := os.MkdirAll(filepath.Join(dir, watchProcessedDir), 0o755); err != nil {
				return fmt.Errorf("create processed dir: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c := newClient(apiBase)
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			fmt.Printf("watching %s every %s\n", dir, interval)
			for {
				if err := submitDir(ctx, c, dir, owner, extensions); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Submitter identity recorded with each document")
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "Poll interval")
	cmd.Flags().StringSliceVar(&extensions, "ext", []string{".pdf", ".txt"}, "File extensions to submit")
	return cmd
}

// submitDir submits every matching file in dir and moves accepted ones
// into the processed/ subfolder. Hidden files and non-matching
// extensions are skipped.
func submitDir(ctx context.Context, c *client, dir, owner string, extensions []string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !slices.Contains(extensions, strings.ToLower(filepath.Ext(name))) {
			continue
		}

		path := filepath.Join(dir, name)
		raw, status, err := c.submit(ctx, path, owner)
		if err != nil {
			return err
		}

		switch status {
		case http.StatusCreated:
			fmt.Printf("%s: enqueued (%s)\n", name, field(raw, "id"))
		case http.StatusOK:
			fmt.Printf("%s: duplicate of %s, skipped\n", name, field(raw, "id"))
		default:
			fmt.Fprintf(os.Stderr, "%s: server returned %d: %s\n", name, status, raw)
			continue
		}

		if err := os.Rename(path, filepath.Join(dir, watchProcessedDir, name)); err != nil {
			fmt.Fprintf(os.Stderr, "move %s: %v\n", name, err)
		}
	}
	return nil
}
