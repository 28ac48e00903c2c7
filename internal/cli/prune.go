package cli

import (
	"fmt"

	"postfeed/internal/repository"

	"github.com/spf13/cobra"
)

// NewPruneImagesCommand creates the prune-images command.
func NewPruneImagesCommand(rootOpts *RootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "prune-images",
		Short: "Delete stored images that no post references",
		Long: `Delete files in the image store that no post references.

Old images are removed in the background after updates and deletes; files
left behind by failed removals or by seed --clean are collected here.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := rootOpts.openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			store := rootOpts.imageStore()
			stored, err := store.List()
			if err != nil {
				return fmt.Errorf("list images: %w", err)
			}
			referenced, err := repository.NewPostRepository(db).ImageURLs(cmd.Context())
			if err != nil {
				return err
			}

			inUse := make(map[string]struct{}, len(referenced))
			for _, url := range referenced {
				inUse[url] = struct{}{}
			}

			out := cmd.OutOrStdout()
			removed := 0
			for _, url := range stored {
				if _, ok := inUse[url]; ok {
					continue
				}
				if dryRun {
					fmt.Fprintf(out, "would remove %s\n", url)
					removed++
					continue
				}
				if err := store.RemoveNow(url); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "failed to remove %s: %v\n", url, err)
					continue
				}
				removed++
			}

			verb := "removed"
			if dryRun {
				verb = "would remove"
			}
			_, err = fmt.Fprintf(out, "%s %d of %d images\n", verb, removed, len(stored))
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only list the files that would be removed")

	return cmd
}
