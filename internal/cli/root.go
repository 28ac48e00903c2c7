// Package cli implements feedctl, the operator command line for the feed
// database and image store.
package cli

import (
	"fmt"

	"postfeed/internal/config"
	"postfeed/internal/database"
	"postfeed/internal/storage"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// RootOptions holds state shared by all commands.
type RootOptions struct {
	// LoadConfig is replaced in tests.
	LoadConfig func() (*config.Config, error)

	cfg *config.Config
}

// NewRootCommand creates the feedctl root command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{LoadConfig: config.LoadConfig})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "feedctl",
		Short:         "Operate the post feed database and image store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			opts.cfg = cfg
			return nil
		},
	}

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewPruneImagesCommand(opts))

	return cmd
}

// openDB connects to the configured database. The returned func closes it.
func (o *RootOptions) openDB() (*gorm.DB, func(), error) {
	db, err := database.Connect(o.cfg)
	if err != nil {
		return nil, nil, err
	}
	return db, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}, nil
}

func (o *RootOptions) imageStore() *storage.ImageStore {
	return storage.NewImageStore(o.cfg)
}
