package cli

import (
	"fmt"

	"postfeed/internal/seed"

	"github.com/spf13/cobra"
)

type seedOptions struct {
	users      int
	posts      int
	maxDays    int
	clean      bool
	skipBcrypt bool
	randomSeed int64
	fixtures   string
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with demo users and posts",
		Long: `Generate demo users and posts, or load them from a YAML fixtures file.

Generated posts get placeholder images written to the image store. Every
generated user has the password "` + seed.DefaultPassword + `".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().IntVar(&opts.users, "users", 5, "number of users to generate")
	cmd.Flags().IntVar(&opts.posts, "posts", 3, "posts to generate per user")
	cmd.Flags().IntVar(&opts.maxDays, "max-days", 90, "spread created_at over this many past days")
	cmd.Flags().BoolVar(&opts.clean, "clean", false, "delete existing posts and users first")
	cmd.Flags().BoolVar(&opts.skipBcrypt, "skip-bcrypt", false, "store passwords unhashed (local use only)")
	cmd.Flags().Int64Var(&opts.randomSeed, "seed", 0, "random seed for reproducible data (0 = time based)")
	cmd.Flags().StringVar(&opts.fixtures, "fixtures", "", "YAML fixtures file to load instead of generating data")

	return cmd
}

func runSeed(cmd *cobra.Command, rootOpts *RootOptions, opts *seedOptions) error {
	if rootOpts.cfg.IsProduction() {
		return fmt.Errorf("refusing to seed a production database")
	}

	db, closeDB, err := rootOpts.openDB()
	if err != nil {
		return err
	}
	defer closeDB()

	seedOpts := seed.Options{
		NumUsers:     opts.users,
		PostsPerUser: opts.posts,
		MaxDays:      opts.maxDays,
		Clean:        opts.clean,
		SkipBcrypt:   opts.skipBcrypt,
		RandomSeed:   opts.randomSeed,
	}
	images := rootOpts.imageStore()

	var res *seed.Result
	if opts.fixtures != "" {
		fx, err := seed.LoadFixtures(opts.fixtures)
		if err != nil {
			return err
		}
		res, err = seed.ApplyFixtures(cmd.Context(), db, images, fx, seedOpts)
		if err != nil {
			return err
		}
	} else {
		res, err = seed.Seed(cmd.Context(), db, images, seedOpts)
		if err != nil {
			return err
		}
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "created %d users and %d posts\n", res.Users, res.Posts)
	return err
}
