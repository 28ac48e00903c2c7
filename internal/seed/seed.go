package seed

import (
	"context"
	"fmt"
	"log"

	"postfeed/internal/models"

	"gorm.io/gorm"
)

// Options configure the seeder.
type Options struct {
	NumUsers     int
	PostsPerUser int
	// MaxDays bounds how far back created_at is spread.
	MaxDays int
	// Clean removes existing posts and users first.
	Clean bool
	// SkipBcrypt stores passwords unhashed for fast local runs.
	SkipBcrypt bool
	// RandomSeed makes generated data reproducible when non-zero.
	RandomSeed int64
}

// Result counts what a seeding run created.
type Result struct {
	Users int
	Posts int
}

// Seed populates the database with generated users and posts.
func Seed(ctx context.Context, db *gorm.DB, images ImageSaver, opts Options) (*Result, error) {
	log.Printf("Seeding %d users with %d posts each...", opts.NumUsers, opts.PostsPerUser)

	if opts.Clean {
		if err := clearData(ctx, db); err != nil {
			return nil, fmt.Errorf("failed to clear data: %w", err)
		}
	}

	f := NewFactory(db, images, opts)
	res := &Result{}
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return res, fmt.Errorf("failed to create user: %w", err)
		}
		res.Users++

		for j := 0; j < opts.PostsPerUser; j++ {
			if _, err := f.CreatePost(ctx, user); err != nil {
				return res, fmt.Errorf("failed to create post for user %d: %w", user.ID, err)
			}
			res.Posts++
		}
	}

	log.Printf("Seeding complete: %d users, %d posts", res.Users, res.Posts)
	return res, nil
}

// clearData deletes every post and user. Image files are left for
// prune-images to collect.
func clearData(ctx context.Context, db *gorm.DB) error {
	log.Println("Clearing existing posts and users...")
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.User{}).Error
	})
}
