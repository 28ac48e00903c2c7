// Package seed provides helpers to create demo data for the feed database.
// These helpers are intended for development and testing only.
package seed

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"strings"
	"time"

	"postfeed/internal/models"
	"postfeed/internal/storage"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every generated user.
const DefaultPassword = "password123"

// ImageSaver stores an uploaded image and returns its path.
type ImageSaver interface {
	Save(ctx context.Context, in storage.Upload) (string, error)
}

// Factory builds users and posts and persists them.
type Factory struct {
	db     *gorm.DB
	images ImageSaver
	opts   Options
	faker  *gofakeit.Faker
	rng    *rand.Rand
}

// NewFactory creates a Factory. images may be nil, in which case posts point
// at placeholder paths that are not backed by files.
func NewFactory(db *gorm.DB, images ImageSaver, opts Options) *Factory {
	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{
		db:     db,
		images: images,
		opts:   opts,
		faker:  gofakeit.New(seed),
		// #nosec G404: acceptable for seeding
		rng: rand.New(rand.NewSource(seed)),
	}
}

// BuildUser returns an unsaved user with a hashed password.
func (f *Factory) BuildUser(overrides ...func(*models.User)) (*models.User, error) {
	name := f.faker.Name()
	user := &models.User{
		Name:   name,
		Email:  strings.ToLower(fmt.Sprintf("%s.%d@%s", f.faker.Username(), f.faker.Number(100, 999), f.faker.DomainName())),
		Status: models.DefaultUserStatus,
	}

	password := DefaultPassword
	for _, override := range overrides {
		override(user)
	}
	if user.Password != "" {
		password = user.Password
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = password
		return user, nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hashed)
	return user, nil
}

// CreateUser builds and persists a user.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user, err := f.BuildUser(overrides...)
	if err != nil {
		return nil, err
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost returns an unsaved post by creator with a created_at spread over
// the last MaxDays days. The image is written to the store when one is set.
func (f *Factory) BuildPost(ctx context.Context, creator *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Title:     strings.TrimSuffix(f.faker.Sentence(5), "."),
		Content:   f.faker.Paragraph(1, 3, 12, "\n"),
		CreatorID: creator.ID,
		CreatedAt: f.pastTime(),
	}
	post.UpdatedAt = post.CreatedAt

	for _, override := range overrides {
		override(post)
	}

	if post.ImageURL == "" {
		url, err := f.placeholderImage(ctx)
		if err != nil {
			return nil, err
		}
		post.ImageURL = url
	}
	return post, nil
}

// CreatePost builds and persists a post by creator.
func (f *Factory) CreatePost(ctx context.Context, creator *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post, err := f.BuildPost(ctx, creator, overrides...)
	if err != nil {
		return nil, err
	}
	if err := f.db.WithContext(ctx).Omit("Creator").Create(post).Error; err != nil {
		return nil, err
	}
	post.Creator = *creator
	return post, nil
}

func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	return time.Now().Add(-back)
}

// placeholderImage stores a small solid-colour PNG and returns its path.
func (f *Factory) placeholderImage(ctx context.Context) (string, error) {
	if f.images == nil {
		return fmt.Sprintf("%s/placeholder-%s.png", storage.URLPrefix, f.faker.UUID()), nil
	}

	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	fill := color.RGBA{
		R: uint8(f.rng.Intn(256)),
		G: uint8(f.rng.Intn(256)),
		B: uint8(f.rng.Intn(256)),
		A: 255,
	}
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, fill)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode placeholder: %w", err)
	}
	return f.images.Save(ctx, storage.Upload{
		Filename:    f.faker.Word() + ".png",
		ContentType: "image/png",
		Content:     buf.Bytes(),
	})
}
