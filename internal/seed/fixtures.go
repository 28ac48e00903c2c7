package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"postfeed/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Fixtures is a hand-written data set, usually loaded from YAML:
//
//	users:
//	  - name: Max
//	    email: max@example.com
//	    password: secret
//	    posts:
//	      - title: First post
//	        content: Hello feed
type Fixtures struct {
	Users []UserFixture `yaml:"users"`
}

type UserFixture struct {
	Name     string        `yaml:"name"`
	Email    string        `yaml:"email"`
	Password string        `yaml:"password"`
	Status   string        `yaml:"status"`
	Posts    []PostFixture `yaml:"posts"`
}

type PostFixture struct {
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
	// Image is an existing image path; a placeholder is generated when empty.
	Image string `yaml:"image"`
}

// LoadFixtures reads and validates a YAML fixtures file.
func LoadFixtures(path string) (*Fixtures, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return ParseFixtures(raw)
}

// ParseFixtures decodes YAML fixtures.
func ParseFixtures(raw []byte) (*Fixtures, error) {
	var fx Fixtures
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	if err := fx.validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

func (fx *Fixtures) validate() error {
	seen := make(map[string]bool, len(fx.Users))
	for i, u := range fx.Users {
		email := strings.ToLower(strings.TrimSpace(u.Email))
		if email == "" || strings.TrimSpace(u.Name) == "" {
			return fmt.Errorf("fixtures: user %d needs a name and an email", i)
		}
		if seen[email] {
			return fmt.Errorf("fixtures: duplicate email %q", email)
		}
		seen[email] = true
		for j, p := range u.Posts {
			if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Content) == "" {
				return fmt.Errorf("fixtures: post %d of %s needs a title and content", j, email)
			}
		}
	}
	return nil
}

// ApplyFixtures inserts the fixture users and their posts. Users whose email
// already exists are reused, so applying the same file twice only adds posts
// missing by title.
func ApplyFixtures(ctx context.Context, db *gorm.DB, images ImageSaver, fx *Fixtures, opts Options) (*Result, error) {
	f := NewFactory(db, images, opts)
	res := &Result{}

	for _, uf := range fx.Users {
		user, created, err := f.fixtureUser(ctx, uf)
		if err != nil {
			return res, err
		}
		if created {
			res.Users++
		}

		for _, pf := range uf.Posts {
			var count int64
			if err := db.WithContext(ctx).Model(&models.Post{}).
				Where("creator_id = ? AND title = ?", user.ID, pf.Title).
				Count(&count).Error; err != nil {
				return res, err
			}
			if count > 0 {
				continue
			}

			if _, err := f.CreatePost(ctx, user, func(p *models.Post) {
				p.Title = pf.Title
				p.Content = pf.Content
				p.ImageURL = pf.Image
			}); err != nil {
				return res, fmt.Errorf("failed to create fixture post %q: %w", pf.Title, err)
			}
			res.Posts++
		}
	}
	return res, nil
}

func (f *Factory) fixtureUser(ctx context.Context, uf UserFixture) (*models.User, bool, error) {
	email := strings.ToLower(strings.TrimSpace(uf.Email))

	var existing models.User
	err := f.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	user, err := f.CreateUser(func(u *models.User) {
		u.Name = strings.TrimSpace(uf.Name)
		u.Email = email
		u.Password = uf.Password
		if uf.Status != "" {
			u.Status = uf.Status
		}
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to create fixture user %s: %w", email, err)
	}
	return user, true, nil
}
