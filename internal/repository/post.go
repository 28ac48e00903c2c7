// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"postfeed/internal/cache"
	"postfeed/internal/models"
	"postfeed/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, limit, offset int) ([]models.Post, error)
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id, creatorID uint) error
	ImageURLs(ctx context.Context) ([]string, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	defer observability.TrackQuery("count", "posts")()

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&total).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}

// List returns a page of posts, newest first, with creators loaded.
func (r *postRepository) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	defer observability.TrackQuery("list", "posts")()

	posts := make([]models.Post, 0, limit)
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post

	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		defer observability.TrackQuery("get", "posts")()
		return r.db.WithContext(ctx).Preload("Creator").First(&post, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError(models.MsgPostNotFound)
		}
		return nil, models.NewInternalError(err)
	}
	// The creator id is not serialised, so restore it for cached copies.
	if post.CreatorID == 0 {
		post.CreatorID = post.Creator.ID
	}
	return &post, nil
}

// Create persists post for post.CreatorID, which must reference an existing
// user, and fills post.Creator.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var creator models.User
		if err := tx.First(&creator, post.CreatorID).Error; err != nil {
			return err
		}
		if err := tx.Omit("Creator").Create(post).Error; err != nil {
			return err
		}
		post.Creator = creator
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError(models.MsgUserNotFound)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Update saves the editable fields of post.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("update", "posts")()

	res := r.db.WithContext(ctx).
		Model(post).
		Select("Title", "Content", "ImageURL", "UpdatedAt").
		Updates(post)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	cache.InvalidatePost(ctx, post.ID)
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(models.MsgPostNotFound)
	}
	return nil
}

// Delete removes the post only if creatorID owns it, which also drops it
// from the creator's post list.
func (r *postRepository) Delete(ctx context.Context, id, creatorID uint) error {
	defer observability.TrackQuery("delete", "posts")()

	res := r.db.WithContext(ctx).
		Where("id = ? AND creator_id = ?", id, creatorID).
		Delete(&models.Post{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	cache.InvalidatePost(ctx, id)
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(models.MsgPostNotFound)
	}
	return nil
}

// ImageURLs returns the image path of every stored post.
func (r *postRepository) ImageURLs(ctx context.Context) ([]string, error) {
	var urls []string
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Pluck("image_url", &urls).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return urls, nil
}
