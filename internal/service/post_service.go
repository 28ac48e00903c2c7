// Package service holds the post and user use cases behind the HTTP handlers.
package service

import (
	"context"

	"postfeed/internal/middleware"
	"postfeed/internal/models"
	"postfeed/internal/observability"
	"postfeed/internal/repository"
	"postfeed/internal/storage"
	"postfeed/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// Feed event name and actions.
const (
	EventPosts   = "posts"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

const DefaultPostsPerPage = 10

// Messages returned to clients.
const (
	MsgNoImageProvided = "No image provided."
	MsgNoFilePicked    = "No file picked."
	MsgNotAuthorized   = "Not authorized!"
	MsgImageMismatch   = "Image does not belong to this post."
)

// Broadcaster delivers an event to every connected client.
type Broadcaster interface {
	Emit(ctx context.Context, event string, payload any) error
}

// ImageStore persists uploaded images and removes replaced ones.
type ImageStore interface {
	Save(ctx context.Context, in storage.Upload) (string, error)
	Remove(imageURL string)
}

// PostEvent is the payload of a "posts" event. Post is the post itself for
// create and update, and its id for delete.
type PostEvent struct {
	Action string `json:"action"`
	Post   any    `json:"post"`
}

// EventAction reports the action for metrics.
func (e PostEvent) EventAction() string { return e.Action }

type PostService struct {
	postRepo    repository.PostRepository
	images      ImageStore
	broadcaster Broadcaster
	perPage     int
}

type ListPostsResult struct {
	Posts      []models.Post `json:"posts"`
	TotalItems int64         `json:"totalItems"`
}

type CreatePostInput struct {
	UserID uint
	Input  validation.PostInput
	// Image is nil when the request carried no file.
	Image *storage.Upload
}

type UpdatePostInput struct {
	UserID uint
	PostID uint
	Input  validation.PostInput
	Image  *storage.Upload
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

func NewPostService(
	postRepo repository.PostRepository,
	images ImageStore,
	broadcaster Broadcaster,
	perPage int,
) *PostService {
	if perPage <= 0 {
		perPage = DefaultPostsPerPage
	}
	return &PostService{
		postRepo:    postRepo,
		images:      images,
		broadcaster: broadcaster,
		perPage:     perPage,
	}
}

// PerPage is the fixed page size used by ListPosts.
func (s *PostService) PerPage() int {
	return s.perPage
}

// ListPosts returns page (1-based, values below 1 mean 1) of the feed.
func (s *PostService) ListPosts(ctx context.Context, page int) (res *ListPostsResult, err error) {
	if page < 1 {
		page = 1
	}
	ctx, span := observability.StartSpan(ctx, "PostService", "ListPosts", attribute.Int("page", page))
	defer func() { observability.EndSpan(span, err) }()

	total, err := s.postRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.List(ctx, s.perPage, (page-1)*s.perPage)
	if err != nil {
		return nil, err
	}
	return &ListPostsResult{Posts: posts, TotalItems: total}, nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (post *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService", "CreatePost")
	defer func() { observability.EndSpan(span, err) }()

	in.Input.Normalize()
	if err := validation.Struct(&in.Input); err != nil {
		return nil, err
	}
	if in.Image == nil {
		return nil, models.NewValidationError(MsgNoImageProvided)
	}

	imageURL, err := s.images.Save(ctx, *in.Image)
	if err != nil {
		return nil, err
	}

	post = &models.Post{
		Title:     in.Input.Title,
		Content:   in.Input.Content,
		ImageURL:  imageURL,
		CreatorID: in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		s.images.Remove(imageURL)
		return nil, err
	}

	s.emit(ctx, PostEvent{Action: ActionCreate, Post: post})
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// UpdatePost replaces title, content and image of a post owned by in.UserID.
// A new upload takes precedence over in.Input.Image, which otherwise has to
// name the image the post already has.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (post *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService", "UpdatePost", attribute.Int64("post.id", int64(in.PostID)))
	defer func() { observability.EndSpan(span, err) }()

	post, err = s.ownedPost(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}

	in.Input.Normalize()
	if err := validation.Struct(&in.Input); err != nil {
		return nil, err
	}

	imageURL := in.Input.Image
	uploaded := ""
	switch {
	case in.Image != nil:
		if imageURL, err = s.images.Save(ctx, *in.Image); err != nil {
			return nil, err
		}
		uploaded = imageURL
	case imageURL == "":
		return nil, models.NewValidationError(MsgNoFilePicked)
	case imageURL != post.ImageURL:
		// Without an upload only the post's own image may be kept.
		return nil, models.NewValidationError(MsgImageMismatch)
	}

	previous := post.ImageURL
	post.Title = in.Input.Title
	post.Content = in.Input.Content
	post.ImageURL = imageURL
	if err := s.postRepo.Update(ctx, post); err != nil {
		if uploaded != "" {
			s.images.Remove(uploaded)
		}
		return nil, err
	}
	if previous != imageURL {
		s.images.Remove(previous)
	}

	s.emit(ctx, PostEvent{Action: ActionUpdate, Post: post})
	return post, nil
}

// DeletePost removes a post owned by in.UserID together with its image.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) (err error) {
	ctx, span := observability.StartSpan(ctx, "PostService", "DeletePost", attribute.Int64("post.id", int64(in.PostID)))
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.ownedPost(ctx, in.PostID, in.UserID)
	if err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, post.ID, in.UserID); err != nil {
		return err
	}
	s.images.Remove(post.ImageURL)

	s.emit(ctx, PostEvent{Action: ActionDelete, Post: post.ID})
	return nil
}

func (s *PostService) ownedPost(ctx context.Context, postID, userID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsOwnedBy(userID) {
		return nil, models.NewForbiddenError(MsgNotAuthorized)
	}
	return post, nil
}

func (s *PostService) emit(ctx context.Context, ev PostEvent) {
	if s.broadcaster == nil {
		return
	}
	if err := s.broadcaster.Emit(ctx, EventPosts, ev); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to broadcast post event",
			"action", ev.Action, "error", err)
	}
}
