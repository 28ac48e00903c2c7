package service

import (
	"context"
	"sync"

	"postfeed/internal/models"
	"postfeed/internal/storage"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	countFn     func(context.Context) (int64, error)
	listFn      func(context.Context, int, int) ([]models.Post, error)
	getByIDFn   func(context.Context, uint) (*models.Post, error)
	createFn    func(context.Context, *models.Post) error
	updateFn    func(context.Context, *models.Post) error
	deleteFn    func(context.Context, uint, uint) error
	imageURLsFn func(context.Context) ([]string, error)
}

func (s *postRepoStub) Count(ctx context.Context) (int64, error) { return s.countFn(ctx) }
func (s *postRepoStub) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id, creatorID uint) error {
	return s.deleteFn(ctx, id, creatorID)
}
func (s *postRepoStub) ImageURLs(ctx context.Context) ([]string, error) {
	return s.imageURLsFn(ctx)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		countFn:   func(context.Context) (int64, error) { return 0, nil },
		listFn:    func(context.Context, int, int) ([]models.Post, error) { return nil, nil },
		getByIDFn: func(context.Context, uint) (*models.Post, error) { return nil, models.NewNotFoundError(models.MsgPostNotFound) },
		createFn: func(_ context.Context, p *models.Post) error {
			p.ID = 1
			return nil
		},
		updateFn:    func(context.Context, *models.Post) error { return nil },
		deleteFn:    func(context.Context, uint, uint) error { return nil },
		imageURLsFn: func(context.Context) ([]string, error) { return nil, nil },
	}
}

// imageStoreStub records saved and removed image paths.
type imageStoreStub struct {
	mu      sync.Mutex
	saveErr error
	saved   []string
	removed []string
}

func (s *imageStoreStub) Save(_ context.Context, in storage.Upload) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	url := "images/new-" + in.Filename
	s.saved = append(s.saved, url)
	return url, nil
}

func (s *imageStoreStub) Remove(imageURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, imageURL)
}

type emitted struct {
	event   string
	payload PostEvent
}

// broadcasterStub records every emitted event.
type broadcasterStub struct {
	err    error
	events []emitted
}

func (b *broadcasterStub) Emit(_ context.Context, event string, payload any) error {
	b.events = append(b.events, emitted{event: event, payload: payload.(PostEvent)})
	return b.err
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn    func(context.Context, uint) (*models.User, error)
	getByEmailFn func(context.Context, string) (*models.User, error)
	createFn     func(context.Context, *models.User) error
	postIDsFn    func(context.Context, uint) ([]uint, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) PostIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.postIDsFn(ctx, userID)
}
