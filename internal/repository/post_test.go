package repository

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"postfeed/internal/cache"
	"postfeed/internal/models"
	"postfeed/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func appStatus(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	return models.StatusOf(err)
}

func TestPostRepository_CountQueryShape(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(15))

	total, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(15), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_CreateUnknownCreator(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WithArgs(99, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Post{Title: "Title", CreatorID: 99})
	assert.Equal(t, 404, appStatus(t, err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_ListPagesNewestFirst(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "author")

	for i := 1; i <= 15; i++ {
		testutil.CreatePost(t, db, author, fmt.Sprintf("Post %02d", i), "images/p.png")
	}

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(15), total)

	first, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, first, 10)
	assert.Equal(t, "Post 15", first[0].Title)
	assert.Equal(t, "Post 06", first[9].Title)
	assert.Equal(t, author.Name, first[0].Creator.Name)

	second, err := repo.List(ctx, 10, 10)
	require.NoError(t, err)
	require.Len(t, second, 5)
	assert.Equal(t, "Post 05", second[0].Title)
	assert.Equal(t, "Post 01", second[4].Title)

	empty, err := repo.List(ctx, 10, 20)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPostRepository_CreateAppendsToCreatorList(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	posts := NewPostRepository(db)
	users := NewUserRepository(db)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "author")

	post := &models.Post{Title: "Hello", Content: "World!", ImageURL: "images/a.png", CreatorID: author.ID}
	require.NoError(t, posts.Create(ctx, post))

	assert.NotZero(t, post.ID)
	assert.Equal(t, author.Name, post.Creator.Name)

	ids, err := users.PostIDs(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{post.ID}, ids)
}

func TestPostRepository_GetByID(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	author := testutil.CreateUser(t, db, "author")
	post := testutil.CreatePost(t, db, author, "Cached", "images/c.png")

	got, err := repo.GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cached", got.Title)
	assert.Equal(t, author.ID, got.CreatorID)
	assert.Equal(t, author.Name, got.Creator.Name)

	_, err = repo.GetByID(context.Background(), post.ID+100)
	assert.Equal(t, 404, appStatus(t, err))
}

func TestPostRepository_GetByIDUsesCacheAndInvalidates(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "author")
	post := testutil.CreatePost(t, db, author, "Original", "images/o.png")

	_, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists(cache.PostKey(post.ID)))

	// A row changed behind the cache's back is not seen until invalidation.
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).Update("title", "Sneaky").Error)
	cached, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", cached.Title)
	assert.Equal(t, author.ID, cached.CreatorID)

	cached.Title = "Updated"
	require.NoError(t, repo.Update(ctx, cached))
	assert.False(t, mr.Exists(cache.PostKey(post.ID)))

	fresh, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated", fresh.Title)
}

func TestPostRepository_Update(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "author")
	post := testutil.CreatePost(t, db, author, "Before", "images/old.png")

	post.Title = "After"
	post.Content = "New content"
	post.ImageURL = "images/new.png"
	require.NoError(t, repo.Update(ctx, post))

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.Equal(t, "After", stored.Title)
	assert.Equal(t, "New content", stored.Content)
	assert.Equal(t, "images/new.png", stored.ImageURL)
	assert.Equal(t, author.ID, stored.CreatorID)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(1), users)

	missing := &models.Post{ID: post.ID + 50, Title: "x"}
	assert.Equal(t, 404, appStatus(t, repo.Update(ctx, missing)))
}

func TestPostRepository_DeleteScopedToCreator(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	posts := NewPostRepository(db)
	users := NewUserRepository(db)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "owner")
	other := testutil.CreateUser(t, db, "other")
	keep := testutil.CreatePost(t, db, owner, "Keep", "images/k.png")
	drop := testutil.CreatePost(t, db, owner, "Drop", "images/d.png")

	assert.Equal(t, 404, appStatus(t, posts.Delete(ctx, drop.ID, other.ID)))

	require.NoError(t, posts.Delete(ctx, drop.ID, owner.ID))

	ids, err := users.PostIDs(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{keep.ID}, ids)

	_, err = posts.GetByID(ctx, drop.ID)
	assert.Equal(t, 404, appStatus(t, err))
}

func TestPostRepository_ImageURLs(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	author := testutil.CreateUser(t, db, "author")
	testutil.CreatePost(t, db, author, "One", "images/1.png")
	testutil.CreatePost(t, db, author, "Two", "images/2.png")

	urls, err := repo.ImageURLs(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"images/1.png", "images/2.png"}, urls)
}
