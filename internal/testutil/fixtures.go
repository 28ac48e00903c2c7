package testutil

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"postfeed/internal/database"
	"postfeed/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// JWTSecret is the signing secret used by handler tests.
const JWTSecret = "test-secret-key-12345678901234567890123456789012"

// NewSQLiteDB opens a migrated SQLite database in a temp dir.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user named name with a unique email.
func CreateUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		Name:     name,
		Email:    fmt.Sprintf("%s-%d@example.com", name, time.Now().UnixNano()),
		Password: "hashed",
		Status:   models.DefaultUserStatus,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreatePost inserts a post by creator with the given image path.
func CreatePost(t *testing.T, db *gorm.DB, creator *models.User, title, imageURL string) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:     title,
		Content:   "Some content for " + title,
		ImageURL:  imageURL,
		CreatorID: creator.ID,
	}
	require.NoError(t, db.Omit("Creator").Create(post).Error)
	post.Creator = *creator
	return post
}

// Token signs an HS256 bearer token for userID with JWTSecret.
func Token(t *testing.T, userID uint) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(JWTSecret))
	require.NoError(t, err)
	return s
}

// Multipart encodes fields and an optional image part. It returns the body
// and its Content-Type header.
func Multipart(t *testing.T, fields map[string]string, filename string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		part, err := w.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}
