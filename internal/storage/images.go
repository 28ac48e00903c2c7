// Package storage keeps uploaded post images on local disk.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"postfeed/internal/config"
	"postfeed/internal/middleware"
	"postfeed/internal/models"
	"postfeed/internal/observability"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// URLPrefix is the first segment of every stored image path.
	URLPrefix = "images"

	DefaultImageDir             = "images"
	DefaultImageMaxUploadSizeMB = 10
	DefaultMaxDimension         = 2048
	JPEGQuality                 = 82
	WebPQuality                 = 80
	maxNameLength               = 64
)

// ErrOutsideStore is returned for paths that do not point into the store.
var ErrOutsideStore = errors.New("path is outside the image store")

// Upload is an image file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ImageStore writes uploads to a directory and removes them again.
type ImageStore struct {
	dir                string
	maxUploadSizeBytes int64
	maxDimension       int
	pending            sync.WaitGroup
}

// NewImageStore returns a store configured from cfg; nil cfg uses defaults.
func NewImageStore(cfg *config.Config) *ImageStore {
	dir := DefaultImageDir
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB
	maxDimension := DefaultMaxDimension

	if cfg != nil {
		if cfg.ImageDir != "" {
			dir = cfg.ImageDir
		}
		if cfg.ImageMaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
		}
		if cfg.ImageMaxDimension > 0 {
			maxDimension = cfg.ImageMaxDimension
		}
	}

	return &ImageStore{
		dir:                dir,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
		maxDimension:       maxDimension,
	}
}

// Dir is the directory files are written to.
func (s *ImageStore) Dir() string {
	return s.dir
}

// Save validates in, downscales it when either side exceeds the configured
// maximum and writes it under a fresh name. It returns the image path,
// e.g. "images/3f2c...-cat.png".
func (s *ImageStore) Save(ctx context.Context, in Upload) (string, error) {
	if len(in.Content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}
	if !isAllowedImageMIME(http.DetectContentType(in.Content)) {
		return "", models.NewValidationError("Invalid image type")
	}

	decoded, format, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}

	data := in.Content
	b := decoded.Bounds()
	if b.Dx() > s.maxDimension || b.Dy() > s.maxDimension {
		data, err = encode(resizeToFit(decoded, s.maxDimension, s.maxDimension), format)
		if err != nil {
			return "", models.NewInternalError(err)
		}
	}

	name := uuid.NewString() + "-" + sanitizeName(in.Filename, format)
	if err := writeBytesToFile(filepath.Join(s.dir, name), data); err != nil {
		return "", models.NewInternalError(err)
	}
	observability.ImagesStored.WithLabelValues(format).Inc()
	middleware.Logger.DebugContext(ctx, "image stored", slog.String("file", name), slog.Int("bytes", len(data)))

	return path.Join(URLPrefix, name), nil
}

// Remove deletes the file behind imageURL in the background. Failures are
// logged and counted, never returned.
func (s *ImageStore) Remove(imageURL string) {
	if imageURL == "" {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.RemoveNow(imageURL); err != nil {
			observability.ImageCleanupFailures.Inc()
			middleware.Logger.Warn("failed to remove image",
				slog.String("image_url", imageURL),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// RemoveNow deletes the file behind imageURL synchronously.
func (s *ImageStore) RemoveNow(imageURL string) error {
	p, err := s.resolve(imageURL)
	if err != nil {
		return err
	}
	return os.Remove(p)
}

// Wait blocks until background removals have finished.
func (s *ImageStore) Wait() {
	s.pending.Wait()
}

// List returns the image path of every file currently in the store.
func (s *ImageStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	urls := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			urls = append(urls, path.Join(URLPrefix, e.Name()))
		}
	}
	return urls, nil
}

func (s *ImageStore) resolve(imageURL string) (string, error) {
	name, ok := strings.CutPrefix(filepath.ToSlash(imageURL), URLPrefix+"/")
	if !ok || name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", ErrOutsideStore
	}
	return filepath.Join(s.dir, name), nil
}

func sanitizeName(filename, format string) string {
	base := filepath.Base(filepath.ToSlash(filename))
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, base)
	clean = strings.Trim(clean, ".-")
	if len(clean) > maxNameLength {
		clean = clean[len(clean)-maxNameLength:]
	}
	if clean == "" {
		clean = "image"
	}
	if filepath.Ext(clean) == "" {
		clean += "." + format
	}
	return clean
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encode(img image.Image, format string) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	var err error
	switch format {
	case "jpeg":
		err = jpeg.Encode(buf, img, &jpeg.Options{Quality: JPEGQuality})
	case "png":
		err = png.Encode(buf, img)
	case "gif":
		err = gif.Encode(buf, img, nil)
	case "webp":
		err = webp.Encode(buf, img, &webp.Options{Quality: WebPQuality})
	default:
		err = fmt.Errorf("unsupported image format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func writeBytesToFile(p string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o600)
}
