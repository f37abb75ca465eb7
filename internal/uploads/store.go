package uploads

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/middleware"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/config"
	"github.com/google/uuid"
)

const (
	screenshotDir = "screenshots"
	PublicPrefix  = "/uploads/"
	sniffLen      = 512
)

var (
	ErrNotImage = errors.New("uploaded file is not an image")
	ErrTooLarge = errors.New("uploaded file is too large")
)

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

type Store interface {
	// SaveScreenshot stores an image and returns the public path it is served from.
	SaveScreenshot(ctx context.Context, r io.Reader) (string, error)
	MaxBytes() int64
}

type DiskStore struct {
	dir      string
	maxBytes int64
}

func NewDiskStore(cfg config.Uploads) (*DiskStore, error) {

	if err := os.MkdirAll(filepath.Join(cfg.Dir, screenshotDir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &DiskStore{dir: cfg.Dir, maxBytes: cfg.MaxBytes}, nil
}

func (s *DiskStore) MaxBytes() int64 {
	return s.maxBytes
}

func (s *DiskStore) SaveScreenshot(ctx context.Context, r io.Reader) (string, error) {

	br := bufio.NewReaderSize(r, sniffLen)

	// Peek returns what it could read along with io.EOF for short files
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	contentType := http.DetectContentType(head)
	ext, ok := imageExtensions[contentType]
	if !ok || !strings.HasPrefix(contentType, "image/") {
		return "", ErrNotImage
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, screenshotDir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	written, copyErr := io.Copy(f, io.LimitReader(br, s.maxBytes+1))
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		s.discard(ctx, path)
		return "", fmt.Errorf("failed to write upload: %w", copyErr)
	case written > s.maxBytes:
		s.discard(ctx, path)
		return "", ErrTooLarge
	case closeErr != nil:
		s.discard(ctx, path)
		return "", fmt.Errorf("failed to write upload: %w", closeErr)
	}

	middleware.LoggerFromContext(ctx).Info("Screenshot stored", slog.String("file", name), slog.Int64("bytes", written))

	return PublicPrefix + screenshotDir + "/" + name, nil
}

// Handler serves stored files under PublicPrefix.
func (s *DiskStore) Handler() http.Handler {
	return http.StripPrefix(PublicPrefix, http.FileServer(http.Dir(s.dir)))
}

func (s *DiskStore) discard(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to remove rejected upload", slog.String("error", err.Error()))
	}
}
