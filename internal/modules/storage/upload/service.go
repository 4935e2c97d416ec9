package upload

import (
	"context"
	"io"
	"mime"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service struct {
	store    Store
	maxBytes int64
	logger   *zap.Logger
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l.Named("UploadService")
		}
	}
}

// WithMaxSize caps upload size in megabytes. Zero disables the cap.
func WithMaxSize(mb int) Option {
	return func(s *Service) {
		s.maxBytes = int64(mb) << 20
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save validates fileType and the extension of filename, then stores the
// content under a random name in the type's directory.
func (s *Service) Save(ctx context.Context, fileType, filename string, r io.Reader, size int64) (*Result, error) {
	if fileType == "" {
		fileType = TypeImage
	}
	ext, err := checkExtension(fileType, filename)
	if err != nil {
		return nil, err
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return nil, ErrTooLarge
	}

	key := fileType + "s/" + uuid.NewString() + ext
	if err := s.store.Save(ctx, key, r, size, mime.TypeByExtension(ext)); err != nil {
		return nil, err
	}
	s.logger.Info("file uploaded", zap.String("key", key), zap.Int64("size", size))
	return &Result{URL: s.store.URL(key), Filename: filename, Size: size}, nil
}

// Delete removes the object behind fileURL. It reports false when nothing was
// stored there.
func (s *Service) Delete(ctx context.Context, fileURL string) (bool, error) {
	key, ok := s.store.KeyFromURL(fileURL)
	if !ok {
		return false, ErrInvalidURL
	}
	found, err := s.store.Delete(ctx, key)
	if err != nil {
		return false, err
	}
	if found {
		s.logger.Info("file deleted", zap.String("key", key))
	}
	return found, nil
}
