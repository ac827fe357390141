package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/supchaser/pdftoxl/internal/utils/errs"
	"github.com/supchaser/pdftoxl/internal/utils/logger"
	"go.uber.org/zap"
)

// FileStorage saves downloaded results into one directory. A result never
// replaces an earlier one: name collisions get a " (n)" suffix.
type FileStorage struct {
	dir string
	mu  sync.Mutex
}

func CreateFileStorage(dir string) *FileStorage {
	if dir == "" {
		dir = "./storage"
	}
	return &FileStorage{dir: dir}
}

func (s *FileStorage) Dir() string {
	return s.dir
}

// Save writes data under name and returns the path it was stored at.
func (s *FileStorage) Save(ctx context.Context, name string, data []byte) (string, error) {
	const funcName = "FileStorage.Save"

	if err := ctx.Err(); err != nil {
		return "", err
	}

	base := cleanName(name)
	if base == "" {
		return "", fmt.Errorf("invalid file name %q", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create storage directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".part-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	path, err := s.freePath(base)
	if err != nil {
		return "", err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("move result into place: %w", err)
	}

	logger.Info("result saved",
		zap.String("function", funcName),
		zap.String("path", path),
		zap.Int("bytes", len(data)),
	)

	return path, nil
}

// Path resolves a stored result by its base name.
func (s *FileStorage) Path(name string) (string, error) {
	base := cleanName(name)
	if base == "" || base != name {
		return "", errs.ErrResultNotFound
	}

	path := filepath.Join(s.dir, base)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", errs.ErrResultNotFound
	}
	if err != nil {
		return "", fmt.Errorf("stat result: %w", err)
	}
	if info.IsDir() {
		return "", errs.ErrResultNotFound
	}

	return path, nil
}

func (s *FileStorage) freePath(base string) (string, error) {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	candidate := base
	for i := 1; i < 10000; i++ {
		path := filepath.Join(s.dir, candidate)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return path, nil
		} else if err != nil {
			return "", fmt.Errorf("stat %s: %w", path, err)
		}
		candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
	}

	return "", fmt.Errorf("no free file name for %s", base)
}

func cleanName(name string) string {
	base := filepath.Base(strings.TrimSpace(strings.ReplaceAll(name, "\\", "/")))
	if base == "." || base == ".." || base == "/" || strings.HasPrefix(base, ".") {
		return ""
	}
	return base
}
