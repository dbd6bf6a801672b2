// Package storage хранит сгенерированные файлы (изображения, экспорт).
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// BlobStore - хранилище файлов с публичными URL.
type BlobStore interface {
	// Put сохраняет данные под именем name и возвращает публичный URL.
	Put(ctx context.Context, name string, data []byte) (string, error)
	// Delete удаляет файл по URL, ранее выданному Put. Отсутствующий файл не ошибка.
	Delete(ctx context.Context, url string) error
}

// ErrInvalidName - имя файла выходит за пределы каталога хранилища.
var ErrInvalidName = errors.New("invalid blob name")

// LocalStore хранит файлы в каталоге, который раздаётся как статика.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore создаёт каталог dir при необходимости.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if dir == "" {
		return nil, errors.New("storage directory is not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *LocalStore) resolve(name string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(name))
	if clean == "/" || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

func (s *LocalStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	full, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create dir for %s: %w", name, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return s.baseURL + "/" + strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(name)), "/"), nil
}

func (s *LocalStore) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := strings.TrimPrefix(url, s.baseURL+"/")
	if name == url {
		return fmt.Errorf("%w: url %q does not belong to this store", ErrInvalidName, url)
	}
	full, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}
