package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_PutDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, "/static/generated/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := s.Put(ctx, "images/a.jpg", []byte("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "/static/generated/images/a.jpg", url)

	data, err := os.ReadFile(filepath.Join(dir, "images", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), data)

	require.NoError(t, s.Delete(ctx, url))
	_, err = os.Stat(filepath.Join(dir, "images", "a.jpg"))
	assert.True(t, os.IsNotExist(err))

	// повторное удаление не ошибка
	assert.NoError(t, s.Delete(ctx, url))
}

func TestLocalStore_RejectsEscapes(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), "/files")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Put(ctx, "../outside.txt", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = s.Put(ctx, "", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidName)

	assert.ErrorIs(t, s.Delete(ctx, "https://elsewhere/x.jpg"), ErrInvalidName)
}
