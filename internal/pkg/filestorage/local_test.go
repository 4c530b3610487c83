package filestorage

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/lempar/academia/internal/pkg/apperrors"
	"github.com/lempar/academia/internal/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, maxDim int) *LocalStorage {
	t.Helper()
	store, err := NewLocalStorage(filepath.Join(t.TempDir(), "uploads"), Options{
		AllowedExtensions: []string{"png", "JPG", "jpeg", "gif"},
		MaxDimension:      maxDim,
	})
	require.NoError(t, err)
	return store
}

func TestSavePictureStoresUUIDName(t *testing.T) {
	store := newStore(t, 0)
	data := testutil.PNG(t, 4, 4)

	name, err := store.SavePicture(testutil.FileHeader(t, "Foto Perfil.PNG", data))
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.Len(t, strings.TrimSuffix(name, ".png"), 32)

	stored, err := os.ReadFile(filepath.Join(store.BasePath(), name))
	require.NoError(t, err)
	assert.Equal(t, data, stored)
}

func TestSavePictureNoFile(t *testing.T) {
	store := newStore(t, 0)

	name, err := store.SavePicture(nil)
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestSavePictureRejectsExtension(t *testing.T) {
	store := newStore(t, 0)

	_, err := store.SavePicture(testutil.FileHeader(t, "notes.txt", []byte("hola")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
	assert.Contains(t, apperrors.Message(err, ""), "png, jpg, jpeg, gif")
}

func TestSavePictureRejectsNonImageContent(t *testing.T) {
	store := newStore(t, 0)

	_, err := store.SavePicture(testutil.FileHeader(t, "fake.png", []byte("definitely not an image")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	entries, err := os.ReadDir(store.BasePath())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSavePictureDownscales(t *testing.T) {
	store := newStore(t, 50)

	name, err := store.SavePicture(testutil.FileHeader(t, "grande.png", testutil.PNG(t, 200, 100)))
	require.NoError(t, err)

	img, err := imaging.Open(filepath.Join(store.BasePath(), name))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(50, 25), img.Bounds().Size())
}

func TestDeletePicture(t *testing.T) {
	store := newStore(t, 0)

	name, err := store.SavePicture(testutil.FileHeader(t, "a.png", testutil.PNG(t, 2, 2)))
	require.NoError(t, err)

	require.NoError(t, store.DeletePicture(name))
	_, err = os.Stat(filepath.Join(store.BasePath(), name))
	assert.True(t, os.IsNotExist(err))

	// missing and empty names are no-ops
	assert.NoError(t, store.DeletePicture(name))
	assert.NoError(t, store.DeletePicture(""))
}

func TestDeletePictureStaysInsideBase(t *testing.T) {
	store := newStore(t, 0)

	outside := filepath.Join(filepath.Dir(store.BasePath()), "keep.png")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	require.NoError(t, store.DeletePicture("../keep.png"))
	_, err := os.Stat(outside)
	assert.NoError(t, err)
}
