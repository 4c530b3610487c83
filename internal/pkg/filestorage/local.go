package filestorage

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/lempar/academia/internal/pkg/apperrors"
	"github.com/lempar/academia/internal/pkg/logger"
)

// Options tunes how pictures are accepted and stored
type Options struct {
	// AllowedExtensions without the leading dot, compared case-insensitively
	AllowedExtensions []string
	// MaxDimension bounds the longest side of stored images; 0 keeps the upload untouched
	MaxDimension int
}

// LocalStorage saves pictures to a directory on the local filesystem.
type LocalStorage struct {
	basePath     string
	allowed      map[string]struct{}
	allowedList  string
	maxDimension int
}

var _ PictureStore = (*LocalStorage)(nil)

// NewLocalStorage creates a LocalStorage rooted at basePath, creating the
// directory when it does not exist yet.
func NewLocalStorage(basePath string, opts Options) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	allowed := make(map[string]struct{}, len(opts.AllowedExtensions))
	names := make([]string, 0, len(opts.AllowedExtensions))
	for _, ext := range opts.AllowedExtensions {
		ext = strings.ToLower(strings.TrimPrefix(ext, "."))
		if ext == "" {
			continue
		}
		if _, dup := allowed[ext]; !dup {
			names = append(names, ext)
		}
		allowed[ext] = struct{}{}
	}

	return &LocalStorage{
		basePath:     basePath,
		allowed:      allowed,
		allowedList:  strings.Join(names, ", "),
		maxDimension: opts.MaxDimension,
	}, nil
}

// BasePath returns the directory pictures are stored in
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// Allowed reports whether filename carries an accepted extension
func (ls *LocalStorage) Allowed(filename string) bool {
	_, ok := ls.allowed[extension(filename)]
	return ok
}

func extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filepath.Base(filename)), "."))
}

// SavePicture stores an uploaded image as <uuid hex>.<ext>
func (ls *LocalStorage) SavePicture(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader == nil || fileHeader.Filename == "" {
		return "", nil
	}

	if !ls.Allowed(fileHeader.Filename) {
		return "", apperrors.NewValidationError(
			fmt.Sprintf("Formato de imagen no permitido. Formatos aceptados: %s.", ls.allowedList))
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", apperrors.NewStorageError("No se pudo leer la imagen subida", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", apperrors.NewStorageError("No se pudo leer la imagen subida", err)
	}

	if mt := mimetype.Detect(data); !strings.HasPrefix(mt.String(), "image/") {
		logger.Warn().Str("filename", fileHeader.Filename).Str("mime", mt.String()).Msg("Rejected non-image upload")
		return "", apperrors.NewValidationError("El archivo subido no es una imagen válida.")
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		logger.Warn().Err(err).Str("filename", fileHeader.Filename).Msg("Rejected undecodable image")
		return "", apperrors.NewValidationError("El archivo subido no es una imagen válida.")
	}

	ext := extension(fileHeader.Filename)
	filename := strings.ReplaceAll(uuid.New().String(), "-", "") + "." + ext
	dstPath := filepath.Join(ls.basePath, filename)

	bounds := img.Bounds()
	if ls.maxDimension > 0 && (bounds.Dx() > ls.maxDimension || bounds.Dy() > ls.maxDimension) {
		resized := imaging.Fit(img, ls.maxDimension, ls.maxDimension, imaging.Lanczos)
		err = imaging.Save(resized, dstPath)
	} else {
		err = os.WriteFile(dstPath, data, 0o644)
	}
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to write picture")
		_ = os.Remove(dstPath)
		return "", apperrors.NewStorageError("No se pudo guardar la imagen", err)
	}

	logger.Info().Str("filename", fileHeader.Filename).Str("saved_as", filename).Msg("Picture saved")
	return filename, nil
}

// DeletePicture removes a stored picture. Only the base name of filename is
// used, so callers cannot reach outside the storage directory.
func (ls *LocalStorage) DeletePicture(filename string) error {
	if filename == "" {
		return nil
	}

	base := filepath.Base(filename)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return apperrors.NewValidationError(fmt.Sprintf("invalid picture name: %s", filename))
	}

	physicalPath := filepath.Join(ls.basePath, base)
	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", physicalPath).Msg("Picture to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete picture")
		return apperrors.NewStorageError("No se pudo eliminar la foto", err)
	}

	logger.Info().Str("path", physicalPath).Msg("Picture deleted")
	return nil
}
