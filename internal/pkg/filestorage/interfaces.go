package filestorage

import (
	"mime/multipart"
)

// PictureStore stores and removes student photos. Stored pictures are
// referenced by bare filename only.
type PictureStore interface {
	// SavePicture validates and stores an upload, returning the generated
	// filename. A nil header or an empty filename stores nothing and
	// returns "".
	SavePicture(fileHeader *multipart.FileHeader) (string, error)

	// DeletePicture removes a stored picture. Unknown names are a no-op.
	DeletePicture(filename string) error
}
