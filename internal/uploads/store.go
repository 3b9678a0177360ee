package uploads

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// URLPrefix is the path uploaded files are served under.
const URLPrefix = "/uploads/"

var (
	ErrUnsupportedImage = errors.New("only image files are allowed (JPEG, JPG, PNG, GIF)")
	ErrImageTooLarge    = errors.New("image exceeds the upload size limit")
)

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
}

// Store keeps product images on the local disk.
type Store struct {
	dir     string
	maxSize int64
}

// NewStore creates the upload directory if needed.
func NewStore(dir string, maxSize int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &Store{dir: dir, maxSize: maxSize}, nil
}

// Dir returns the directory files are written to.
func (s *Store) Dir() string { return s.dir }

// Save checks the file type and size and writes the file under a unique
// name derived from field. It returns the URL the file is served from.
func (s *Store) Save(field string, fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	contentType := strings.ToLower(fh.Header.Get("Content-Type"))
	subtype := strings.TrimPrefix(contentType, "image/")
	if !allowedExtensions[ext] || !strings.HasPrefix(contentType, "image/") || !allowedExtensions["."+subtype] {
		return "", ErrUnsupportedImage
	}
	if s.maxSize > 0 && fh.Size > s.maxSize {
		return "", ErrImageTooLarge
	}

	name := fmt.Sprintf("%s-%d-%s%s", field, time.Now().UnixMilli(), uuid.New().String()[:8], ext)
	if err := fasthttp.SaveMultipartFile(fh, filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("failed to save upload %s: %w", fh.Filename, err)
	}
	return URLPrefix + name, nil
}

// Remove deletes a previously saved file. References outside the upload
// directory are ignored, as is a file that no longer exists.
func (s *Store) Remove(ref string) error {
	if !strings.HasPrefix(ref, URLPrefix) {
		return nil
	}
	name := filepath.Base(strings.TrimPrefix(ref, URLPrefix))
	if name == "." || name == string(filepath.Separator) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove upload %s: %w", name, err)
	}
	return nil
}
