// Package storage keeps uploaded images on local disk under the static
// directory and hands back the public path used in product, banner and
// review records.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/MikeMC777/storefront/internal/apperr"
)

var ErrUnsupportedType = apperr.New(apperr.ErrValidation, "unsupported file type, use png, jpg, jpeg or webp")

var allowedExt = map[string]bool{"png": true, "jpg": true, "jpeg": true, "webp": true}

// Upload is one file taken from a multipart form.
type Upload struct {
	Name    string
	Content io.Reader
}

// Files saves and removes uploaded files.
type Files interface {
	Save(folder string, up Upload) (string, error)
	Delete(publicPath string) error
}

// Local writes files to <Root>/<folder>/<uuid>.<ext> and returns
// "/static/<folder>/<uuid>.<ext>".
type Local struct {
	Root string
}

func NewLocal(root string) *Local { return &Local{Root: root} }

// Allowed reports whether name carries an accepted image extension.
func Allowed(name string) bool {
	return allowedExt[ext(name)]
}

func ext(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

func (l *Local) Save(folder string, up Upload) (string, error) {
	if !Allowed(up.Name) {
		return "", fmt.Errorf("%s: %w", up.Name, ErrUnsupportedType)
	}
	dir := filepath.Join(l.Root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := strings.ReplaceAll(uuid.NewString(), "-", "") + "." + ext(up.Name)
	full := filepath.Join(dir, name)
	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	_, err = io.Copy(f, up.Content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("write file: %w", err)
	}
	return path.Join("/static", folder, name), nil
}

// Delete removes the file behind a path returned by Save. Missing files are not an error.
func (l *Local) Delete(publicPath string) error {
	rel := strings.TrimPrefix(publicPath, "/static/")
	if rel == publicPath || strings.Contains(rel, "..") {
		return fmt.Errorf("not a managed path: %q", publicPath)
	}
	err := os.Remove(filepath.Join(l.Root, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
