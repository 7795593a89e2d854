// Package asset binds slide images to storage. Every slide owns exactly one
// image, stored under the slide id and reachable by a public URL.
package asset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrStorage wraps every failure of the underlying storage.
	ErrStorage = errors.New("asset storage error")

	// ErrInvalidImage is returned when an upload is not a web image or too big.
	ErrInvalidImage = errors.New("invalid image")
)

// sniffLen is how much of an upload is read to detect its type.
const sniffLen = 3072

// webImageTypes are the upload types a browser can show in an img element.
var webImageTypes = []string{ //nolint:gochecknoglobals
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/svg+xml",
}

// Ref points at a stored image: the owning slide id and the file name.
type Ref struct {
	OwnerID  uint64
	Filename string
}

// File is an upload on its way into storage.
type File struct {
	Name    string
	Content io.Reader
}

// Binding stores, resolves, removes and duplicates slide images.
type Binding interface {
	// Store persists the file under ownerID. An existing file with the same
	// name is replaced.
	Store(ctx context.Context, ownerID uint64, file File) (Ref, error)
	// URLFor returns the public URL. It does not touch storage.
	URLFor(ref Ref) string
	// Delete removes the file. A missing file is not an error.
	Delete(ctx context.Context, ref Ref) error
	// Copy duplicates the file for another owner.
	Copy(ctx context.Context, ref Ref, newOwnerID uint64) (Ref, error)
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// CleanName reduces an uploaded file name to a safe base name.
func CleanName(name string) (string, error) {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeNameChars.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, ".")

	if name == "" || name == "_" {
		return "", fmt.Errorf("%w: empty file name", ErrInvalidImage)
	}

	return name, nil
}

// sniff reads the head of the upload, checks that it is a web image and
// returns the mime type plus a reader yielding the full content again.
func sniff(r io.Reader) (string, io.Reader, error) {
	if r == nil {
		return "", nil, fmt.Errorf("%w: no content", ErrInvalidImage)
	}

	head := make([]byte, sniffLen)

	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if n == 0 {
		return "", nil, fmt.Errorf("%w: empty file", ErrInvalidImage)
	}

	head = head[:n]

	mtype := mimetype.Detect(head)
	if !mimetype.EqualsAny(mtype.String(), webImageTypes...) {
		return "", nil, fmt.Errorf("%w: %s is not a web image", ErrInvalidImage, mtype.String())
	}

	return mtype.String(), io.MultiReader(bytes.NewReader(head), r), nil
}
