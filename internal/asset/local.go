package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	dirPerm  = 0o750
	filePerm = 0o640
)

// LocalConfig places slide images on the local disk.
type LocalConfig struct {
	Path    string `mapstructure:"path"    toml:"path"`    // root directory
	BaseURL string `mapstructure:"baseURL" toml:"baseURL"` // URL prefix the root is served under
}

// LocalStore keeps images at <root>/<owner id>/<file name>.
type LocalStore struct {
	root    string
	baseURL string
}

var errOutsideRoot = errors.New("path escapes the asset root")

// NewLocalStore creates the root directory if needed.
func NewLocalStore(cfg LocalConfig) (*LocalStore, error) {
	root, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if err = os.MkdirAll(root, dirPerm); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	return &LocalStore{
		root:    root,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

// Root returns the absolute root directory, for serving it over http.
func (s *LocalStore) Root() string {
	return s.root
}

// secureJoin joins rel below base and refuses anything that ends up outside.
func secureJoin(base, rel string) (string, error) {
	cleanRel := filepath.Clean(rel)
	if filepath.IsAbs(cleanRel) {
		return "", errOutsideRoot
	}

	target := filepath.Join(base, cleanRel)

	within, err := filepath.Rel(base, target)
	if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", errOutsideRoot
	}

	return target, nil
}

func (s *LocalStore) path(ref Ref) (string, error) {
	name, err := CleanName(ref.Filename)
	if err != nil {
		return "", err
	}

	return secureJoin(s.root, filepath.Join(strconv.FormatUint(ref.OwnerID, 10), name))
}

// Store writes the upload to a temp file in the owner directory and renames
// it into place.
func (s *LocalStore) Store(_ context.Context, ownerID uint64, file File) (Ref, error) {
	name, err := CleanName(file.Name)
	if err != nil {
		return Ref{}, err
	}

	_, content, err := sniff(file.Content)
	if err != nil {
		return Ref{}, err
	}

	ref := Ref{OwnerID: ownerID, Filename: name}

	dst, err := s.path(ref)
	if err != nil {
		return Ref{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if err = s.writeAtomic(dst, content); err != nil {
		return Ref{}, err
	}

	log.Debug().Uint64("owner", ownerID).Str("file", name).Msg("asset stored")

	return ref, nil
}

func (s *LocalStore) writeAtomic(dst string, content io.Reader) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	tmp := filepath.Join(dir, ".upload-"+uuid.NewString())

	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	_, errCopy := io.Copy(out, content)
	errClose := out.Close()

	if err = errors.Join(errCopy, errClose); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if err = os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	return nil
}

// URLFor returns <base url>/<owner id>/<escaped file name>.
func (s *LocalStore) URLFor(ref Ref) string {
	return s.baseURL + "/" + strconv.FormatUint(ref.OwnerID, 10) + "/" + url.PathEscape(ref.Filename)
}

// Delete removes the file and the owner directory once it is empty.
func (s *LocalStore) Delete(_ context.Context, ref Ref) error {
	p, err := s.path(ref)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	err = os.Remove(p)

	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Info().Uint64("owner", ref.OwnerID).Str("file", ref.Filename).Msg("asset already absent")
	case err != nil:
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	// only succeeds for an empty directory
	_ = os.Remove(filepath.Dir(p))

	return nil
}

// Copy duplicates the file into the directory of newOwnerID.
func (s *LocalStore) Copy(_ context.Context, ref Ref, newOwnerID uint64) (Ref, error) {
	src, err := s.path(ref)
	if err != nil {
		return Ref{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	in, err := os.Open(src) //nolint:gosec // path is confined by secureJoin
	if err != nil {
		return Ref{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	defer func() { _ = in.Close() }()

	copied := Ref{OwnerID: newOwnerID, Filename: ref.Filename}

	dst, err := s.path(copied)
	if err != nil {
		return Ref{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if err = s.writeAtomic(dst, in); err != nil {
		return Ref{}, err
	}

	return copied, nil
}
