package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrFileNotFound indicates no file exists under the requested id.
var ErrFileNotFound = errors.New("result file not found")

// DirStore serves result files from a local directory. File ids are paths
// relative to the root; ids escaping the root are rejected.
type DirStore struct {
	root string
}

// NewDirStore builds a store rooted at dir.
func NewDirStore(dir string) (*DirStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("filestore dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("filestore dir %s is not a directory", abs)
	}
	return &DirStore{root: abs}, nil
}

// Read returns the content of the file named by fileID.
func (d *DirStore) Read(ctx context.Context, fileID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := filepath.Clean(filepath.FromSlash(strings.TrimSpace(fileID)))
	if name == "." || filepath.IsAbs(name) || name == ".." || strings.HasPrefix(name, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%w: invalid id %q", ErrFileNotFound, fileID)
	}

	data, err := os.ReadFile(filepath.Join(d.root, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, fileID)
		}
		return nil, err
	}
	return data, nil
}
