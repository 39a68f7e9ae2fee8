package assets

import (
	"context"
	"fmt"
	"path"

	"github.com/spf13/afero"

	"github.com/noah-isme/stage-docs-api/pkg/document"
)

// FSLoader reads assets below a root directory.
type FSLoader struct {
	fs afero.Fs
}

// NewFSLoader roots fs at dir. References cannot escape it.
func NewFSLoader(fs afero.Fs, dir string) *FSLoader {
	return &FSLoader{fs: afero.NewBasePathFs(fs, dir)}
}

// NewOSLoader reads from the local disk.
func NewOSLoader(dir string) *FSLoader {
	return NewFSLoader(afero.NewOsFs(), dir)
}

func (l *FSLoader) Load(ctx context.Context, ref string) (*document.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := path.Clean("/" + ref)
	data, err := afero.ReadFile(l.fs, clean)
	if err != nil {
		return nil, fmt.Errorf("read asset %s: %w", ref, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Normalize(path.Base(clean), data)
}
