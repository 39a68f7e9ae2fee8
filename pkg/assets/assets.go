// Package assets resolves the header images placed on generated documents.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/noah-isme/stage-docs-api/pkg/document"
)

// ErrUnsupported is returned for content that is not a raster image.
var ErrUnsupported = errors.New("unsupported asset type")

type decodeFunc func(r *bytes.Reader) (image.Image, error)

var converters = map[string]decodeFunc{
	"image/webp": func(r *bytes.Reader) (image.Image, error) { return webp.Decode(r) },
	"image/bmp":  func(r *bytes.Reader) (image.Image, error) { return bmp.Decode(r) },
	"image/tiff": func(r *bytes.Reader) (image.Image, error) { return tiff.Decode(r) },
}

// Normalize sniffs data and returns an asset in a format the PDF canvas can
// embed. WebP, BMP and TIFF images are re-encoded as PNG.
func Normalize(name string, data []byte) (*document.Asset, error) {
	mtype := mimetype.Detect(data)
	switch {
	case mtype.Is("image/png"):
		return &document.Asset{Name: name, Type: "PNG", Data: data}, nil
	case mtype.Is("image/jpeg"):
		return &document.Asset{Name: name, Type: "JPG", Data: data}, nil
	case mtype.Is("image/gif"):
		return &document.Asset{Name: name, Type: "GIF", Data: data}, nil
	}

	for mime, decode := range converters {
		if !mtype.Is(mime) {
			continue
		}
		img, err := decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", mime, err)
		}
		buf := &bytes.Buffer{}
		if err := png.Encode(buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
		return &document.Asset{Name: name, Type: "PNG", Data: buf.Bytes()}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, mtype.String())
}

// Router sends URLs to the HTTP loader and everything else to the file loader.
type Router struct {
	Files document.AssetLoader
	HTTP  document.AssetLoader
}

// NewRouter reads files under dir and fetches URLs with client. Both sides keep
// what they loaded for the life of the process.
func NewRouter(dir string, client *http.Client) Router {
	return Router{
		Files: NewMemo(NewOSLoader(dir)),
		HTTP:  NewMemo(NewHTTPLoader(client, 0)),
	}
}

// Load implements document.AssetLoader.
func (r Router) Load(ctx context.Context, ref string) (*document.Asset, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		if r.HTTP == nil {
			return nil, fmt.Errorf("no http loader for %s", ref)
		}
		return r.HTTP.Load(ctx, ref)
	}
	if r.Files == nil {
		return nil, fmt.Errorf("no file loader for %s", ref)
	}
	return r.Files.Load(ctx, ref)
}

// Memo keeps successfully loaded assets in memory. Failures are not cached so a
// logo that comes back later is picked up.
type Memo struct {
	next  document.AssetLoader
	mu    sync.RWMutex
	items map[string]*document.Asset
}

// NewMemo wraps next.
func NewMemo(next document.AssetLoader) *Memo {
	return &Memo{next: next, items: make(map[string]*document.Asset)}
}

func (m *Memo) Load(ctx context.Context, ref string) (*document.Asset, error) {
	m.mu.RLock()
	asset, ok := m.items[ref]
	m.mu.RUnlock()
	if ok {
		return asset, nil
	}

	asset, err := m.next.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.items[ref] = asset
	m.mu.Unlock()
	return asset, nil
}
