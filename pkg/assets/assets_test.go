package assets

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/noah-isme/stage-docs-api/pkg/document"
)

func sampleImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{G: 128, A: 255})
	return img
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, sampleImage()))
	return buf.Bytes()
}

func TestNormalizeKeepsPNG(t *testing.T) {
	data := pngBytes(t)
	asset, err := Normalize("emblem.png", data)
	require.NoError(t, err)
	assert.Equal(t, "PNG", asset.Type)
	assert.Equal(t, data, asset.Data)
}

func TestNormalizeConvertsBMP(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, bmp.Encode(buf, sampleImage()))

	asset, err := Normalize("logo.bmp", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "PNG", asset.Type)
	_, err = png.Decode(bytes.NewReader(asset.Data))
	require.NoError(t, err)
}

func TestNormalizeRejectsText(t *testing.T) {
	_, err := Normalize("logo.png", []byte("<html>not found</html>"))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestFSLoaderStaysInsideRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/srv/public/emblem.png", pngBytes(t), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/srv/secret.png", pngBytes(t), 0o644))
	loader := NewFSLoader(fs, "/srv/public")

	asset, err := loader.Load(context.Background(), "emblem.png")
	require.NoError(t, err)
	assert.Equal(t, "emblem.png", asset.Name)

	_, err = loader.Load(context.Background(), "../secret.png")
	assert.Error(t, err)
}

func TestFSLoaderHonoursCancelledContext(t *testing.T) {
	loader := NewFSLoader(afero.NewMemMapFs(), "/")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := loader.Load(ctx, "emblem.png")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPLoader(t *testing.T) {
	data := pngBytes(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/logo.png":
			_, _ = w.Write(data)
		case "/slow.png":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write(data)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	loader := NewHTTPLoader(srv.Client(), 0)

	asset, err := loader.Load(context.Background(), srv.URL+"/logo.png")
	require.NoError(t, err)
	assert.Equal(t, "logo.png", asset.Name)

	_, err = loader.Load(context.Background(), srv.URL+"/missing.png")
	assert.Error(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = loader.Load(ctx, srv.URL+"/slow.png")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	small := NewHTTPLoader(srv.Client(), 10)
	_, err = small.Load(context.Background(), srv.URL+"/logo.png")
	assert.Error(t, err)
}

type countingLoader struct {
	calls atomic.Int32
	fail  bool
}

func (c *countingLoader) Load(ctx context.Context, ref string) (*document.Asset, error) {
	c.calls.Add(1)
	if c.fail {
		return nil, errors.New("unavailable")
	}
	return &document.Asset{Name: ref, Type: "PNG", Data: []byte{1}}, nil
}

func TestMemoCachesOnlySuccess(t *testing.T) {
	ok := &countingLoader{}
	memo := NewMemo(ok)
	for i := 0; i < 3; i++ {
		_, err := memo.Load(context.Background(), "emblem.png")
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, ok.calls.Load())

	failing := &countingLoader{fail: true}
	memo = NewMemo(failing)
	for i := 0; i < 2; i++ {
		_, err := memo.Load(context.Background(), "logo.png")
		require.Error(t, err)
	}
	assert.EqualValues(t, 2, failing.calls.Load())
}

func TestRouterDispatchesByScheme(t *testing.T) {
	files, web := &countingLoader{}, &countingLoader{}
	r := Router{Files: files, HTTP: web}

	_, _ = r.Load(context.Background(), "emblem.png")
	_, _ = r.Load(context.Background(), "https://bucket.supabase.co/logo.png")
	assert.EqualValues(t, 1, files.calls.Load())
	assert.EqualValues(t, 1, web.calls.Load())
}

func TestNewRouterFetchesRemoteLogosOnce(t *testing.T) {
	data := pngBytes(t)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	r := NewRouter(t.TempDir(), srv.Client())
	for i := 0; i < 3; i++ {
		asset, err := r.Load(context.Background(), srv.URL+"/mtfop-logo.png")
		require.NoError(t, err)
		assert.Equal(t, "PNG", asset.Type)
	}
	assert.EqualValues(t, 1, hits.Load())
}
