package placeholder

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/anoixa/daijo-gallery/internal/imageurl"
	"github.com/anoixa/daijo-gallery/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOrigin = "https://abc.supabase.co"

// mockStorage 模拟存储，记录读取次数
type mockStorage struct {
	objects map[string][]byte
	err     error
	calls   int32
}

func (m *mockStorage) GetWithContext(ctx context.Context, key string) (io.ReadCloser, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.err != nil {
		return nil, m.err
	}
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *mockStorage) Health(ctx context.Context) error { return nil }

func (m *mockStorage) Name() string { return "mock" }

func gradientPNG(t *testing.T, w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeDataURL(t *testing.T, dataURL string) image.Image {
	require.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"), dataURL)
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, "data:image/png;base64,"))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestGenerator_Success(t *testing.T) {
	resolver := imageurl.NewResolver(testOrigin, "gallery-images", "")
	store := &mockStorage{objects: map[string][]byte{"works/01.png": gradientPNG(t, 200, 150)}}
	g := NewGenerator(resolver, store, Config{})

	dataURL := g.Generate(context.Background(), resolver.Resolve("works/01.png"))

	preview := decodeDataURL(t, dataURL)
	assert.Equal(t, previewSize, preview.Bounds().Dx())
	assert.Equal(t, 12, preview.Bounds().Dy())
	assert.Equal(t, int32(1), store.calls)
}

func TestGenerator_RefusesForeignHost(t *testing.T) {
	resolver := imageurl.NewResolver(testOrigin, "gallery-images", "")
	store := &mockStorage{objects: map[string][]byte{"works/01.png": gradientPNG(t, 10, 10)}}
	g := NewGenerator(resolver, store, Config{})
	ctx := context.Background()

	urls := []string{
		"https://evil.example/storage/v1/object/public/gallery-images/works/01.png",
		"https://abc.supabase.co.evil.example/storage/v1/object/public/gallery-images/works/01.png",
		"https://abc.supabase.co:8443/storage/v1/object/public/gallery-images/works/01.png",
		"ftp://abc.supabase.co/storage/v1/object/public/gallery-images/works/01.png",
		"http://169.254.169.254/latest/meta-data/",
		"file:///etc/passwd",
		"not a url at all",
		"/fallback-image.jpg",
		"",
	}
	for _, u := range urls {
		assert.Equal(t, BlurDataURL, g.Generate(ctx, u), u)
	}
	assert.Equal(t, int32(0), store.calls)
}

func TestGenerator_RefusesUnsafeKeyOnAllowedHost(t *testing.T) {
	resolver := imageurl.NewResolver(testOrigin, "gallery-images", "")
	store := &mockStorage{}
	g := NewGenerator(resolver, store, Config{})

	assert.Equal(t, BlurDataURL, g.Generate(context.Background(), testOrigin+"/storage/v1/object/public/gallery-images/../private/a.png"))
	assert.Equal(t, BlurDataURL, g.Generate(context.Background(), testOrigin+"/rest/v1/works"))
	assert.Equal(t, int32(0), store.calls)
}

func TestGenerator_FallbackOnFailure(t *testing.T) {
	resolver := imageurl.NewResolver(testOrigin, "gallery-images", "")
	ctx := context.Background()

	t.Run("storage error", func(t *testing.T) {
		store := &mockStorage{err: errors.New("connection reset")}
		g := NewGenerator(resolver, store, Config{})
		assert.Equal(t, BlurDataURL, g.Generate(ctx, resolver.Resolve("works/01.png")))
		assert.Equal(t, int32(1), store.calls)
	})

	t.Run("not found", func(t *testing.T) {
		store := &mockStorage{objects: map[string][]byte{}}
		g := NewGenerator(resolver, store, Config{})
		assert.Equal(t, BlurDataURL, g.Generate(ctx, resolver.Resolve("works/missing.png")))
	})

	t.Run("undecodable", func(t *testing.T) {
		store := &mockStorage{objects: map[string][]byte{"works/01.png": []byte("<html>not an image</html>")}}
		g := NewGenerator(resolver, store, Config{})
		assert.Equal(t, BlurDataURL, g.Generate(ctx, resolver.Resolve("works/01.png")))
	})

	t.Run("too large", func(t *testing.T) {
		data := gradientPNG(t, 64, 64)
		store := &mockStorage{objects: map[string][]byte{"works/01.png": data}}
		g := NewGenerator(resolver, store, Config{MaxBytes: int64(len(data) - 1)})
		assert.Equal(t, BlurDataURL, g.Generate(ctx, resolver.Resolve("works/01.png")))
	})
}

func TestGenerator_InvalidOrigin(t *testing.T) {
	resolver := imageurl.NewResolver("", "gallery-images", "")
	store := &mockStorage{}
	g := NewGenerator(resolver, store, Config{})

	assert.Equal(t, BlurDataURL, g.Generate(context.Background(), "https://abc.supabase.co/storage/v1/object/public/gallery-images/a.png"))
	assert.Equal(t, int32(0), store.calls)
}

func TestGenerator_HTTPStorageSingleFetch(t *testing.T) {
	data := gradientPNG(t, 80, 120)
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path != "/storage/v1/object/public/gallery-images/works/tall.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer server.Close()

	httpStorage, err := storage.NewHTTPStorage(storage.HTTPConfig{Origin: server.URL, Bucket: "gallery-images"})
	require.NoError(t, err)
	resolver := imageurl.NewResolver(server.URL, "gallery-images", "")
	g := NewGenerator(resolver, httpStorage, Config{})
	ctx := context.Background()

	preview := decodeDataURL(t, g.Generate(ctx, resolver.Resolve("works/tall.png")))
	assert.Equal(t, 10, preview.Bounds().Dx())
	assert.Equal(t, previewSize, preview.Bounds().Dy())
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	// 404 不重试
	assert.Equal(t, BlurDataURL, g.Generate(ctx, resolver.Resolve("works/gone.png")))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestGenerator_Concurrent(t *testing.T) {
	resolver := imageurl.NewResolver(testOrigin, "gallery-images", "")
	store := &mockStorage{objects: map[string][]byte{
		"works/a.png": gradientPNG(t, 40, 40),
		"works/b.png": gradientPNG(t, 90, 30),
	}}
	g := NewGenerator(resolver, store, Config{})

	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := "works/a.png"
			if i%2 == 1 {
				key = "works/b.png"
			}
			results[i] = g.Generate(context.Background(), resolver.Resolve(key))
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		assert.NotEqual(t, BlurDataURL, r)
		assert.Equal(t, results[i%2], r)
	}
}

func TestScaledSize(t *testing.T) {
	w, h := scaledSize(200, 150, 16)
	assert.Equal(t, []int{16, 12}, []int{w, h})

	w, h = scaledSize(10, 1000, 16)
	assert.Equal(t, []int{1, 16}, []int{w, h})
}
