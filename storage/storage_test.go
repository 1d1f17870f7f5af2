package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidStoragePath(t *testing.T) {
	valid := []string{
		"works/2024/piece-01.jpg",
		"a.png",
		"Process_Images/step.1.webp",
	}
	for _, path := range valid {
		assert.True(t, IsValidStoragePath(path), path)
	}

	invalid := []string{
		"",
		"../secret.jpg",
		"works/../../etc/passwd",
		"works/..hidden.jpg",
		"/etc/passwd",
		"works/with space.jpg",
		"works/作品.jpg",
		"works/a.jpg?x=1",
		"works/a.jpg#frag",
		"https://evil.example/a.jpg",
		`works\a.jpg`,
		"works/%2e%2e/a.jpg",
	}
	for _, path := range invalid {
		assert.False(t, IsValidStoragePath(path), path)
	}
}

func TestHTTPStorage_Get(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		switch r.URL.Path {
		case "/storage/v1/object/public/gallery-images/works/01.jpg":
			w.Write([]byte("image-bytes"))
		case "/storage/v1/object/public/gallery-images/works/broken.jpg":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	s, err := NewHTTPStorage(HTTPConfig{Origin: server.URL + "/", Bucket: "gallery-images"})
	require.NoError(t, err)
	ctx := context.Background()

	assert.Equal(t, server.URL+"/storage/v1/object/public/gallery-images/works/01.jpg", s.ObjectURL("works/01.jpg"))

	body, err := s.GetWithContext(ctx, "works/01.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	body.Close()
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))

	_, err = s.GetWithContext(ctx, "works/missing.jpg")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = s.GetWithContext(ctx, "works/broken.jpg")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))

	// 非法路径不会发出请求
	before := atomic.LoadInt32(&hits)
	_, err = s.GetWithContext(ctx, "../admin")
	assert.Error(t, err)
	assert.Equal(t, before, atomic.LoadInt32(&hits))

	assert.NoError(t, s.Health(ctx))
	assert.Equal(t, "http", s.Name())
}

func TestHTTPStorage_RefusesForeignRedirect(t *testing.T) {
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("should not be reached"))
	}))
	defer foreign.Close()

	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, foreign.URL+"/steal", http.StatusFound)
	}))
	defer origin.Close()

	s, err := NewHTTPStorage(HTTPConfig{Origin: origin.URL, Bucket: "gallery-images"})
	require.NoError(t, err)

	_, err = s.GetWithContext(context.Background(), "works/01.jpg")
	assert.Error(t, err)
}

func TestNewHTTPStorage_InvalidConfig(t *testing.T) {
	_, err := NewHTTPStorage(HTTPConfig{Origin: "ftp://example.com", Bucket: "b"})
	assert.Error(t, err)

	_, err = NewHTTPStorage(HTTPConfig{Origin: "", Bucket: "b"})
	assert.Error(t, err)

	_, err = NewHTTPStorage(HTTPConfig{Origin: "https://example.com"})
	assert.Error(t, err)
}

func TestLocalStorage_Get(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tempDir, "works"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "works", "01.jpg"), []byte("local-bytes"), 0644))

	s, err := NewLocalStorage(tempDir)
	require.NoError(t, err)
	ctx := context.Background()

	body, err := s.GetWithContext(ctx, "works/01.jpg")
	require.NoError(t, err)
	data, _ := io.ReadAll(body)
	body.Close()
	assert.Equal(t, "local-bytes", string(data))

	_, err = s.GetWithContext(ctx, "works/02.jpg")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = s.GetWithContext(ctx, "../../../etc/passwd")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid")

	assert.NoError(t, s.Health(ctx))
}

func TestNewLocalStorage_MissingDirectory(t *testing.T) {
	_, err := NewLocalStorage(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
