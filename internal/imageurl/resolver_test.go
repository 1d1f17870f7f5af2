package imageurl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const origin = "https://abc.supabase.co"

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(origin+"/", "gallery-images", "/fallback-image.jpg")

	tests := []struct {
		name string
		path string
		want string
	}{
		{"valid", "works/2024/kioku.jpg", origin + "/storage/v1/object/public/gallery-images/works/2024/kioku.jpg"},
		{"valid flat", "a-b_c.1.png", origin + "/storage/v1/object/public/gallery-images/a-b_c.1.png"},
		{"empty", "", "/fallback-image.jpg"},
		{"parent segment", "../secret.png", "/fallback-image.jpg"},
		{"embedded parent", "works/../../x.png", "/fallback-image.jpg"},
		{"scheme injection", "https://evil.example/x.png", "/fallback-image.jpg"},
		{"query", "works/a.jpg?download=1", "/fallback-image.jpg"},
		{"space", "works/a b.jpg", "/fallback-image.jpg"},
		{"non ascii", "works/記憶.jpg", "/fallback-image.jpg"},
		{"leading slash", "/works/a.jpg", origin + "/storage/v1/object/public/gallery-images/works/a.jpg"},
		{"leading slashes", "//works/a.jpg", origin + "/storage/v1/object/public/gallery-images/works/a.jpg"},
		{"only slash", "/", "/fallback-image.jpg"},
		{"slash then parent", "/../a.jpg", "/fallback-image.jpg"},
		{"encoded", "works/%2e%2e/a.jpg", "/fallback-image.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.path))
		})
	}
}

func TestResolver_Defaults(t *testing.T) {
	r := NewResolver(origin, "", "")

	assert.Equal(t, DefaultFallback, r.Resolve(""))
	assert.Equal(t, origin+"/storage/v1/object/public/"+DefaultBucket+"/a.jpg", r.Resolve("a.jpg"))
	assert.Equal(t, DefaultFallback, r.Fallback())
	assert.Equal(t, origin, r.Origin())
}

func TestResolver_ObjectKey(t *testing.T) {
	r := NewResolver(origin, "gallery-images", "")

	key, ok := r.ObjectKey(r.Resolve("works/01.jpg"))
	assert.True(t, ok)
	assert.Equal(t, "works/01.jpg", key)

	_, ok = r.ObjectKey("https://evil.example/storage/v1/object/public/gallery-images/works/01.jpg")
	assert.False(t, ok)

	_, ok = r.ObjectKey(origin + "/storage/v1/object/public/other-bucket/works/01.jpg")
	assert.False(t, ok)

	_, ok = r.ObjectKey(r.Fallback())
	assert.False(t, ok)
}
