package cookies

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		cookie     string
		want       string
		wantExists bool
	}{
		{
			name:       "single cookie",
			raw:        "csrf_token=abc123",
			cookie:     "csrf_token",
			want:       "abc123",
			wantExists: true,
		},
		{
			name:       "multiple cookies",
			raw:        "session=s1; csrf_token=abc123; theme=dark",
			cookie:     "csrf_token",
			want:       "abc123",
			wantExists: true,
		},
		{
			name:       "value containing equals sign",
			raw:        "session=s1; csrf_token=abc=123==; theme=dark",
			cookie:     "csrf_token",
			want:       "abc=123==",
			wantExists: true,
		},
		{
			name:       "url encoded value",
			raw:        "csrf_token=a%2Fb%3Dc",
			cookie:     "csrf_token",
			want:       "a/b=c",
			wantExists: true,
		},
		{
			name:       "absent cookie",
			raw:        "session=s1; theme=dark",
			cookie:     "csrf_token",
			wantExists: false,
		},
		{
			name:       "empty string",
			raw:        "",
			cookie:     "csrf_token",
			wantExists: false,
		},
		{
			name:       "name is a prefix of another cookie",
			raw:        "csrf_token_old=zzz; csrf_token=abc",
			cookie:     "csrf_token",
			want:       "abc",
			wantExists: true,
		},
		{
			name:       "empty value still counts as present",
			raw:        "csrf_token=; theme=dark",
			cookie:     "csrf_token",
			want:       "",
			wantExists: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Value(tt.raw, tt.cookie)
			assert.Equal(t, tt.wantExists, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromJar(t *testing.T) {
	base, err := url.Parse("http://localhost:9000")
	require.NoError(t, err)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	jar.SetCookies(base, []*http.Cookie{
		{Name: "csrf_token", Value: "tok-1"},
		{Name: "theme", Value: "dark"},
	})

	t.Run("present", func(t *testing.T) {
		got, ok := FromJar(jar, base, "csrf_token")
		assert.True(t, ok)
		assert.Equal(t, "tok-1", got)
	})

	t.Run("absent", func(t *testing.T) {
		_, ok := FromJar(jar, base, "missing")
		assert.False(t, ok)
	})

	t.Run("nil jar", func(t *testing.T) {
		_, ok := FromJar(nil, base, "csrf_token")
		assert.False(t, ok)
	})
}

func TestFromRequest(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://localhost:9000/", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "abc123"})

	got, ok := FromRequest(req, "csrf_token")
	assert.True(t, ok)
	assert.Equal(t, "abc123", got)

	_, ok = FromRequest(req, "other")
	assert.False(t, ok)
}
