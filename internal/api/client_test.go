package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propadmin/internal/api/metrics"
	dErrors "propadmin/pkg/domain-errors"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(srv.URL, opts...)
	require.NoError(t, err)
	return client, srv
}

func setCSRFCookie(t *testing.T, c *Client, value string) {
	t.Helper()
	c.jar.SetCookies(c.baseURL, []*http.Cookie{{Name: CSRFCookieName, Value: value}})
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := New("localhost:9000")
	assert.Error(t, err)
}

func TestCSRFHeaderInjection(t *testing.T) {
	var got struct {
		header string
		ok     bool
	}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.header = r.Header.Get(CSRFHeaderName)
		_, got.ok = r.Header[CSRFHeaderName]
		w.WriteHeader(http.StatusOK)
	})

	t.Run("mutating request carries the cookie value", func(t *testing.T) {
		client, _ := newTestClient(t, handler)
		setCSRFCookie(t, client, "abc123")

		require.NoError(t, client.do(context.Background(), http.MethodPost, "/x", nil, struct{}{}, nil))
		assert.Equal(t, "abc123", got.header)
	})

	t.Run("all mutating methods carry it", func(t *testing.T) {
		client, _ := newTestClient(t, handler)
		setCSRFCookie(t, client, "abc123")

		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
			require.NoError(t, client.do(context.Background(), method, "/x", nil, struct{}{}, nil))
			assert.Equal(t, "abc123", got.header, "method %s", method)
		}
	})

	t.Run("GET never carries it", func(t *testing.T) {
		client, _ := newTestClient(t, handler)
		setCSRFCookie(t, client, "abc123")

		require.NoError(t, client.do(context.Background(), http.MethodGet, "/x", nil, nil, nil))
		assert.False(t, got.ok)
	})

	t.Run("absent cookie sends no header", func(t *testing.T) {
		client, _ := newTestClient(t, handler)

		require.NoError(t, client.do(context.Background(), http.MethodPost, "/x", nil, struct{}{}, nil))
		assert.False(t, got.ok)
	})

	t.Run("cookie is read fresh per request", func(t *testing.T) {
		client, _ := newTestClient(t, handler)
		setCSRFCookie(t, client, "first")
		require.NoError(t, client.do(context.Background(), http.MethodPost, "/x", nil, struct{}{}, nil))
		assert.Equal(t, "first", got.header)

		// Server rotation shows up on the very next request.
		setCSRFCookie(t, client, "second")
		require.NoError(t, client.do(context.Background(), http.MethodPost, "/x", nil, struct{}{}, nil))
		assert.Equal(t, "second", got.header)
	})
}

func TestUnauthorizedDispatch(t *testing.T) {
	t.Run("handler invoked once with server message", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "token revoked"})
		})

		var calls []AuthError
		client, _ := newTestClient(t, handler, WithAuthErrorHandler(func(e AuthError) {
			calls = append(calls, e)
		}))

		err := client.do(context.Background(), http.MethodGet, "/x", nil, nil, nil)

		// The rejection still propagates to the caller.
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

		require.Len(t, calls, 1)
		assert.Equal(t, AuthErrorUnauthorized, calls[0].Kind)
		assert.Equal(t, "token revoked", calls[0].Message)
	})

	t.Run("default message when body has none", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		var got AuthError
		client, _ := newTestClient(t, handler, WithAuthErrorHandler(func(e AuthError) { got = e }))

		_ = client.do(context.Background(), http.MethodGet, "/x", nil, nil, nil)
		assert.Equal(t, "Session expired. Please log in again.", got.Message)
	})

	t.Run("no handler registered is fine", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		client, _ := newTestClient(t, handler)

		err := client.do(context.Background(), http.MethodGet, "/x", nil, nil, nil)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("SetAuthErrorHandler replaces and unregisters", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		var first, second int
		client, _ := newTestClient(t, handler, WithAuthErrorHandler(func(AuthError) { first++ }))

		client.SetAuthErrorHandler(func(AuthError) { second++ })
		_ = client.do(context.Background(), http.MethodGet, "/x", nil, nil, nil)
		assert.Equal(t, 0, first)
		assert.Equal(t, 1, second)

		client.SetAuthErrorHandler(nil)
		_ = client.do(context.Background(), http.MethodGet, "/x", nil, nil, nil)
		assert.Equal(t, 1, second)
	})
}

func TestForbiddenDispatch(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"message": "admins only"})
	})

	var got AuthError
	client, _ := newTestClient(t, handler, WithAuthErrorHandler(func(e AuthError) { got = e }))

	err := client.do(context.Background(), http.MethodGet, "/x", nil, nil, nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	assert.Equal(t, AuthErrorForbidden, got.Kind)
	assert.Equal(t, "admins only", got.Message)
}

func TestTimeoutIsNotAnAuthError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	dispatched := false
	client, _ := newTestClient(t, handler,
		WithTimeout(20*time.Millisecond),
		WithAuthErrorHandler(func(AuthError) { dispatched = true }),
	)

	err := client.do(context.Background(), http.MethodGet, "/slow", nil, nil, nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	assert.False(t, dispatched)
}

func TestAccountLockedError(t *testing.T) {
	until := time.Now().Add(14 * time.Minute).UTC().Truncate(time.Second)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusLocked)
		json.NewEncoder(w).Encode(map[string]any{
			"message":      "Account locked due to repeated failures",
			"code":         "ACCOUNT_LOCKED",
			"lockoutUntil": until,
		})
	})
	client, _ := newTestClient(t, handler)

	_, err := client.Login(context.Background(), "ann@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeAccountLocked))

	var lockout *LockoutError
	require.ErrorAs(t, err, &lockout)
	assert.Equal(t, until, lockout.Until)
	assert.Equal(t, 14, lockout.MinutesRemaining(until.Add(-14*time.Minute)))
	assert.Equal(t, 0, lockout.MinutesRemaining(until.Add(time.Minute)))
}

func TestFetchCSRFToken(t *testing.T) {
	t.Run("returns token and stores cookie", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.SetCookie(w, &http.Cookie{Name: CSRFCookieName, Value: "fresh", Path: "/"})
			json.NewEncoder(w).Encode(map[string]string{"csrfToken": "fresh"})
		})
		client, _ := newTestClient(t, handler)

		assert.Equal(t, "fresh", client.FetchCSRFToken(context.Background()))

		got, ok := clientCSRFCookie(client)
		assert.True(t, ok)
		assert.Equal(t, "fresh", got)
	})

	t.Run("failure is non-fatal", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		client, _ := newTestClient(t, handler)

		assert.Equal(t, "", client.FetchCSRFToken(context.Background()))
	})
}

func clientCSRFCookie(c *Client) (string, bool) {
	for _, ck := range c.jar.Cookies(c.baseURL) {
		if ck.Name == CSRFCookieName {
			return ck.Value, true
		}
	}
	return "", false
}

func TestRequestMetadata(t *testing.T) {
	var requestID, ua string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = r.Header.Get("X-Request-ID")
		ua = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	})
	client, _ := newTestClient(t, handler)

	require.NoError(t, client.do(context.Background(), http.MethodGet, "/x", nil, nil, nil))
	assert.NotEmpty(t, requestID)
	assert.Equal(t, defaultUserAgent, ua)
}

func TestMetricsRecorded(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	reg := prometheus.NewRegistry()
	client, _ := newTestClient(t, handler, WithMetrics(metrics.New(reg)))

	_ = client.do(context.Background(), http.MethodGet, "/x", nil, nil, nil)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["propadmin_api_requests_total"])
	assert.True(t, names["propadmin_api_auth_errors_total"])
}

func TestQueryParams(t *testing.T) {
	var gotQuery url.Values
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(map[string]any{"users": []any{}})
	})
	client, _ := newTestClient(t, handler)

	params := url.Values{"page": {"2"}, "search": {"ann"}}
	_, err := client.ListUsers(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, "2", gotQuery.Get("page"))
	assert.Equal(t, "ann", gotQuery.Get("search"))
}
