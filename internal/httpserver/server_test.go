package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/bookmarks-api/internal/domain"
	"github.com/MrSnakeDoc/bookmarks-api/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarks-api/internal/logger"
	"github.com/MrSnakeDoc/bookmarks-api/internal/store/memory"
)

const testToken = "s3cret-token"

func newTestRouter(t *testing.T, mutate ...func(*deps.Deps)) (http.Handler, *memory.Gateway) {
	t.Helper()
	gw := memory.New()
	d := deps.Deps{
		Logger:    logger.NewNop(),
		StartTime: time.Now(),
		TimeNow:   time.Now,
		APIToken:  testToken,
		Gateway:   gw,
		StoreName: "memory",
	}
	for _, m := range mutate {
		m(&d)
	}
	return NewRouter(d), gw
}

func do(t *testing.T, h http.Handler, method, target, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body: %s", rec.Body.String())
	return body.Error.Message
}

func TestCreateThenFetch(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/bookmarks",
		`{"title":"t","url":"https://test.com","description":"d","rating":1}`, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created domain.Bookmark
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, "/api/bookmarks/1", rec.Header().Get("Location"))

	rec = do(t, h, http.MethodGet, "/api/bookmarks/1", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched domain.Bookmark
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, created, fetched)
	assert.Equal(t, "t", fetched.Title)
	assert.Equal(t, "https://test.com", fetched.URL)
	require.NotNil(t, fetched.Description)
	assert.Equal(t, "d", *fetched.Description)
	assert.Equal(t, 1, fetched.Rating)
}

func TestCreateThenFetchKeepsPunctuation(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/bookmarks",
		`{"title":"Tom & Jerry's \"show\"","url":"https://a.com/?x=1&y=2","description":"fish & chips","rating":2}`, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created domain.Bookmark
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, `Tom & Jerry's "show"`, created.Title)
	assert.Equal(t, "https://a.com/?x=1&y=2", created.URL)

	for _, target := range []string{"/api/bookmarks/1", "/api/bookmarks"} {
		rec = do(t, h, http.MethodGet, target, "", true)
		require.Equal(t, http.StatusOK, rec.Code)

		var got domain.Bookmark
		if target == "/api/bookmarks" {
			var list []domain.Bookmark
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
			require.Len(t, list, 1)
			got = list[0]
		} else {
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		}
		assert.Equal(t, `Tom & Jerry's "show"`, got.Title, target)
		assert.Equal(t, "https://a.com/?x=1&y=2", got.URL, target)
		require.NotNil(t, got.Description)
		assert.Equal(t, "fish & chips", *got.Description, target)
	}
}

func TestListBookmarks(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/bookmarks", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	do(t, h, http.MethodPost, "/api/bookmarks", `{"title":"a","url":"https://a.example","rating":2}`, true)
	do(t, h, http.MethodPost, "/api/bookmarks", `{"title":"b","url":"https://b.example","rating":3}`, true)

	rec = do(t, h, http.MethodGet, "/api/bookmarks", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []domain.Bookmark
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Title)
	assert.Nil(t, list[0].Description)
	assert.Contains(t, rec.Body.String(), `"description":null`)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "missing everything", body: `{}`, want: "'title' is required"},
		{name: "missing url", body: `{"title":"t"}`, want: "'url' is required"},
		{name: "missing rating", body: `{"title":"t","url":"https://x.io"}`, want: "'rating' is required"},
		{name: "rating zero counts as missing", body: `{"title":"t","url":"https://x.io","rating":0}`, want: "'rating' is required"},
		{name: "rating too high", body: `{"title":"t","url":"https://x.io","rating":6}`, want: "'rating' must be a number between 1 and 5"},
		{name: "rating checked before url format", body: `{"title":"t","url":"nope","rating":9}`, want: "'rating' must be a number between 1 and 5"},
		{name: "bad url", body: `{"title":"t","url":"not a url","rating":3}`, want: "'url' must be a valid URL"},
		{name: "not an object", body: `[1,2]`, want: "request body must be a JSON object"},
		{name: "broken json", body: `{"title":`, want: "request body must be a JSON object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, gw := newTestRouter(t)
			rec := do(t, h, http.MethodPost, "/api/bookmarks", tt.body, true)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, errorMessage(t, rec))
			assert.Zero(t, gw.Count())
		})
	}
}

func TestCreateNeutralizesScript(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/bookmarks",
		`{"title":"<script>alert(1)</script>hi","url":"https://x.io","description":"<img src=x onerror=alert(1)>","rating":4}`, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	var b domain.Bookmark
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	assert.NotContains(t, b.Title, "<script")
	assert.Contains(t, b.Title, "hi")
	require.NotNil(t, b.Description)
	assert.NotContains(t, *b.Description, "onerror")
}

func TestUpdateBookmark(t *testing.T) {
	h, gw := newTestRouter(t)
	do(t, h, http.MethodPost, "/api/bookmarks", `{"title":"t","url":"https://test.com","description":"d","rating":1}`, true)

	t.Run("empty update", func(t *testing.T) {
		rec := do(t, h, http.MethodPatch, "/api/bookmarks/1", `{"unknown":"x"}`, true)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Request body must contain either 'title', 'url', 'description' or 'rating'", errorMessage(t, rec))
	})

	t.Run("invalid field", func(t *testing.T) {
		rec := do(t, h, http.MethodPatch, "/api/bookmarks/1", `{"rating":10}`, true)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("partial update keeps other fields", func(t *testing.T) {
		rec := do(t, h, http.MethodPatch, "/api/bookmarks/1", `{"title":"new"}`, true)
		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())

		b, err := gw.GetByID(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "new", b.Title)
		assert.Equal(t, "https://test.com", b.URL)
		require.NotNil(t, b.Description)
		assert.Equal(t, "d", *b.Description)
		assert.Equal(t, 1, b.Rating)
	})

	t.Run("unknown id", func(t *testing.T) {
		rec := do(t, h, http.MethodPatch, "/api/bookmarks/99", `{"title":"x"}`, true)
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Bookmark Not Found", errorMessage(t, rec))
	})
}

func TestDeleteBookmark(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodDelete, "/api/bookmarks/1", "", true)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Bookmark Not Found", errorMessage(t, rec))

	do(t, h, http.MethodPost, "/api/bookmarks", `{"title":"t","url":"https://test.com","rating":1}`, true)

	rec = do(t, h, http.MethodDelete, "/api/bookmarks/1", "", true)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/bookmarks/1", "", true)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetBookmarkBadID(t *testing.T) {
	h, _ := newTestRouter(t)
	for _, id := range []string{"abc", "0", "-1", "1.5"} {
		rec := do(t, h, http.MethodGet, "/api/bookmarks/"+id, "", true)
		assert.Equal(t, http.StatusNotFound, rec.Code, "id %q", id)
	}
}

func TestUnauthorizedOnEveryRoute(t *testing.T) {
	routes := []struct {
		method, target, body string
	}{
		{http.MethodGet, "/api/bookmarks", ""},
		{http.MethodGet, "/api/bookmarks/1", ""},
		{http.MethodPost, "/api/bookmarks", `{"title":"x","url":"https://x.io","rating":2}`},
		{http.MethodPatch, "/api/bookmarks/1", `{"title":"changed"}`},
		{http.MethodDelete, "/api/bookmarks/1", ""},
		{http.MethodGet, "/api/unknown", ""},
	}
	headers := map[string]string{
		"missing":      "",
		"wrong token":  "Bearer nope",
		"no separator": "Bearer" + testToken,
		"token only":   testToken,
	}

	for _, rt := range routes {
		for name, header := range headers {
			t.Run(rt.method+" "+rt.target+" "+name, func(t *testing.T) {
				h, gw := newTestRouter(t)
				_, err := gw.Insert(context.Background(), domain.Draft{Title: "orig", URL: "https://o.io", Rating: 3})
				require.NoError(t, err)

				req := httptest.NewRequest(rt.method, rt.target, strings.NewReader(rt.body))
				if header != "" {
					req.Header.Set("Authorization", header)
				}
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, req)

				require.Equal(t, http.StatusUnauthorized, rec.Code)
				assert.JSONEq(t, `{"error":"Unauthorized request"}`, rec.Body.String())

				b, err := gw.GetByID(context.Background(), 1)
				require.NoError(t, err)
				assert.Equal(t, "orig", b.Title)
				assert.Equal(t, 1, gw.Count())
			})
		}
	}
}

func TestUnknownRouteIsJSON(t *testing.T) {
	h, _ := newTestRouter(t)
	for _, target := range []string{"/api/nothing-here", "/foo", "/"} {
		rec := do(t, h, http.MethodGet, target, "", true)
		require.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.Equal(t, "Not Found", errorMessage(t, rec))
	}
}

func TestUnknownRootPathRequiresToken(t *testing.T) {
	h, _ := newTestRouter(t)
	for _, target := range []string{"/foo", "/", "/bookmarks"} {
		rec := do(t, h, http.MethodGet, target, "", false)
		require.Equal(t, http.StatusUnauthorized, rec.Code, target)
		assert.JSONEq(t, `{"error":"Unauthorized request"}`, rec.Body.String())
	}

	// Infra endpoints stay outside the guard.
	rec := do(t, h, http.MethodGet, "/healthz", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInfraEndpoints(t *testing.T) {
	h, _ := newTestRouter(t)

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		rec := do(t, h, http.MethodGet, path, "", false)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := do(t, h, http.MethodGet, "/readyz", "", false)
	assert.JSONEq(t, `{"ready":true,"components":{"store":{"ok":true,"mode":"memory"},"cache":{"ok":true,"mode":"disabled"}}}`, rec.Body.String())
}

func TestInfraEndpointsRestrictedByCIDR(t *testing.T) {
	h, _ := newTestRouter(t, func(d *deps.Deps) { d.AllowedCIDRS = []string{"10.0.0.0/8"} })

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "192.168.1.2:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "10.1.1.1:1234"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSecurityHeaders(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := do(t, h, http.MethodGet, "/api/bookmarks", "", true)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestCORSPreflightSkipsGuard(t *testing.T) {
	h, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/bookmarks", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	h, _ := newTestRouter(t, func(d *deps.Deps) {
		d.RateLimit = deps.RateLimit{Burst: 2, PerMinute: 1}
	})

	for i := 0; i < 2; i++ {
		rec := do(t, h, http.MethodGet, "/api/bookmarks", "", true)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := do(t, h, http.MethodGet, "/api/bookmarks", "", true)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "Too Many Requests", errorMessage(t, rec))
}
