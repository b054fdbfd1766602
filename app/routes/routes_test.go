package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"postsapi/app/controllers"
	"postsapi/app/metrics"
	"postsapi/app/models"
	"postsapi/app/repositories"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) http.Handler {
	t.Helper()
	db, err := repositories.OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return SetupRoutes(Dependencies{
		Posts:       controllers.NewPostController(repositories.NewBadgerCollection(db, models.PostSchema)),
		Comments:    controllers.NewCommentController(repositories.NewBadgerCollection(db, models.CommentSchema)),
		Metrics:     metrics.New(),
		Logger:      zerolog.Nop(),
		CORSOrigins: []string{"*"},
	})
}

func performRequest(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestStatusRoute(t *testing.T) {
	router := setupTestRouter(t)

	w := performRequest(t, router, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, map[string]string{"message": StatusMessage}, decode[map[string]string](t, w))
}

func TestPostLifecycle(t *testing.T) {
	router := setupTestRouter(t)

	w := performRequest(t, router, http.MethodPost, "/post", map[string]string{
		"title":   "My First Post",
		"content": "This is the content of my first post",
		"sender":  "user123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[map[string]any](t, w)
	id, _ := created["_id"].(string)
	require.NotEmpty(t, id)
	require.NotEmpty(t, created["createdAt"])
	assert.Equal(t, "/post/"+id, w.Header().Get("Location"))

	w = performRequest(t, router, http.MethodGet, "/post/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created, decode[map[string]any](t, w))

	w = performRequest(t, router, http.MethodPut, "/post/"+id, map[string]string{"title": "Edited"})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[map[string]any](t, w)
	assert.Equal(t, "Edited", updated["title"])
	assert.Equal(t, created["content"], updated["content"])
	assert.Equal(t, created["createdAt"], updated["createdAt"])

	w = performRequest(t, router, http.MethodDelete, "/post/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Resource deleted successfully", decode[map[string]string](t, w)["message"])

	w = performRequest(t, router, http.MethodGet, "/post/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Resource not found", decode[map[string]string](t, w)["error"])

	w = performRequest(t, router, http.MethodDelete, "/post/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostValidation(t *testing.T) {
	router := setupTestRouter(t)

	w := performRequest(t, router, http.MethodPost, "/post", map[string]string{
		"content": "no title",
		"sender":  "user123",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["error"], "title is required")

	w = performRequest(t, router, http.MethodGet, "/post", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]\n", w.Body.String())
}

func TestCommentsFilteredByPost(t *testing.T) {
	router := setupTestRouter(t)

	for _, c := range []map[string]string{
		{"content": "first on a", "postId": "a", "sender": "u1"},
		{"content": "only on b", "postId": "b", "sender": "u2"},
		{"content": "second on a", "postId": "a", "sender": "u3"},
	} {
		require.Equal(t, http.StatusCreated, performRequest(t, router, http.MethodPost, "/comment", c).Code)
	}

	w := performRequest(t, router, http.MethodGet, "/comment?postId=a", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]map[string]any](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, "first on a", list[0]["content"])
	assert.Equal(t, "second on a", list[1]["content"])
	assert.NotContains(t, list[0], "createdAt")

	w = performRequest(t, router, http.MethodGet, "/comment", nil)
	assert.Len(t, decode[[]map[string]any](t, w), 3)

	w = performRequest(t, router, http.MethodGet, "/post", nil)
	assert.Empty(t, decode[[]map[string]any](t, w))
}

func TestCommentUpdateAndDelete(t *testing.T) {
	router := setupTestRouter(t)

	w := performRequest(t, router, http.MethodPost, "/comment", map[string]string{
		"content": "Nice post", "postId": "p1", "sender": "u1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[map[string]any](t, w)["_id"].(string)

	w = performRequest(t, router, http.MethodPut, "/comment/"+id, map[string]string{"content": "Edited"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Edited", decode[map[string]any](t, w)["content"])

	w = performRequest(t, router, http.MethodDelete, "/comment/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(t, router, http.MethodGet, "/comment", nil)
	assert.Empty(t, decode[[]map[string]any](t, w))
}

func TestUnknownRoutes(t *testing.T) {
	router := setupTestRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantError  string
	}{
		{name: "unknown path", method: http.MethodGet, path: "/posts", wantStatus: http.StatusNotFound, wantError: "Route not found"},
		{name: "nested unknown path", method: http.MethodGet, path: "/post/1/comments", wantStatus: http.StatusNotFound, wantError: "Route not found"},
		{name: "wrong method", method: http.MethodPatch, path: "/post/1", wantStatus: http.StatusMethodNotAllowed, wantError: "Method not allowed"},
		{name: "delete collection", method: http.MethodDelete, path: "/comment", wantStatus: http.StatusMethodNotAllowed, wantError: "Method not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(t, router, tt.method, tt.path, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantError, decode[map[string]string](t, w)["error"])
		})
	}
}

func TestCrossCuttingHeaders(t *testing.T) {
	router := setupTestRouter(t)

	w := performRequest(t, router, http.MethodGet, "/post", nil)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Headers"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodOptions, "/post", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestMetricsRoute(t *testing.T) {
	router := setupTestRouter(t)

	performRequest(t, router, http.MethodGet, "/post", nil)
	performRequest(t, router, http.MethodGet, "/post/missing", nil)

	w := performRequest(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, strings.HasPrefix(w.Header().Get("Content-Type"), "application/json"))

	body := w.Body.String()
	assert.Contains(t, body, `postsapi_http_requests_total{method="GET",route="/post",status="200"} 1`)
	assert.Contains(t, body, `postsapi_http_requests_total{method="GET",route="/post/{id}",status="404"} 1`)
}
