package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"kurssite/internal/http/handler"
	"kurssite/internal/http/middleware"
	"kurssite/internal/logging"
	"kurssite/internal/model"
	"kurssite/internal/service"
	serviceMocks "kurssite/internal/service/mocks"
	"kurssite/internal/view"
)

func TestNew(t *testing.T) {
	var logs bytes.Buffer
	reg := prometheus.NewRegistry()
	blog := new(serviceMocks.MockBlogService)

	app, err := New(Options{
		Logger:     logging.New(&logs, "info", time.UTC),
		Registerer: reg,
		Deps: handler.Dependencies{
			Blog:     blog,
			Gatherer: reg,
		},
	})
	require.NoError(t, err)

	t.Run("every page carries the header", func(t *testing.T) {
		blog.On("List", mock.Anything, 10, 0).Return(&service.PostListResult{Items: []model.Post{}}, nil)

		for _, path := range []string{"/", "/blog", "/gibt-es-nicht"} {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
			require.NoError(t, err)

			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, 1, strings.Count(string(body), view.HeaderHTML()), path)
			assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader), path)
			assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"), path)
		}
	})

	t.Run("requests are logged", func(t *testing.T) {
		line := strings.SplitN(strings.TrimSpace(logs.String()), "\n", 2)[0]
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		assert.Equal(t, "http_request", entry["msg"])
		assert.Equal(t, "/", entry["path"])
	})

	t.Run("metrics are exposed", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), `http_requests_total{method="GET",path="/blog",status="200"} 1`)
	})

	t.Run("api disabled without admin token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
		req.Header.Set("Authorization", "Bearer x")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestNewDuplicateMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(Options{Registerer: reg})
	require.NoError(t, err)

	_, err = New(Options{Registerer: reg})
	assert.ErrorContains(t, err, "register metrics")
}
