package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"kurssite/internal/model"
	"kurssite/internal/service"
	serviceMocks "kurssite/internal/service/mocks"
	"kurssite/internal/storage"
	"kurssite/internal/view"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := newApp()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLiveness(t *testing.T) {
	app := newApp()
	app.Get("/healthz", Liveness())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStartPage(t *testing.T) {
	app := newApp()
	app.Get("/", StartPage())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	body := readBody(t, resp)
	assert.Equal(t, 1, strings.Count(body, view.HeaderHTML()))
	assert.Contains(t, body, "<title>AI Automations Kurs</title>")
}

func TestHeaderPartial(t *testing.T) {
	app := newApp()
	app.Get("/partials/header", HeaderPartial())

	first, _ := app.Test(httptest.NewRequest(http.MethodGet, "/partials/header", nil))
	second, _ := app.Test(httptest.NewRequest(http.MethodGet, "/partials/header", nil))

	assert.Equal(t, http.StatusOK, first.StatusCode)
	a, b := readBody(t, first), readBody(t, second)
	assert.Equal(t, view.HeaderHTML(), a)
	assert.Equal(t, a, b)
}

func TestBlogIndex(t *testing.T) {
	mockSvc := new(serviceMocks.MockBlogService)
	app := newApp()
	app.Get("/blog", BlogIndex(mockSvc, time.UTC))

	published := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	t.Run("first page", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, 10, 0).Return(&service.PostListResult{
			Items: []model.Post{{Slug: "hallo", Title: "Hallo", PublishedAt: published}},
			Total: 11,
		}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/blog", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := readBody(t, resp)
		assert.Contains(t, body, view.HeaderHTML())
		assert.Contains(t, body, `href="/blog/hallo"`)
		assert.Contains(t, body, `rel="next" href="/blog?page=2"`)
		assert.Contains(t, body, "<title>Blog | AI Automations Kurs</title>")
		mockSvc.AssertExpectations(t)
	})

	t.Run("second page uses offset", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, 10, 10).Return(&service.PostListResult{
			Items: []model.Post{{Slug: "alt", Title: "Alt", PublishedAt: published}},
			Total: 11,
		}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/blog?page=2", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, readBody(t, resp), `rel="prev" href="/blog"`)
		mockSvc.AssertExpectations(t)
	})

	t.Run("page past the end", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, 10, 40).Return(&service.PostListResult{Items: []model.Post{}, Total: 11}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/blog?page=5", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("invalid page", func(t *testing.T) {
		for _, q := range []string{"abc", "0", "-1"} {
			resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/blog?page="+q, nil))

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
			body := readBody(t, resp)
			assert.Contains(t, body, "Ungültige Anfrage")
			assert.Contains(t, body, view.HeaderHTML())
		}
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, 10, 0).Return(nil, errors.New("db down")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/blog", nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.NotContains(t, readBody(t, resp), "db down")
	})
}

func TestBlogPost(t *testing.T) {
	mockSvc := new(serviceMocks.MockBlogService)
	app := newApp()
	app.Get("/blog/:slug", BlogPost(mockSvc, time.UTC))

	t.Run("success", func(t *testing.T) {
		post := &model.Post{Slug: "hallo", Title: "Hallo Welt", BodyHTML: "<p>Inhalt</p>", CoverKey: "media/c.png"}
		mockSvc.On("Get", mock.Anything, "hallo").Return(post, nil).Once()
		mockSvc.On("CoverURL", *post).Return("/media/c.png").Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/blog/hallo", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := readBody(t, resp)
		assert.Contains(t, body, "<p>Inhalt</p>")
		assert.Contains(t, body, `src="/media/c.png"`)
		assert.Contains(t, body, "<title>Hallo Welt | AI Automations Kurs</title>")
		mockSvc.AssertExpectations(t)
	})

	t.Run("date in configured zone", func(t *testing.T) {
		berlin := time.FixedZone("CET", 60*60)
		zoned := newApp()
		zoned.Get("/blog/:slug", BlogPost(mockSvc, berlin))

		post := &model.Post{Slug: "spaet", Title: "Spät", BodyHTML: "<p>x</p>", PublishedAt: time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC)}
		mockSvc.On("Get", mock.Anything, "spaet").Return(post, nil).Once()
		mockSvc.On("CoverURL", *post).Return("").Once()

		resp, _ := zoned.Test(httptest.NewRequest(http.MethodGet, "/blog/spaet", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, readBody(t, resp), `datetime="2026-03-15">15.03.2026</time>`)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, "weg").Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/blog/weg", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		body := readBody(t, resp)
		assert.Contains(t, body, "Seite nicht gefunden")
		assert.Contains(t, body, view.HeaderHTML())
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, "kaputt").Return(nil, errors.New("db error")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/blog/kaputt", nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestMedia(t *testing.T) {
	mockSvc := new(serviceMocks.MockBlogService)
	app := newApp()
	app.Get("/media/:name", Media(mockSvc))

	t.Run("streams object", func(t *testing.T) {
		mockSvc.On("OpenMedia", mock.Anything, "media/a.png").Return(
			io.NopCloser(strings.NewReader("PNGDATA")),
			storage.ObjectInfo{Key: "media/a.png", Size: 7, ContentType: "image/png", ETag: "abc"},
			nil,
		).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/media/a.png", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
		assert.Equal(t, `"abc"`, resp.Header.Get("ETag"))
		assert.Contains(t, resp.Header.Get("Cache-Control"), "immutable")
		assert.Equal(t, "default-src 'none'; sandbox", resp.Header.Get("Content-Security-Policy"))
		assert.Equal(t, "PNGDATA", readBody(t, resp))
	})

	t.Run("missing", func(t *testing.T) {
		mockSvc.On("OpenMedia", mock.Anything, "media/x.png").Return(nil, storage.ObjectInfo{}, service.ErrMediaNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/media/x.png", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestPublishPost(t *testing.T) {
	mockSvc := new(serviceMocks.MockBlogService)
	app := newApp()
	app.Post("/api/posts", PublishPost(mockSvc))

	post := func(body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/api/posts", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		return resp
	}

	t.Run("success", func(t *testing.T) {
		in := service.PublishInput{Title: "Hallo", BodyHTML: "<p>x</p>"}
		mockSvc.On("Publish", mock.Anything, in).Return(&model.Post{ID: "id-1", Slug: "hallo"}, nil).Once()

		resp := post(`{"title":"Hallo","body_html":"<p>x</p>"}`)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, "/blog/hallo", resp.Header.Get("Location"))
		var got model.Post
		json.NewDecoder(resp.Body).Decode(&got)
		assert.Equal(t, "id-1", got.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid json", func(t *testing.T) {
		resp := post(`{`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_BODY", res.Error.Code)
	})

	t.Run("validation error", func(t *testing.T) {
		mockSvc.On("Publish", mock.Anything, service.PublishInput{}).Return(nil, errors.Join(service.ErrInvalidPost, errors.New("title is required"))).Once()

		resp := post(`{}`)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_POST", res.Error.Code)
	})

	t.Run("slug taken", func(t *testing.T) {
		in := service.PublishInput{Title: "Doppelt", BodyHTML: "<p>x</p>"}
		mockSvc.On("Publish", mock.Anything, in).Return(nil, service.ErrSlugTaken).Once()

		resp := post(`{"title":"Doppelt","body_html":"<p>x</p>"}`)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("service error", func(t *testing.T) {
		in := service.PublishInput{Title: "Kaputt", BodyHTML: "<p>x</p>"}
		mockSvc.On("Publish", mock.Anything, in).Return(nil, errors.New("db fail")).Once()

		resp := post(`{"title":"Kaputt","body_html":"<p>x</p>"}`)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INTERNAL_ERROR", res.Error.Code)
	})
}

func TestDeletePost(t *testing.T) {
	mockSvc := new(serviceMocks.MockBlogService)
	app := newApp()
	app.Delete("/api/posts/:slug", DeletePost(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, "hallo").Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/api/posts/hallo", nil))

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, "weg").Return(service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/api/posts/weg", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, "kaputt").Return(errors.New("delete error")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/api/posts/kaputt", nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func multipartImage(t *testing.T, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	part.Write(content)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadMedia(t *testing.T) {
	mockSvc := new(serviceMocks.MockBlogService)
	app := newApp()
	app.Post("/api/media", UploadMedia(mockSvc))

	t.Run("success", func(t *testing.T) {
		body, ct := multipartImage(t, "cover.png", "image/png", []byte("png"))
		media := &model.Media{Key: "media/id.png", URL: "/media/id.png", ContentType: "image/png", Size: 3}
		mockSvc.On("UploadMedia", mock.Anything, mock.Anything, "cover.png", "image/png", int64(3)).Return(media, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/media", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var got model.Media
		json.NewDecoder(resp.Body).Decode(&got)
		assert.Equal(t, "/media/id.png", got.URL)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/api/media", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_REQUIRED", res.Error.Code)
	})

	t.Run("unsupported type", func(t *testing.T) {
		body, ct := multipartImage(t, "doc.pdf", "application/pdf", []byte("pdf"))
		mockSvc.On("UploadMedia", mock.Anything, mock.Anything, "doc.pdf", "application/pdf", int64(3)).Return(nil, service.ErrUnsupportedMedia).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/media", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	})

	t.Run("service error", func(t *testing.T) {
		body, ct := multipartImage(t, "cover.png", "image/png", []byte("png"))
		mockSvc.On("UploadMedia", mock.Anything, mock.Anything, "cover.png", "image/png", int64(3)).Return(nil, errors.New("upload failed")).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/media", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestRouting(t *testing.T) {
	app := newApp()
	mockSvc := new(serviceMocks.MockBlogService)
	RegisterRoutes(app, Dependencies{Blog: mockSvc, AdminToken: "s3cret"})

	t.Run("header targets are routed", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, 10, 0).Return(&service.PostListResult{Items: []model.Post{}}, nil).Once()

		for _, link := range view.NavLinks() {
			resp, _ := app.Test(httptest.NewRequest(http.MethodGet, link.Href, nil))
			assert.Equal(t, http.StatusOK, resp.StatusCode, link.Href)
		}
	})

	t.Run("not found page", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/non-existent", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
		assert.Contains(t, readBody(t, resp), view.HeaderHTML())
	})

	t.Run("api not found is json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/non-existent", nil)
		req.Header.Set("Authorization", "Bearer s3cret")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("api requires token", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/api/posts", nil))

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "UNAUTHORIZED", res.Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/healthz", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Contains(t, readBody(t, resp), "Methode nicht erlaubt")
	})

	t.Run("metrics disabled without gatherer", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestErrorHandlerKeepsStatus(t *testing.T) {
	app := newApp()
	app.Post("/api/media", func(c *fiber.Ctx) error { return fiber.ErrRequestEntityTooLarge })
	app.Get("/api/teapot", func(c *fiber.Ctx) error { return fiber.ErrTeapot })
	app.Get("/limited", func(c *fiber.Ctx) error { return fiber.ErrTooManyRequests })
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.ErrTeapot })
	app.Get("/gateway", func(c *fiber.Ctx) error { return fiber.ErrBadGateway })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })

	t.Run("listed api status", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/api/media", nil))

		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "PAYLOAD_TOO_LARGE", res.Error.Code)
	})

	t.Run("unlisted api status", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/teapot", nil))

		assert.Equal(t, http.StatusTeapot, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "REQUEST_ERROR", res.Error.Code)
	})

	tests := []struct {
		path   string
		status int
		page   string
	}{
		{path: "/limited", status: http.StatusTooManyRequests, page: "Zu viele Anfragen"},
		{path: "/teapot", status: http.StatusTeapot, page: "Anfrage fehlgeschlagen"},
		{path: "/gateway", status: http.StatusBadGateway, page: "Interner Fehler"},
		{path: "/boom", status: http.StatusInternalServerError, page: "Interner Fehler"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, _ := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Contains(t, readBody(t, resp), tt.page)
		})
	}
}

func TestBodyLimitStatus(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(), BodyLimit: 64})
	app.Post("/api/media", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) })

	req := httptest.NewRequest(http.MethodPost, "/api/media", bytes.NewReader(bytes.Repeat([]byte("x"), 1024)))
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestSwaggerDocs(t *testing.T) {
	t.Run("served with the editor api", func(t *testing.T) {
		app := newApp()
		RegisterRoutes(app, Dependencies{Blog: new(serviceMocks.MockBlogService), AdminToken: "s3cret"})

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var doc struct {
			Paths map[string]json.RawMessage `json:"paths"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
		assert.Contains(t, doc.Paths, "/api/posts")
		assert.Contains(t, doc.Paths, "/api/posts/{slug}")
		assert.Contains(t, doc.Paths, "/api/media")
	})

	t.Run("absent without admin token", func(t *testing.T) {
		app := newApp()
		RegisterRoutes(app, Dependencies{Blog: new(serviceMocks.MockBlogService)})

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
