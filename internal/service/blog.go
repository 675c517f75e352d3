package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"kurssite/internal/model"
	"kurssite/internal/repository"
	"kurssite/internal/storage"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50

	// MediaPrefix is the object key prefix for uploaded media. Keys are served
	// at "/" + key.
	MediaPrefix = "media/"

	sniffLen = 512
)

// imageTypes are the accepted upload types and the key extension for each.
// Only raster formats: media is served from the site origin.
var imageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

var (
	ErrSlugRequired     = errors.New("slug is required")
	ErrNotFound         = errors.New("post not found")
	ErrSlugTaken        = errors.New("slug already exists")
	ErrInvalidPost      = errors.New("invalid post")
	ErrReaderNil        = errors.New("reader is nil")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrMediaNotFound    = errors.New("media not found")
)

// PostListResult is the service-level DTO for a page of posts.
type PostListResult struct {
	Items  []model.Post `json:"data"`
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// PublishInput carries the fields an editor supplies for a new post.
// Slug is derived from Title when empty; PublishedAt defaults to now.
type PublishInput struct {
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Summary     string    `json:"summary"`
	BodyHTML    string    `json:"body_html"`
	CoverKey    string    `json:"cover_key"`
	PublishedAt time.Time `json:"published_at"`
}

// BlogService defines the use cases behind the blog pages and the editor API.
type BlogService interface {
	// List returns published posts using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*PostListResult, error)

	// Get returns a single published post by slug. Posts scheduled for a later
	// date are reported as ErrNotFound until then.
	Get(ctx context.Context, slug string) (*model.Post, error)

	// Publish validates, sanitizes and stores a new post.
	Publish(ctx context.Context, in PublishInput) (*model.Post, error)

	// Delete removes a post and its cover object.
	Delete(ctx context.Context, slug string) error

	// UploadMedia stores a PNG, JPEG, GIF or WebP image under MediaPrefix with
	// a generated name. The stored content type is sniffed from the data.
	UploadMedia(ctx context.Context, r io.Reader, filename, contentType string, size int64) (*model.Media, error)

	// OpenMedia streams a stored media object.
	OpenMedia(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error)

	// CoverURL is the public URL of the post's cover image, or "".
	CoverURL(post model.Post) string
}

type blogService struct {
	store  storage.Storage
	repo   repository.PostRepository
	policy *bluemonday.Policy
	now    func() time.Time
}

// NewBlogService constructs a new BlogService.
func NewBlogService(store storage.Storage, repo repository.PostRepository) BlogService {
	return &blogService{
		store:  store,
		repo:   repo,
		policy: bluemonday.UGCPolicy(),
		now:    time.Now,
	}
}

// MediaURL maps an object key to the path it is served at.
func MediaURL(key string) string {
	if key == "" {
		return ""
	}
	return "/" + key
}

// validMediaKey accepts keys produced by UploadMedia only.
func validMediaKey(key string) bool {
	if !strings.HasPrefix(key, MediaPrefix) {
		return false
	}
	name := strings.TrimPrefix(key, MediaPrefix)
	return name != "" && !strings.Contains(name, "/") && !strings.Contains(name, "..")
}

func (s *blogService) List(ctx context.Context, limit, offset int) (*PostListResult, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.ListPublished(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &PostListResult{Items: res.Items, Total: res.Total, Limit: limit, Offset: offset}, nil
}

func (s *blogService) Get(ctx context.Context, slug string) (*model.Post, error) {
	post, err := s.find(ctx, slug)
	if err != nil {
		return nil, err
	}
	if post.PublishedAt.After(s.now()) {
		return nil, ErrNotFound
	}
	return post, nil
}

// find looks a post up by slug regardless of its publish date.
func (s *blogService) find(ctx context.Context, slug string) (*model.Post, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrSlugRequired
	}
	post, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *blogService) Publish(ctx context.Context, in PublishInput) (*model.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidPost)
	}

	body := strings.TrimSpace(s.policy.Sanitize(in.BodyHTML))
	if body == "" {
		return nil, fmt.Errorf("%w: body is required", ErrInvalidPost)
	}

	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if !validSlug(slug) {
		return nil, fmt.Errorf("%w: invalid slug %q", ErrInvalidPost, slug)
	}

	if in.CoverKey != "" && !validMediaKey(in.CoverKey) {
		return nil, fmt.Errorf("%w: invalid cover key", ErrInvalidPost)
	}

	if _, err := s.repo.FindBySlug(ctx, slug); err == nil {
		return nil, ErrSlugTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check slug: %w", err)
	}

	now := s.now().UTC()
	publishedAt := in.PublishedAt.UTC()
	if in.PublishedAt.IsZero() {
		publishedAt = now
	}

	post := &model.Post{
		ID:          uuid.New().String(),
		Slug:        slug,
		Title:       title,
		Summary:     strings.TrimSpace(in.Summary),
		BodyHTML:    body,
		CoverKey:    in.CoverKey,
		PublishedAt: publishedAt,
		CreatedAt:   now,
	}
	stored, err := s.repo.Create(ctx, post)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

// Delete removes the cover object first; if that fails the row is kept so the
// reference is not lost.
func (s *blogService) Delete(ctx context.Context, slug string) error {
	post, err := s.find(ctx, slug)
	if err != nil {
		return err
	}
	if post.CoverKey != "" {
		if err := s.store.Delete(ctx, post.CoverKey); err != nil {
			return fmt.Errorf("delete storage: %w", err)
		}
	}
	return s.repo.Delete(ctx, post.ID)
}

func (s *blogService) UploadMedia(ctx context.Context, r io.Reader, filename, contentType string, size int64) (*model.Media, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrUnsupportedMedia
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	detected := http.DetectContentType(head)
	ext, ok := imageTypes[detected]
	if !ok {
		return nil, ErrUnsupportedMedia
	}

	key := MediaPrefix + uuid.New().String() + ext
	info, err := s.store.Put(ctx, key, io.MultiReader(bytes.NewReader(head), r), storage.PutObjectOptions{
		Size:        size,
		ContentType: detected,
		Metadata: map[string]string{
			"original-filename": filename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	return &model.Media{
		Key:         info.Key,
		URL:         MediaURL(info.Key),
		ContentType: info.ContentType,
		Size:        info.Size,
	}, nil
}

func (s *blogService) OpenMedia(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	if !validMediaKey(key) {
		return nil, storage.ObjectInfo{}, ErrMediaNotFound
	}
	rc, info, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, storage.ObjectInfo{}, ErrMediaNotFound
		}
		return nil, storage.ObjectInfo{}, err
	}
	return rc, info, nil
}

func (s *blogService) CoverURL(post model.Post) string {
	return MediaURL(post.CoverKey)
}
