package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"kurssite/internal/model"
	"kurssite/internal/repository"
)

// PostPostgres is a PostgreSQL implementation of repository.PostRepository.
type PostPostgres struct {
	db *sql.DB
}

// NewPostPostgres creates a new PostPostgres repository.
func NewPostPostgres(db *sql.DB) *PostPostgres {
	return &PostPostgres{db: db}
}

var _ repository.PostRepository = (*PostPostgres)(nil)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

const postColumns = `id, slug, title, summary, body_html, cover_key, published_at, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (*model.Post, error) {
	var (
		p     model.Post
		cover sql.NullString
	)
	if err := s.Scan(
		&p.ID,
		&p.Slug,
		&p.Title,
		&p.Summary,
		&p.BodyHTML,
		&cover,
		&p.PublishedAt,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	p.CoverKey = cover.String
	return &p, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Create inserts a new post row and returns the stored record.
func (r *PostPostgres) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	const q = `
		INSERT INTO posts (` + postColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + postColumns
	row := r.db.QueryRowContext(ctx, q,
		post.ID,
		post.Slug,
		post.Title,
		post.Summary,
		post.BodyHTML,
		nullable(post.CoverKey),
		post.PublishedAt,
		post.CreatedAt,
	)
	stored, err := scanPost(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: %s", repository.ErrDuplicate, pgErr.ConstraintName)
		}
		return nil, err
	}
	return stored, nil
}

// FindBySlug fetches a single post by slug.
func (r *PostPostgres) FindBySlug(ctx context.Context, slug string) (*model.Post, error) {
	const q = `
		SELECT ` + postColumns + `
		FROM posts
		WHERE slug = $1
	`
	return scanPost(r.db.QueryRowContext(ctx, q, slug))
}

// ListPublished returns published posts using LIMIT/OFFSET pagination and a total count.
func (r *PostPostgres) ListPublished(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Post], error) {
	const qCount = `SELECT COUNT(*) FROM posts WHERE published_at <= now()`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + postColumns + `
		FROM posts
		WHERE published_at <= now()
		ORDER BY published_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Post]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a post by ID. It does not return an error if the row does not exist.
func (r *PostPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
