package model

import "time"

// Post is a published blog article.
// BodyHTML is sanitized before it is stored and is rendered without escaping.
type Post struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	BodyHTML    string    `json:"body_html"`
	CoverKey    string    `json:"cover_key,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Media describes an uploaded object served under /media.
type Media struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}
