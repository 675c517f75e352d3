package view

import (
	"context"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"kurssite/internal/model"
)

const dateLayout = "02.01.2006"

// writeDate renders t as a <time> element in loc; nil means UTC.
func writeDate(hw *htmlWriter, t time.Time, loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	hw.raw(`<time class="text-sm text-zinc-500"`)
	hw.attr("datetime", t.Format("2006-01-02"))
	hw.raw(`>`)
	hw.text(t.Format(dateLayout))
	hw.raw(`</time>`)
}

// Pagination describes the position of a blog index page. Page is 1-based.
type Pagination struct {
	Page       int
	TotalPages int
}

// NewPagination derives the page count from a total row count.
func NewPagination(page, perPage, total int) Pagination {
	if page < 1 {
		page = 1
	}
	pages := 1
	if perPage > 0 && total > 0 {
		pages = (total + perPage - 1) / perPage
	}
	return Pagination{Page: page, TotalPages: pages}
}

func (p Pagination) HasPrev() bool { return p.Page > 1 }
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

// PageURL is the blog index URL for page n.
func PageURL(n int) string {
	if n <= 1 {
		return BlogPath
	}
	return BlogPath + "?page=" + strconv.Itoa(n)
}

// PostURL is the canonical URL of a post.
func PostURL(slug string) string {
	return BlogPath + "/" + slug
}

// BlogIndex lists posts newest first with previous/next links. Dates are
// shown in loc.
func BlogIndex(posts []model.Post, page Pagination, loc *time.Location) templ.Component {
	return component(func(_ context.Context, hw *htmlWriter) {
		hw.raw(`<section class="space-y-8"><h1 class="text-3xl font-bold">`)
		hw.text("Blog")
		hw.raw(`</h1>`)

		if len(posts) == 0 {
			hw.raw(`<p class="text-zinc-500">`)
			hw.text("Noch keine Beiträge.")
			hw.raw(`</p>`)
		} else {
			hw.raw(`<ul class="space-y-6">`)
			for _, p := range posts {
				hw.raw(`<li><article><h2 class="text-xl font-semibold"><a`)
				hw.href(PostURL(p.Slug))
				hw.attr("class", "hover:underline")
				hw.raw(`>`)
				hw.text(p.Title)
				hw.raw(`</a></h2>`)
				writeDate(hw, p.PublishedAt, loc)
				if p.Summary != "" {
					hw.raw(`<p class="mt-2 text-zinc-700 dark:text-zinc-300">`)
					hw.text(p.Summary)
					hw.raw(`</p>`)
				}
				hw.raw(`</article></li>`)
			}
			hw.raw(`</ul>`)
		}

		if page.HasPrev() || page.HasNext() {
			hw.raw(`<nav class="flex justify-between text-sm" aria-label="pagination">`)
			if page.HasPrev() {
				hw.raw(`<a rel="prev"`)
				hw.href(PageURL(page.Page - 1))
				hw.raw(`>`)
				hw.text("Neuere Beiträge")
				hw.raw(`</a>`)
			}
			if page.HasNext() {
				hw.raw(`<a rel="next"`)
				hw.href(PageURL(page.Page + 1))
				hw.raw(`>`)
				hw.text("Ältere Beiträge")
				hw.raw(`</a>`)
			}
			hw.raw(`</nav>`)
		}
		hw.raw(`</section>`)
	})
}

// BlogPost renders a single article. post.BodyHTML must already be sanitized.
func BlogPost(post model.Post, coverURL string, loc *time.Location) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw(`<article class="prose dark:prose-invert max-w-none">`)
		if coverURL != "" {
			hw.raw(`<img class="mb-6 rounded-lg"`)
			hw.attr("src", string(templ.URL(coverURL)))
			hw.attr("alt", post.Title)
			hw.raw(`>`)
		}
		hw.raw(`<h1>`)
		hw.text(post.Title)
		hw.raw(`</h1>`)
		writeDate(hw, post.PublishedAt, loc)
		hw.component(ctx, templ.Raw(post.BodyHTML))
		hw.raw(`<p><a`)
		hw.href(BlogPath)
		hw.attr("class", "hover:underline")
		hw.raw(`>`)
		hw.text("Alle Beiträge")
		hw.raw(`</a></p></article>`)
	})
}
