package view

import (
	"context"
	"strings"

	"github.com/a-h/templ"
)

const titleSeparator = " | "

// ComposeTitle appends the brand to a page title unless it is already there.
func ComposeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" || title == SiteTitle {
		return SiteTitle
	}
	if strings.HasSuffix(title, titleSeparator+SiteTitle) {
		return title
	}
	return title + titleSeparator + SiteTitle
}

// Page wraps body in the site document. Every page renders the header once.
func Page(title string, body templ.Component) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw(`<!DOCTYPE html><html lang="de"><head><meta charset="utf-8">`)
		hw.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		hw.raw(`<title>`)
		hw.text(ComposeTitle(title))
		hw.raw(`</title></head>`)
		hw.raw(`<body class="min-h-screen bg-zinc-50 text-zinc-900 dark:bg-zinc-950 dark:text-zinc-100">`)
		hw.component(ctx, Header())
		hw.raw(`<main class="mx-auto max-w-5xl px-4 py-10">`)
		hw.component(ctx, body)
		hw.raw(`</main></body></html>`)
	})
}
