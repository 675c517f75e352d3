package view

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

const (
	// SiteTitle is the brand shown in the header and in every page title.
	SiteTitle = "AI Automations Kurs"
	// RootPath and BlogPath are the routes the header links to.
	RootPath = "/"
	BlogPath = "/blog"
)

// NavLink is one entry of the header navigation.
type NavLink struct {
	Label string
	Href  string
}

var navLinks = [...]NavLink{
	{Label: "Start", Href: RootPath},
	{Label: "Blog", Href: BlogPath},
}

// headerMarkup is built once; the header has no inputs.
var headerMarkup = buildHeaderMarkup()

var header = templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, headerMarkup)
	return err
})

// Header returns the site header: the brand link and the Start/Blog nav.
func Header() templ.Component {
	return header
}

// HeaderHTML returns the rendered header markup.
func HeaderHTML() string {
	return headerMarkup
}

// NavLinks returns a copy of the header navigation entries in display order.
func NavLinks() []NavLink {
	return append([]NavLink(nil), navLinks[:]...)
}

func buildHeaderMarkup() string {
	var b strings.Builder
	b.WriteString(`<header class="w-full border-b border-zinc-200 bg-white/80 backdrop-blur dark:border-zinc-800 dark:bg-black/50">`)
	b.WriteString(`<div class="mx-auto max-w-5xl px-4 py-4 flex items-center justify-between">`)
	writeLink(&b, RootPath, "text-lg font-semibold", SiteTitle)
	b.WriteString(`<nav class="flex items-center gap-6 text-sm">`)
	for _, link := range navLinks {
		writeLink(&b, link.Href, "hover:underline", link.Label)
	}
	b.WriteString(`</nav></div></header>`)
	return b.String()
}

func writeLink(b *strings.Builder, href, class, label string) {
	b.WriteString(`<a href="`)
	b.WriteString(templ.EscapeString(string(templ.URL(href))))
	b.WriteString(`" class="`)
	b.WriteString(templ.EscapeString(class))
	b.WriteString(`">`)
	b.WriteString(templ.EscapeString(label))
	b.WriteString(`</a>`)
}
