package view

import (
	"context"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
)

// StartPage is the landing page body.
func StartPage() templ.Component {
	return component(func(_ context.Context, hw *htmlWriter) {
		hw.raw(`<section class="space-y-6">`)
		hw.raw(`<h1 class="text-4xl font-bold tracking-tight">`)
		hw.text("Automatisiere deinen Alltag mit KI")
		hw.raw(`</h1><p class="text-lg text-zinc-600 dark:text-zinc-400">`)
		hw.text("Praxisnahe Lektionen zu KI-Workflows, Agenten und Automatisierung, ohne Vorwissen.")
		hw.raw(`</p><a`)
		hw.href(BlogPath)
		hw.attr("class", "inline-block rounded-md bg-zinc-900 px-4 py-2 text-white hover:bg-zinc-700 dark:bg-white dark:text-black")
		hw.raw(`>`)
		hw.text("Zum Blog")
		hw.raw(`</a></section>`)
	})
}

// ErrorPage renders a status page body. message falls back to the status text.
func ErrorPage(status int, message string) templ.Component {
	if message == "" {
		message = http.StatusText(status)
	}
	return component(func(_ context.Context, hw *htmlWriter) {
		hw.raw(`<section class="space-y-4">`)
		hw.raw(`<p class="text-sm font-mono text-zinc-500">`)
		hw.text(strconv.Itoa(status))
		hw.raw(`</p><h1 class="text-2xl font-semibold">`)
		hw.text(message)
		hw.raw(`</h1><a`)
		hw.href(RootPath)
		hw.attr("class", "hover:underline")
		hw.raw(`>`)
		hw.text("Zur Startseite")
		hw.raw(`</a></section>`)
	})
}
