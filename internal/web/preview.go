package web

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/arturomorarioja/csv-parser-api/internal/core"
)

const previewStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2937}
table{border-collapse:collapse;font-size:.875rem}
th,td{border:1px solid #d1d5db;padding:.25rem .5rem;text-align:left;vertical-align:top;white-space:pre-wrap}
th{background:#f3f4f6}
.meta{color:#6b7280;font-size:.875rem}
.alert{border:1px solid #fca5a5;background:#fef2f2;padding:1rem;border-radius:.375rem}
.code{font-family:monospace;color:#991b1b}`

// PreviewPage renders the records of a parsed file as an HTML table. Columns
// come from the first record, which carries the header order.
func PreviewPage(input string, result *core.ParseResult) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		writeHead(&b, input)

		b.WriteString(`<h1>`)
		b.WriteString(templ.EscapeString(input))
		b.WriteString(`</h1><p class="meta">`)
		b.WriteString(strconv.Itoa(len(result.Records)))
		b.WriteString(` rows parsed in `)
		b.WriteString(templ.EscapeString(result.Duration.String()))
		b.WriteString(`</p>`)

		if len(result.Records) == 0 {
			b.WriteString(`<p>No rows.</p>`)
		} else {
			keys := result.Records[0].Keys()
			b.WriteString(`<table><thead><tr>`)
			for _, k := range keys {
				b.WriteString(`<th>`)
				b.WriteString(templ.EscapeString(k))
				b.WriteString(`</th>`)
			}
			b.WriteString(`</tr></thead><tbody>`)
			for _, rec := range result.Records {
				b.WriteString(`<tr>`)
				for _, k := range keys {
					v, _ := rec.Get(k)
					b.WriteString(`<td>`)
					b.WriteString(templ.EscapeString(v))
					b.WriteString(`</td>`)
				}
				b.WriteString(`</tr>`)
			}
			b.WriteString(`</tbody></table>`)
		}

		b.WriteString(`</body></html>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ErrorPage renders a failed preview with its support code.
func ErrorPage(msg core.UserMessage, status int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		writeHead(&b, "Error")
		if err := ErrorAlert(msg, status).Render(ctx, &b); err != nil {
			return err
		}
		b.WriteString(`</body></html>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ErrorAlert is the error fragment shown inside ErrorPage.
func ErrorAlert(msg core.UserMessage, status int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div class="alert" role="alert"><strong>`)
		b.WriteString(strconv.Itoa(status))
		b.WriteString(`</strong> `)
		b.WriteString(templ.EscapeString(msg.Message))
		if msg.Action != "" {
			b.WriteString(`<p>`)
			b.WriteString(templ.EscapeString(msg.Action))
			b.WriteString(`</p>`)
		}
		b.WriteString(`<p class="code">`)
		b.WriteString(templ.EscapeString(msg.Code))
		b.WriteString(`</p></div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeHead(b *strings.Builder, title string) {
	b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
	b.WriteString(templ.EscapeString(title))
	b.WriteString(`</title><style>`)
	b.WriteString(previewStyle)
	b.WriteString(`</style></head><body>`)
}
