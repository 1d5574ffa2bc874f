// Package export renders completed reports for download, as markdown or as
// a print-quality PDF.
package export

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	ghtml "github.com/yuin/goldmark/renderer/html"
)

// Reports embed page-break divs the renderer must honor, so raw HTML
// passes through unsanitized. Report markdown comes from our own model
// pipeline, never from untrusted users.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(ghtml.WithUnsafe()),
)

var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="ko">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  @page { size: A4; margin: 20mm; }
  body {
    font-family: "Malgun Gothic", "맑은 고딕", "Noto Sans KR", sans-serif;
    font-size: 11pt;
    line-height: 1.7;
    color: #111;
    word-break: keep-all;
  }
  h1 { font-size: 16pt; margin: 1.2em 0 0.6em; }
  h2 { font-size: 13pt; margin: 1.0em 0 0.5em; }
  h3 { font-size: 11pt; margin: 0.8em 0 0.4em; }
  table { border-collapse: collapse; width: 100%; margin: 0.8em 0; }
  th, td { border: 1px solid #444; padding: 4px 8px; font-size: 10pt; }
  th { background: #f2f2f2; }
  blockquote { border-left: 3px solid #bbb; margin: 0.8em 0; padding-left: 1em; color: #444; }
  hr { border: none; border-top: 1px solid #ccc; margin: 1.2em 0; }
  div[style*="page-break-before"] { break-before: page; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// RenderHTML converts report markdown into a standalone HTML page styled
// for Korean print output.
func RenderHTML(title, md string) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(md), &body); err != nil {
		return nil, fmt.Errorf("failed to convert markdown: %w", err)
	}

	var page bytes.Buffer
	err := pageTemplate.Execute(&page, struct {
		Title string
		Body  template.HTML
	}{
		Title: title,
		Body:  template.HTML(body.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render report page: %w", err)
	}
	return page.Bytes(), nil
}
