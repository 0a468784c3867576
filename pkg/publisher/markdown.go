// Package publisher renders translated posts into markdown pages, writes them
// into the site's content directory and triggers the static site build.
package publisher

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

const pageTemplate = `---
title: {{ printf "%q" .Title }}
date: {{ .Date.Format "2006-01-02T15:04:05Z07:00" }}
tags:
{{- range .Tags }}
  - {{ . }}
{{- end }}
original_url: {{ .OriginalURL }}
language: {{ .Language }}
fingerprint: {{ .Fingerprint }}
draft: false
---

{{ .Body }}

[Original post]({{ .OriginalURL }})
`

var pageTmpl = template.Must(template.New("page").Parse(pageTemplate))

// Page is the data rendered into one markdown document.
type Page struct {
	Title       string
	Date        time.Time
	Tags        []string
	OriginalURL string
	Language    string
	Fingerprint string
	Body        string
}

const maxTitleLength = 60

// TitleFromText derives a page title from the first line of the post,
// truncated on a word boundary.
func TitleFromText(text string) string {
	line := text
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)

	if len(line) <= maxTitleLength {
		return line
	}

	truncated := line[:maxTitleLength]
	if idx := strings.LastIndexByte(truncated, ' '); idx > 0 {
		truncated = truncated[:idx]
	}
	return truncated + "..."
}

// RenderPage produces the markdown document with front matter.
func RenderPage(page Page) (string, error) {
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, page); err != nil {
		return "", fmt.Errorf("failed to render page template: %w", err)
	}
	return buf.String(), nil
}

// Slug builds the content filename for a post: date plus item id.
func Slug(id string, date time.Time) string {
	return fmt.Sprintf("%s-%s.md", date.Format("2006-01-02"), id)
}
