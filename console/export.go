package console

import (
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hupe1980/codeloop/internal/util"
)

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{default "codeloop" .Title}}</title>
<style>
body { background: #1e1e1e; color: #d4d4d4; margin: 2em; }
pre { font-family: Menlo, Consolas, "DejaVu Sans Mono", monospace; font-size: 14px; white-space: pre-wrap; }
</style>
</head>
<body>
<pre><code>{{.Text}}</code></pre>
</body>
</html>
`

const svgTemplate = `<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}">
<title>{{.Title}}</title>
<rect width="100%" height="100%" rx="8" fill="#1e1e1e"/>
<text font-family="Menlo, Consolas, monospace" font-size="14" fill="#d4d4d4" xml:space="preserve">
{{range $i, $line := .Lines}}<tspan x="{{$.Padding}}" y="{{add $.Padding (mul (add $i 1) $.LineHeight)}}">{{$line}}</tspan>
{{end}}</text>
</svg>
`

const (
	svgLineHeight = 20
	svgCharWidth  = 9
	svgPadding    = 20
)

// ExportHTML implements Sink.
func (c *Console) ExportHTML(clear bool) string {
	text := c.take(clear)
	out, err := util.RenderTemplate("html", htmlTemplate, map[string]any{
		"Title": c.title,
		"Text":  text,
	})
	if err != nil {
		return "<pre>" + template.HTMLEscapeString(text) + "</pre>"
	}
	return out
}

// SaveHTML implements Sink.
func (c *Console) SaveHTML(path string, clear bool) error {
	if !c.record {
		return ErrNotRecording
	}
	return writeFile(path, c.ExportHTML(clear))
}

// SaveSVG implements Sink.
func (c *Console) SaveSVG(path string, clear bool) error {
	if !c.record {
		return ErrNotRecording
	}
	doc, err := c.exportSVG(clear)
	if err != nil {
		return err
	}
	return writeFile(path, doc)
}

func (c *Console) exportSVG(clear bool) (string, error) {
	lines := strings.Split(strings.TrimRight(c.take(clear), "\n"), "\n")

	cols := 0
	for _, l := range lines {
		if w := lipgloss.Width(l); w > cols {
			cols = w
		}
	}

	return util.RenderTemplate("svg", svgTemplate, map[string]any{
		"Title":      c.title,
		"Lines":      lines,
		"Padding":    svgPadding,
		"LineHeight": svgLineHeight,
		"Width":      cols*svgCharWidth + 2*svgPadding,
		"Height":     len(lines)*svgLineHeight + 2*svgPadding,
	})
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("console: write %s: %w", path, err)
	}
	return nil
}
