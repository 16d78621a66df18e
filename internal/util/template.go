package util

import (
	"bytes"
	"html/template"
)

// RenderTemplate executes text as an html/template against data. Values are
// escaped for their context, so recorded console output can be embedded in
// HTML and SVG documents as-is.
func RenderTemplate(name, text string, data any) (string, error) {
	tmpl, err := template.New(name).Funcs(template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"mul": func(a, b int) int { return a * b },
		"default": func(defaultVal any, val any) any {
			if val == nil || val == "" {
				return defaultVal
			}
			return val
		},
	}).Parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
