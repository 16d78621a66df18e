package console

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsole(record bool) (*Console, *bytes.Buffer) {
	var buf bytes.Buffer
	c := New(func(o *Options) {
		o.Output = &buf
		o.Record = record
		o.Style = "notty"
		o.WordWrap = 0
		o.Title = "test run"
	})
	return c, &buf
}

func TestConsole_PrintsAndRecords(t *testing.T) {
	c, buf := newTestConsole(true)

	c.Status("Start processing instruction: count files")
	c.Print(`{"stdout":"3\n"}`)
	c.Success("done")
	c.Warn("Publishing is disabled")

	out := buf.String()
	assert.Contains(t, out, "Start processing instruction: count files")
	assert.Contains(t, out, `{"stdout":"3\n"}`)
	assert.Contains(t, out, "Publishing is disabled")

	assert.Equal(t, "Start processing instruction: count files\n"+
		`{"stdout":"3\n"}`+"\n"+
		"done\n"+
		"Publishing is disabled\n", c.Text())
}

func TestConsole_MarkdownRecordsSource(t *testing.T) {
	c, buf := newTestConsole(true)

	c.Markdown("# Title\n\nsome *text*")

	assert.Contains(t, buf.String(), "Title")
	assert.Contains(t, buf.String(), "text")
	assert.Equal(t, "# Title\n\nsome *text*\n", c.Text())
}

func TestConsole_NoRecording(t *testing.T) {
	c, buf := newTestConsole(false)
	c.Print("hello")

	assert.Contains(t, buf.String(), "hello")
	assert.Empty(t, c.Text())
	assert.False(t, c.Recording())

	dir := t.TempDir()
	assert.ErrorIs(t, c.SaveHTML(filepath.Join(dir, "a.html"), true), ErrNotRecording)
	assert.ErrorIs(t, c.SaveSVG(filepath.Join(dir, "a.svg"), true), ErrNotRecording)
	assert.NoFileExists(t, filepath.Join(dir, "a.html"))
}

func TestConsole_ExportHTML(t *testing.T) {
	c, _ := newTestConsole(true)
	c.Print("<script>alert(1)</script> & more")

	doc := c.ExportHTML(false)
	assert.Contains(t, doc, "<!DOCTYPE html>")
	assert.Contains(t, doc, "<title>test run</title>")
	assert.Contains(t, doc, "&lt;script&gt;alert(1)&lt;/script&gt; &amp; more")
	assert.NotContains(t, doc, "<script>")
	assert.NotEmpty(t, c.Text(), "export without clear keeps the recording")

	c.ExportHTML(true)
	assert.Empty(t, c.Text())
}

func TestConsole_SaveHTML(t *testing.T) {
	c, _ := newTestConsole(true)
	c.Print("line one")

	path := filepath.Join(t.TempDir(), "out.html")
	require.NoError(t, c.SaveHTML(path, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "line one")
	assert.Empty(t, c.Text())
}

func TestConsole_SaveSVG(t *testing.T) {
	c, _ := newTestConsole(true)
	c.Print("first")
	c.Print("a < b")

	path := filepath.Join(t.TempDir(), "out.svg")
	require.NoError(t, c.SaveSVG(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := string(data)
	assert.Contains(t, doc, `<svg xmlns="http://www.w3.org/2000/svg"`)
	assert.Contains(t, doc, `<tspan x="20" y="40">first</tspan>`)
	assert.Contains(t, doc, `<tspan x="20" y="60">a &lt; b</tspan>`)
	assert.Contains(t, doc, `height="80"`)
	assert.NotEmpty(t, c.Text())
}

func TestConsole_SaveBadPath(t *testing.T) {
	c, _ := newTestConsole(true)
	c.Print("x")
	err := c.SaveHTML(filepath.Join(t.TempDir(), "missing", "dir", "out.html"), false)
	assert.Error(t, err)
}
