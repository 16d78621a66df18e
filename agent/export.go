package agent

import (
	"context"
	"path/filepath"
	"time"

	"github.com/hupe1980/codeloop/i18n"
	"github.com/hupe1980/codeloop/metrics"
	"github.com/hupe1980/codeloop/publish"
)

// Uploader sends an exported document to the publishing service.
type Uploader interface {
	Upload(ctx context.Context, req publish.Request) (*publish.Result, error)
}

// Save exports the recorded session to path. The format follows the
// extension: .svg for a vector image, .html or .htm for a document. Other
// extensions and export failures are reported, not returned.
func (a *Agent) Save(path string, clear bool) {
	var err error
	switch filepath.Ext(path) {
	case ".svg":
		err = a.sink.SaveSVG(path, clear)
	case ".html", ".htm":
		err = a.sink.SaveHTML(path, clear)
	default:
		a.sink.Warn(a.cat.T(i18n.UnknownFormat) + ": " + path)
		return
	}

	if err != nil {
		a.log.Error("Save failed", "path", path, "error", err.Error())
		a.sink.Warn(a.cat.T(i18n.SaveFailed) + ": " + err.Error())
		return
	}
	a.log.Info("Session saved", "path", path, "clear", clear)
}

// Publish uploads the recorded session as an HTML document. An empty title
// defaults to the active instruction and an empty author to the current OS
// user. Every outcome, including transport errors, is reported to the
// operator; nothing is returned and the session is not modified.
func (a *Agent) Publish(ctx context.Context, title, author string) {
	if !a.cfg.Publish.Enabled() {
		a.sink.Warn(a.cat.T(i18n.PublishDisabled))
		a.metrics.RecordPublish(metrics.OutcomeDisabled)
		return
	}

	if title == "" {
		title = a.state.Instruction
	}
	if author == "" && a.opts.User != nil {
		author = a.opts.User()
	}

	start := time.Now()
	res, err := a.uploader.Upload(ctx, publish.Request{
		Title:   title,
		Author:  author,
		Content: a.sink.ExportHTML(false),
	})

	status := 0
	if res != nil {
		status = res.StatusCode
	}
	a.log.LogPublish(status, time.Since(start), err)

	switch {
	case err != nil:
		a.sink.Warn(a.cat.T(i18n.UploadError) + ": " + err.Error())
		a.metrics.RecordPublish(metrics.OutcomeError)
	case res.Created():
		a.sink.Success(a.cat.T(i18n.UploadSuccess) + ": " + res.URL)
		a.metrics.RecordPublish(metrics.OutcomeOK)
	default:
		a.sink.Warn(a.cat.T(i18n.UploadFailed, res.StatusCode) + ": " + res.Body)
		a.metrics.RecordPublish(metrics.OutcomeRejected)
	}
}
