// Package publish uploads an exported session document to a remote article
// service over mutually authenticated TLS.
package publish

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultCertPath is where the client certificate is staged.
const DefaultCertPath = "/tmp/codeloop_client.crt"

const maxResponseBody = 1 << 20

// ErrDisabled is returned when the endpoint or the certificate is missing.
var ErrDisabled = errors.New("publish: url and certificate are required")

// Options configures an Uploader.
type Options struct {
	URL string
	// Cert holds the PEM encoded client certificate and its private key.
	Cert     string
	CertPath string
	// RootCAs verifies the server; nil uses the system pool.
	RootCAs *x509.CertPool
	Timeout time.Duration
}

// Request is one upload.
type Request struct {
	Title   string
	Author  string
	Content string
}

// Result is the server's answer.
type Result struct {
	StatusCode int
	// URL is the published location, set when the server created the article.
	URL  string
	Body string
}

// Created reports whether the server accepted the upload.
func (r *Result) Created() bool { return r.StatusCode == http.StatusCreated }

// Uploader posts documents as multipart forms.
type Uploader struct {
	opts Options
	mu   sync.Mutex
}

// New creates an Uploader.
func New(optFns ...func(o *Options)) *Uploader {
	opts := Options{
		CertPath: DefaultCertPath,
		Timeout:  60 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Uploader{opts: opts}
}

// Enabled reports whether both URL and certificate are configured.
func (u *Uploader) Enabled() bool {
	return u.opts.URL != "" && u.opts.Cert != ""
}

// StageCert writes the certificate to CertPath unless a non-empty file is
// already there. The file is written to a temporary name and renamed into
// place.
func (u *Uploader) StageCert() (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	path := u.opts.CertPath
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		return path, nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".codeloop-cert-*")
	if err != nil {
		return "", fmt.Errorf("publish: stage certificate: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return "", fmt.Errorf("publish: stage certificate: %w", err)
	}
	if _, err := tmp.WriteString(u.opts.Cert); err != nil {
		tmp.Close()
		return "", fmt.Errorf("publish: stage certificate: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("publish: stage certificate: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("publish: stage certificate: %w", err)
	}
	return path, nil
}

// Upload posts req. A non-nil error means the request did not complete; any
// HTTP answer, including a rejection, is returned as a Result.
func (u *Uploader) Upload(ctx context.Context, req Request) (*Result, error) {
	if !u.Enabled() {
		return nil, ErrDisabled
	}

	certPath, err := u.StageCert()
	if err != nil {
		return nil, err
	}
	cert, err := tls.LoadX509KeyPair(certPath, certPath)
	if err != nil {
		return nil, fmt.Errorf("publish: load client certificate: %w", err)
	}

	body, contentType, err := encodeForm(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.opts.URL, body)
	if err != nil {
		return nil, fmt.Errorf("publish: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	client := &http.Client{
		Timeout: u.opts.Timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				Certificates: []tls.Certificate{cert},
				RootCAs:      u.opts.RootCAs,
				MinVersion:   tls.VersionTLS12,
			},
		},
	}
	defer client.CloseIdleConnections()

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("publish: post: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("publish: read response: %w", err)
	}

	result := &Result{StatusCode: resp.StatusCode, Body: string(raw)}
	if !result.Created() {
		return result, nil
	}

	var created struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &created); err != nil {
		return result, fmt.Errorf("publish: decode response: %w", err)
	}
	result.URL = created.URL
	return result, nil
}

func encodeForm(req Request) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("content", "content.html")
	if err != nil {
		return nil, "", fmt.Errorf("publish: encode form: %w", err)
	}
	if _, err := io.WriteString(part, req.Content); err != nil {
		return nil, "", fmt.Errorf("publish: encode form: %w", err)
	}

	meta, err := json.Marshal(map[string]string{"author": req.Author})
	if err != nil {
		return nil, "", fmt.Errorf("publish: encode metadata: %w", err)
	}
	if err := w.WriteField("title", req.Title); err != nil {
		return nil, "", fmt.Errorf("publish: encode form: %w", err)
	}
	if err := w.WriteField("metadata", string(meta)); err != nil {
		return nil, "", fmt.Errorf("publish: encode form: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("publish: encode form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
